package dashboard

import (
	"slices"

	"github.com/geocoder89/userdash/internal/domain/user"
)

// Reduce applies one event. It is pure: the returned state never shares the
// record slice with s, and any I/O is described by the returned Effect.
func Reduce(s State, ev Event) (State, Effect) {
	s = s.Clone()

	switch e := ev.(type) {
	case Mounted:
		s.Draft = user.Draft{}
		s.Cursor.Page = 1
		return fetch(s)

	case FieldChanged:
		d, err := s.Draft.Set(e.Field, e.Value)
		if err != nil {
			return s, nil
		}
		s.Draft = d
		return s, nil

	case DraftReplaced:
		s.Draft.Fields = e.Fields
		return s, nil

	case Submitted:
		if err := s.Draft.Fields.Validate(); err != nil {
			s.Status.Error = ErrMsgRequired
			return s, nil
		}

		s.Status.Loading = true
		if s.Draft.Editing() {
			return s, UpdateRecord{ID: s.Draft.EditingID, Fields: s.Draft.Fields}
		}

		p := user.PendingRecord{TempID: e.TempID, Fields: s.Draft.Fields}
		s.Pending = &p
		return s, CreateRecord{Pending: p}

	case EditBegan:
		s.Draft = user.DraftFor(e.Record)
		return s, nil

	case DeleteRequested:
		s.Status.Loading = true
		return s, DeleteRecord{ID: e.ID}

	case NextPageRequested:
		s.Cursor = s.Cursor.Next()
		return fetch(s)

	case PrevPageRequested:
		s.Cursor = s.Cursor.Prev()
		return fetch(s)

	case PageLoaded:
		if s.stale(e.Gen) {
			return s, nil
		}
		s.Records = slices.Clone(e.Records)
		if s.Records == nil {
			s.Records = []user.Record{}
		}
		s.Status = Status{}
		return s, nil

	case PageFailed:
		if s.stale(e.Gen) {
			return s, nil
		}
		s.Status = Status{Error: ErrMsgFetch}
		return s, nil

	case CreateSucceeded:
		s.Records = append(s.Records, e.Pending.Confirm(e.Record))
		s.clearPending(e.Pending.TempID)
		s.Draft = user.Draft{}
		s.Status = Status{}
		return s, nil

	case CreateFailed:
		s.clearPending(e.Pending.TempID)
		s.Status = Status{Error: ErrMsgCreate}
		return s, nil

	case UpdateSucceeded:
		rec := e.Record
		if rec.ID.IsZero() {
			rec.ID = e.ID
		}
		for i := range s.Records {
			if s.Records[i].ID == e.ID {
				s.Records[i] = rec
			}
		}
		s.Draft = user.Draft{}
		s.Status = Status{}
		return s, nil

	case UpdateFailed:
		s.Status = Status{Error: ErrMsgUpdate}
		return s, nil

	case DeleteSucceeded:
		s.Records = slices.DeleteFunc(s.Records, func(r user.Record) bool { return r.ID == e.ID })
		s.Status = Status{}
		return s, nil

	case DeleteFailed:
		s.Status = Status{Error: ErrMsgDelete}
		return s, nil
	}

	return s, nil
}

func fetch(s State) (State, Effect) {
	s.Gen++
	s.Status.Loading = true
	return s, FetchPage{Page: s.Cursor.Page, Size: s.Cursor.Size, Gen: s.Gen}
}

func (s State) stale(gen uint64) bool {
	return s.DiscardStale && gen != s.Gen
}

func (s *State) clearPending(tempID user.ID) {
	if s.Pending != nil && s.Pending.TempID == tempID {
		s.Pending = nil
	}
}
