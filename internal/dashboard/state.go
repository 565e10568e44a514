// Package dashboard holds the record lifecycle and form-mode controller.
//
// State is an immutable value; Reduce is the only way to move between states and
// it never performs I/O. Instead it returns an Effect describing the one store
// call (if any) the transition needs. Controller runs those effects and feeds the
// outcome back through Reduce.
package dashboard

import (
	"slices"

	"github.com/geocoder89/userdash/internal/domain/user"
)

// User-visible error strings.
const (
	ErrMsgFetch    = "Error fetching users!"
	ErrMsgRequired = "All fields are required!"
	ErrMsgCreate   = "Error adding user!"
	ErrMsgUpdate   = "Error updating user!"
	ErrMsgDelete   = "Error deleting user!"
)

const DefaultPageSize = 5

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseError   Phase = "error"
)

// Status is the network status shown to the user. Only one error is retained.
type Status struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

func (s Status) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.Error != "":
		return PhaseError
	default:
		return PhaseIdle
	}
}

// Cursor is the pagination position. Page is never below 1.
type Cursor struct {
	Page int `json:"currentPage"`
	Size int `json:"pageSize"`
}

func (c Cursor) Next() Cursor {
	c.Page++
	return c
}

func (c Cursor) Prev() Cursor {
	c.Page = max(c.Page-1, 1)
	return c
}

type State struct {
	Records []user.Record `json:"records"`
	Draft   user.Draft    `json:"draft"`
	Cursor  Cursor        `json:"cursor"`
	Status  Status        `json:"status"`

	// the create currently awaiting the store, if any
	Pending *user.PendingRecord `json:"-"`

	// Gen is bumped for every list fetch issued; with DiscardStale set, list
	// responses carrying an older generation are dropped.
	Gen          uint64 `json:"-"`
	DiscardStale bool   `json:"-"`
}

// New returns the pre-mount state.
func New(pageSize int, discardStale bool) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return State{
		Records:      []user.Record{},
		Cursor:       Cursor{Page: 1, Size: pageSize},
		DiscardStale: discardStale,
	}
}

// Mode is "edit" when the draft targets an existing record, "create" otherwise.
func (s State) Mode() string {
	if s.Draft.Editing() {
		return "edit"
	}
	return "create"
}

// Find returns the listed record with the given id.
func (s State) Find(id user.ID) (user.Record, bool) {
	i := slices.IndexFunc(s.Records, func(r user.Record) bool { return r.ID == id })
	if i < 0 {
		return user.Record{}, false
	}
	return s.Records[i], true
}

// Clone copies the record slice so callers can't alias controller state.
func (s State) Clone() State {
	s.Records = slices.Clone(s.Records)
	if s.Records == nil {
		s.Records = []user.Record{}
	}
	if s.Pending != nil {
		p := *s.Pending
		s.Pending = &p
	}
	return s
}
