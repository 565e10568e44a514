package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/geocoder89/userdash/internal/domain/user"
	"github.com/geocoder89/userdash/internal/observability"
)

var ErrRecordNotListed = errors.New("record is not in the current list")

// RecordStore is the remote collection the controller drives.
type RecordStore interface {
	List(ctx context.Context, page, pageSize int) ([]user.Record, error)
	Create(ctx context.Context, p user.PendingRecord) (user.Record, error)
	Update(ctx context.Context, id user.ID, f user.Fields) (user.Record, error)
	Delete(ctx context.Context, id user.ID) error
}

type Config struct {
	PageSize     int
	DiscardStale bool
}

// Controller owns the dashboard state. Operations may overlap: the lock only
// covers applying events, never a store call, so outcomes land in the order
// they resolve.
type Controller struct {
	store RecordStore
	log   *slog.Logger
	prom  *observability.Prom

	// swapped in tests
	newTempID func() user.ID

	mu    sync.Mutex
	state State
}

func NewController(cfg Config, store RecordStore, log *slog.Logger, prom *observability.Prom) *Controller {
	if log == nil {
		log = slog.Default()
	}

	return &Controller{
		store:     store,
		log:       log,
		prom:      prom,
		newTempID: user.NewTempID,
		state:     New(cfg.PageSize, cfg.DiscardStale),
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.Clone()
}

// Mount loads the first page. Called once when the dashboard starts.
func (c *Controller) Mount(ctx context.Context) State {
	return c.dispatch(ctx, Mounted{})
}

func (c *Controller) SetField(field, value string) (State, error) {
	if _, err := (user.Draft{}).Set(field, value); err != nil {
		return c.Snapshot(), err
	}

	return c.dispatch(context.Background(), FieldChanged{Field: field, Value: value}), nil
}

func (c *Controller) SetDraft(f user.Fields) State {
	return c.dispatch(context.Background(), DraftReplaced{Fields: f})
}

// Submit creates or updates depending on the form mode.
func (c *Controller) Submit(ctx context.Context) State {
	return c.dispatch(ctx, Submitted{TempID: c.newTempID()})
}

func (c *Controller) BeginEdit(r user.Record) State {
	return c.dispatch(context.Background(), EditBegan{Record: r})
}

// BeginEditByID edits a record from the currently displayed list.
func (c *Controller) BeginEditByID(id user.ID) (State, error) {
	r, ok := c.Snapshot().Find(id)
	if !ok {
		return c.Snapshot(), ErrRecordNotListed
	}

	return c.BeginEdit(r), nil
}

func (c *Controller) Delete(ctx context.Context, id user.ID) State {
	return c.dispatch(ctx, DeleteRequested{ID: id})
}

func (c *Controller) NextPage(ctx context.Context) State {
	return c.dispatch(ctx, NextPageRequested{})
}

func (c *Controller) PrevPage(ctx context.Context) State {
	return c.dispatch(ctx, PrevPageRequested{})
}

// dispatch applies ev, runs the resulting effect (if any) to completion and
// applies its outcome. It returns the state after the last applied event.
func (c *Controller) dispatch(ctx context.Context, ev Event) State {
	st, eff := c.apply(ev)
	if eff == nil {
		return st
	}

	// the store call outlives the caller's request
	ctx = context.WithoutCancel(ctx)

	outcome := c.run(ctx, eff)
	if outcome == nil {
		return st
	}

	return c.dispatch(ctx, outcome)
}

func (c *Controller) apply(ev Event) (State, Effect) {
	c.mu.Lock()
	next, eff := Reduce(c.state, ev)
	c.state = next
	out := next.Clone()
	c.mu.Unlock()

	c.prom.IncEvent(ev.Name())
	c.log.Debug("dashboard event",
		"event", ev.Name(),
		"mode", out.Mode(),
		"page", out.Cursor.Page,
		"phase", out.Status.Phase(),
		"records", len(out.Records),
	)

	if cause := failureCause(ev); cause != nil {
		c.log.Warn("dashboard operation failed", "event", ev.Name(), "error", out.Status.Error, "err", cause)
	}

	return out, eff
}

// run performs one store call and turns its outcome into an event.
func (c *Controller) run(ctx context.Context, eff Effect) Event {
	switch e := eff.(type) {
	case FetchPage:
		records, err := c.store.List(ctx, e.Page, e.Size)
		if err != nil {
			return PageFailed{Gen: e.Gen, Err: err}
		}
		return PageLoaded{Gen: e.Gen, Records: records}

	case CreateRecord:
		rec, err := c.store.Create(ctx, e.Pending)
		if err != nil {
			return CreateFailed{Pending: e.Pending, Err: err}
		}
		return CreateSucceeded{Pending: e.Pending, Record: rec}

	case UpdateRecord:
		rec, err := c.store.Update(ctx, e.ID, e.Fields)
		if err != nil {
			return UpdateFailed{ID: e.ID, Err: err}
		}
		return UpdateSucceeded{ID: e.ID, Record: rec}

	case DeleteRecord:
		if err := c.store.Delete(ctx, e.ID); err != nil {
			return DeleteFailed{ID: e.ID, Err: err}
		}
		return DeleteSucceeded{ID: e.ID}
	}

	c.log.Error("dashboard effect not handled", "effect", fmt.Sprintf("%T", eff))
	return nil
}

func failureCause(ev Event) error {
	switch e := ev.(type) {
	case PageFailed:
		return e.Err
	case CreateFailed:
		return e.Err
	case UpdateFailed:
		return e.Err
	case DeleteFailed:
		return e.Err
	}
	return nil
}
