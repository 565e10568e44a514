package dashboard

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/userdash/internal/domain/user"
	"github.com/geocoder89/userdash/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore implements RecordStore with overridable funcs and call counting.
type fakeStore struct {
	mu    sync.Mutex
	calls []string

	listFn   func(ctx context.Context, page, pageSize int) ([]user.Record, error)
	createFn func(ctx context.Context, p user.PendingRecord) (user.Record, error)
	updateFn func(ctx context.Context, id user.ID, f user.Fields) (user.Record, error)
	deleteFn func(ctx context.Context, id user.ID) error
}

func (f *fakeStore) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeStore) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeStore) List(ctx context.Context, page, pageSize int) ([]user.Record, error) {
	f.record("list")
	if f.listFn != nil {
		return f.listFn(ctx, page, pageSize)
	}
	return []user.Record{}, nil
}

func (f *fakeStore) Create(ctx context.Context, p user.PendingRecord) (user.Record, error) {
	f.record("create")
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return p.Fields.WithID("srv-" + p.TempID), nil
}

func (f *fakeStore) Update(ctx context.Context, id user.ID, fields user.Fields) (user.Record, error) {
	f.record("update")
	if f.updateFn != nil {
		return f.updateFn(ctx, id, fields)
	}
	return fields.WithID(id), nil
}

func (f *fakeStore) Delete(ctx context.Context, id user.ID) error {
	f.record("delete")
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestController(store RecordStore, discardStale bool) *Controller {
	c := NewController(Config{PageSize: 5, DiscardStale: discardStale}, store, quietLogger(), nil)
	c.newTempID = func() user.ID { return "tmp" }
	return c
}

func TestControllerMountLoadsFirstPage(t *testing.T) {
	store := &fakeStore{
		listFn: func(ctx context.Context, page, pageSize int) ([]user.Record, error) {
			assert.Equal(t, 1, page)
			assert.Equal(t, 5, pageSize)
			return []user.Record{ann(), bob()}, nil
		},
	}
	c := newTestController(store, false)

	st := c.Mount(context.Background())

	assert.Equal(t, []user.Record{ann(), bob()}, st.Records)
	assert.Equal(t, PhaseIdle, st.Status.Phase())
	assert.Equal(t, []string{"list"}, store.Calls())
}

func TestControllerMountFailure(t *testing.T) {
	store := &fakeStore{
		listFn: func(ctx context.Context, page, pageSize int) ([]user.Record, error) {
			return nil, errBoom
		},
	}
	c := newTestController(store, false)

	st := c.Mount(context.Background())

	assert.Equal(t, ErrMsgFetch, st.Status.Error)
	assert.False(t, st.Status.Loading)
}

func TestControllerSubmitValidationSkipsStore(t *testing.T) {
	store := &fakeStore{}
	c := newTestController(store, false)
	c.Mount(context.Background())

	_, err := c.SetField(user.FieldFirstName, "Ann")
	require.NoError(t, err)

	st := c.Submit(context.Background())

	assert.Equal(t, ErrMsgRequired, st.Status.Error)
	assert.Equal(t, "Ann", st.Draft.FirstName)
	assert.Equal(t, []string{"list"}, store.Calls())
}

func TestControllerSetFieldRejectsUnknown(t *testing.T) {
	c := newTestController(&fakeStore{}, false)

	_, err := c.SetField("nickname", "x")

	assert.Error(t, err)
}

func TestControllerCreateUpdateDelete(t *testing.T) {
	store := &fakeStore{
		listFn: func(ctx context.Context, page, pageSize int) ([]user.Record, error) {
			return []user.Record{ann()}, nil
		},
	}
	c := newTestController(store, false)
	c.Mount(context.Background())

	c.SetDraft(fullFields())
	st := c.Submit(context.Background())

	require.Len(t, st.Records, 2)
	created := st.Records[1]
	assert.Equal(t, user.ID("srv-tmp"), created.ID)
	assert.Equal(t, fullFields(), created.Fields())
	assert.Equal(t, user.Draft{}, st.Draft)

	st, err := c.BeginEditByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "edit", st.Mode())

	_, err = c.SetField(user.FieldDepartment, "Support")
	require.NoError(t, err)
	st = c.Submit(context.Background())

	require.Len(t, st.Records, 2)
	assert.Equal(t, "Support", st.Records[1].Department)
	assert.Equal(t, created.ID, st.Records[1].ID)
	assert.Equal(t, "create", st.Mode())

	st = c.Delete(context.Background(), ann().ID)
	require.Len(t, st.Records, 1)
	assert.Equal(t, created.ID, st.Records[0].ID)

	assert.Equal(t, []string{"list", "create", "update", "delete"}, store.Calls())
}

func TestControllerBeginEditByIDUnknown(t *testing.T) {
	c := newTestController(&fakeStore{}, false)
	c.Mount(context.Background())

	_, err := c.BeginEditByID("missing")

	assert.ErrorIs(t, err, ErrRecordNotListed)
}

func TestControllerFailuresSurfaceMessages(t *testing.T) {
	store := &fakeStore{
		listFn: func(ctx context.Context, page, pageSize int) ([]user.Record, error) {
			return []user.Record{ann()}, nil
		},
		createFn: func(ctx context.Context, p user.PendingRecord) (user.Record, error) {
			return user.Record{}, errBoom
		},
		updateFn: func(ctx context.Context, id user.ID, f user.Fields) (user.Record, error) {
			return user.Record{}, errBoom
		},
		deleteFn: func(ctx context.Context, id user.ID) error {
			return errBoom
		},
	}
	c := newTestController(store, false)
	c.Mount(context.Background())

	c.SetDraft(fullFields())
	st := c.Submit(context.Background())
	assert.Equal(t, ErrMsgCreate, st.Status.Error)
	assert.Equal(t, fullFields(), st.Draft.Fields)

	c.BeginEdit(ann())
	st = c.Submit(context.Background())
	assert.Equal(t, ErrMsgUpdate, st.Status.Error)
	assert.Equal(t, "edit", st.Mode())

	st = c.Delete(context.Background(), ann().ID)
	assert.Equal(t, ErrMsgDelete, st.Status.Error)
	assert.Equal(t, []user.Record{ann()}, st.Records)
}

func TestControllerPaging(t *testing.T) {
	var pages []int
	store := &fakeStore{
		listFn: func(ctx context.Context, page, pageSize int) ([]user.Record, error) {
			pages = append(pages, page)
			if page == 2 {
				return []user.Record{cat()}, nil
			}
			return []user.Record{ann()}, nil
		},
	}
	c := newTestController(store, false)
	c.Mount(context.Background())

	st := c.NextPage(context.Background())
	assert.Equal(t, 2, st.Cursor.Page)
	assert.Equal(t, []user.Record{cat()}, st.Records)

	c.PrevPage(context.Background())
	st = c.PrevPage(context.Background())
	assert.Equal(t, 1, st.Cursor.Page)

	assert.Equal(t, []int{1, 2, 1, 1}, pages)
}

func TestControllerShowsLoadingWhileCallInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	store := &fakeStore{
		listFn: func(ctx context.Context, page, pageSize int) ([]user.Record, error) {
			close(entered)
			<-release
			return []user.Record{ann()}, nil
		},
	}
	c := newTestController(store, false)

	done := make(chan State)
	go func() { done <- c.Mount(context.Background()) }()

	<-entered
	assert.Equal(t, PhaseLoading, c.Snapshot().Status.Phase())

	close(release)
	st := <-done
	assert.Equal(t, PhaseIdle, st.Status.Phase())
}

// two overlapping page fetches where the older one resolves last
func overlappingFetches(t *testing.T, discardStale bool) State {
	t.Helper()

	gate := map[int]chan struct{}{2: make(chan struct{}), 3: make(chan struct{})}
	entered := make(chan int, 2)

	store := &fakeStore{
		listFn: func(ctx context.Context, page, pageSize int) ([]user.Record, error) {
			if ch, ok := gate[page]; ok {
				entered <- page
				<-ch
			}
			return []user.Record{{ID: user.ID(strconv.Itoa(page)), FirstName: "p"}}, nil
		},
	}
	c := newTestController(store, discardStale)
	c.Mount(context.Background())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); c.NextPage(context.Background()) }()
	require.Equal(t, 2, <-entered)
	go func() { defer wg.Done(); c.NextPage(context.Background()) }()
	require.Equal(t, 3, <-entered)

	close(gate[3])
	require.Eventually(t, func() bool {
		st := c.Snapshot()
		return len(st.Records) == 1 && st.Records[0].ID == "3"
	}, time.Second, 5*time.Millisecond)

	close(gate[2])
	wg.Wait()

	return c.Snapshot()
}

func TestControllerOverlapLastResolvedWins(t *testing.T) {
	st := overlappingFetches(t, false)

	assert.Equal(t, user.ID("2"), st.Records[0].ID)
	assert.Equal(t, 3, st.Cursor.Page)
}

func TestControllerOverlapDiscardStale(t *testing.T) {
	st := overlappingFetches(t, true)

	assert.Equal(t, user.ID("3"), st.Records[0].ID)
	assert.Equal(t, 3, st.Cursor.Page)
}

func TestControllerIgnoresCallerCancellation(t *testing.T) {
	store := &fakeStore{
		listFn: func(ctx context.Context, page, pageSize int) ([]user.Record, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return []user.Record{ann()}, nil
		},
	}
	c := newTestController(store, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := c.Mount(ctx)

	assert.Equal(t, []user.Record{ann()}, st.Records)
	assert.Empty(t, st.Status.Error)
}

func TestControllerCountsEvents(t *testing.T) {
	prom := observability.NewProm(prometheus.NewRegistry())
	c := NewController(Config{PageSize: 5}, &fakeStore{}, quietLogger(), prom)

	c.Mount(context.Background())
	c.NextPage(context.Background())

	assert.Equal(t, float64(1), testutil.ToFloat64(prom.DashboardEvents.WithLabelValues("mounted")))
	assert.Equal(t, float64(2), testutil.ToFloat64(prom.DashboardEvents.WithLabelValues("page_loaded")))
}

func TestSnapshotIsACopy(t *testing.T) {
	store := &fakeStore{
		listFn: func(ctx context.Context, page, pageSize int) ([]user.Record, error) {
			return []user.Record{ann()}, nil
		},
	}
	c := newTestController(store, false)
	c.Mount(context.Background())

	st := c.Snapshot()
	st.Records[0].FirstName = "changed"

	assert.Equal(t, "Ann", c.Snapshot().Records[0].FirstName)
}
