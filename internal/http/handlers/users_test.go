package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/userdash/internal/cache"
	"github.com/geocoder89/userdash/internal/domain/user"
	"github.com/geocoder89/userdash/internal/http/handlers"
	"github.com/geocoder89/userdash/internal/repo/memory"
	"github.com/gin-gonic/gin"
)

// fakeUsersRepo implements handlers.UsersRepo with overridable funcs.
type fakeUsersRepo struct {
	listFn   func(ctx context.Context, offset, limit int) ([]user.Record, error)
	getFn    func(ctx context.Context, id user.ID) (user.Record, error)
	createFn func(ctx context.Context, f user.Fields) (user.Record, error)
	updateFn func(ctx context.Context, id user.ID, f user.Fields) (user.Record, error)
	deleteFn func(ctx context.Context, id user.ID) error
}

func (f *fakeUsersRepo) List(ctx context.Context, offset, limit int) ([]user.Record, error) {
	if f.listFn != nil {
		return f.listFn(ctx, offset, limit)
	}
	return []user.Record{}, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id user.ID) (user.Record, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.Record{}, nil
}

func (f *fakeUsersRepo) Create(ctx context.Context, fields user.Fields) (user.Record, error) {
	if f.createFn != nil {
		return f.createFn(ctx, fields)
	}
	return fields.WithID("new"), nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, id user.ID, fields user.Fields) (user.Record, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, fields)
	}
	return fields.WithID(id), nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id user.ID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func newUsersRouter(h *handlers.UsersHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/users", h.ListUsers)
	r.POST("/users", h.CreateUser)
	r.GET("/users/:id", h.GetUserByID)
	r.PUT("/users/:id", h.UpdateUser)
	r.DELETE("/users/:id", h.DeleteUser)
	return r
}

const adaJSON = `{"id":"tmp-1","firstName":"Ada","lastName":"Lovelace","email":"ada@x.io","department":"R&D"}`

func TestListUsersPagingParams(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantOffset int
		wantLimit  int
	}{
		{name: "defaults", target: "/users", wantStatus: http.StatusOK, wantOffset: 0, wantLimit: 10},
		{name: "page_three_of_five", target: "/users?_page=3&_limit=5", wantStatus: http.StatusOK, wantOffset: 10, wantLimit: 5},
		{name: "limit_capped", target: "/users?_limit=1000", wantStatus: http.StatusOK, wantOffset: 0, wantLimit: 100},
		{name: "page_zero", target: "/users?_page=0", wantStatus: http.StatusBadRequest},
		{name: "limit_garbage", target: "/users?_limit=ten", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			var gotOffset, gotLimit int
			repo := &fakeUsersRepo{
				listFn: func(_ context.Context, offset, limit int) ([]user.Record, error) {
					gotOffset, gotLimit = offset, limit
					return nil, nil
				},
			}

			w := serve(newUsersRouter(handlers.NewUsersHandler(repo)), http.MethodGet, tt.target, "", "")

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if gotOffset != tt.wantOffset || gotLimit != tt.wantLimit {
				t.Fatalf("got offset=%d limit=%d", gotOffset, gotLimit)
			}
			if w.Body.String() != "[]" {
				t.Fatalf("empty page should encode as [], got %s", w.Body.String())
			}
		})
	}
}

func TestUsersLifecycleAgainstMemoryRepo(t *testing.T) {
	r := newUsersRouter(handlers.NewUsersHandler(memory.NewUsersRepo()))

	w := serve(r, http.MethodPost, "/users", "application/json", adaJSON)
	if w.Code != http.StatusCreated {
		t.Fatalf("create got %d body=%s", w.Code, w.Body.String())
	}

	var created user.Record
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID.IsZero() || created.ID == "tmp-1" {
		t.Fatalf("server should assign its own id, got %q", created.ID)
	}

	w = serve(r, http.MethodPut, "/users/"+created.ID.String(), "application/json",
		`{"firstName":"Ada","lastName":"King","email":"ada@x.io","department":"R&D"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update got %d body=%s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodGet, "/users?_page=1&_limit=5", "", "")
	var page []user.Record
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(page) != 1 || page[0].LastName != "King" {
		t.Fatalf("got page %+v", page)
	}

	if w := serve(r, http.MethodGet, "/users?_page=2&_limit=5", "", ""); w.Body.String() != "[]" {
		t.Fatalf("past the end should be [], got %s", w.Body.String())
	}

	if w := serve(r, http.MethodDelete, "/users/"+created.ID.String(), "", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete got %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/users/"+created.ID.String(), "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete got %d", w.Code)
	}
}

func TestUpdateUnknownUserIsNotFound(t *testing.T) {
	repo := &fakeUsersRepo{
		updateFn: func(context.Context, user.ID, user.Fields) (user.Record, error) {
			return user.Record{}, user.ErrNotFound
		},
	}

	w := serve(newUsersRouter(handlers.NewUsersHandler(repo)), http.MethodPut, "/users/nope", "application/json", adaJSON)
	if w.Code != http.StatusNotFound {
		t.Fatalf("got status %d", w.Code)
	}
}

func TestCreateUserRepoFailure(t *testing.T) {
	repo := &fakeUsersRepo{
		createFn: func(context.Context, user.Fields) (user.Record, error) {
			return user.Record{}, errors.New("db down")
		},
	}

	w := serve(newUsersRouter(handlers.NewUsersHandler(repo)), http.MethodPost, "/users", "application/json", adaJSON)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("got status %d", w.Code)
	}
}

func TestListUsers_CacheHitAndInvalidation(t *testing.T) {
	calls := 0
	repo := &fakeUsersRepo{
		listFn: func(context.Context, int, int) ([]user.Record, error) {
			calls++
			return []user.Record{{ID: "1", FirstName: "Ada"}}, nil
		},
	}

	r := newUsersRouter(handlers.NewUsersHandlerWithCache(repo, cache.New(30*time.Second)))

	w1 := serve(r, http.MethodGet, "/users?_limit=5", "", "")
	w2 := serve(r, http.MethodGet, "/users?_limit=5", "", "")

	if w1.Code != http.StatusOK || w2.Code != http.StatusOK {
		t.Fatalf("got %d and %d", w1.Code, w2.Code)
	}
	if calls != 1 {
		t.Fatalf("expected repo calls=1, got %d", calls)
	}
	if w1.Header().Get("ETag") != w2.Header().Get("ETag") {
		t.Fatalf("cached page should carry the same ETag")
	}

	serve(r, http.MethodPost, "/users", "application/json", adaJSON)
	serve(r, http.MethodGet, "/users?_limit=5", "", "")

	if calls != 2 {
		t.Fatalf("write should clear the cache, repo calls=%d", calls)
	}
}

func TestListUsers_PageReadAcrossWriteIsNotCached(t *testing.T) {
	var r *gin.Engine

	calls := 0
	repo := &fakeUsersRepo{}
	repo.listFn = func(context.Context, int, int) ([]user.Record, error) {
		calls++
		if calls == 1 {
			// a create lands while the first read is still in flight
			if w := serve(r, http.MethodPost, "/users", "application/json", adaJSON); w.Code != http.StatusCreated {
				t.Errorf("create during list got %d", w.Code)
			}
			return []user.Record{}, nil
		}
		return []user.Record{{ID: "new", FirstName: "Ada"}}, nil
	}

	r = newUsersRouter(handlers.NewUsersHandlerWithCache(repo, cache.New(30*time.Second)))

	if w := serve(r, http.MethodGet, "/users?_limit=5", "", ""); w.Body.String() != "[]" {
		t.Fatalf("first read got %s", w.Body.String())
	}

	w := serve(r, http.MethodGet, "/users?_limit=5", "", "")
	if calls != 2 {
		t.Fatalf("stale page should not have been cached, repo calls=%d", calls)
	}
	if !strings.Contains(w.Body.String(), `"id":"new"`) {
		t.Fatalf("second read got %s", w.Body.String())
	}
}
