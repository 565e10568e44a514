package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/geocoder89/userdash/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo keeps records in insertion order.
type UsersRepo struct {
	mu    sync.RWMutex
	order []user.ID
	items map[user.ID]user.Record
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[user.ID]user.Record),
	}
}

// List returns at most limit records starting at offset. Past the end is an empty page.
func (r *UsersRepo) List(_ context.Context, offset, limit int) ([]user.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.Record, 0, limit)
	if offset >= len(r.order) {
		return out, nil
	}

	end := min(offset+limit, len(r.order))
	for _, id := range r.order[offset:end] {
		out = append(out, r.items[id])
	}

	return out, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id user.ID) (user.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[id]
	if !ok {
		return user.Record{}, user.ErrNotFound
	}

	return rec, nil
}

// Create always assigns a fresh id; whatever id the client sent is ignored.
func (r *UsersRepo) Create(_ context.Context, f user.Fields) (user.Record, error) {
	rec := f.WithID(user.ID(uuid.NewString()))

	r.mu.Lock()
	r.items[rec.ID] = rec
	r.order = append(r.order, rec.ID)
	r.mu.Unlock()

	return rec, nil
}

func (r *UsersRepo) Update(_ context.Context, id user.ID, f user.Fields) (user.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return user.Record{}, user.ErrNotFound
	}

	rec := f.WithID(id)
	r.items[id] = rec

	return rec, nil
}

func (r *UsersRepo) Delete(_ context.Context, id user.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return user.ErrNotFound
	}

	delete(r.items, id)
	r.order = slices.DeleteFunc(r.order, func(v user.ID) bool { return v == id })

	return nil
}
