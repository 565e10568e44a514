package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/geocoder89/userdash/internal/cache"
	"github.com/geocoder89/userdash/internal/domain/user"
	"github.com/geocoder89/userdash/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultUsersPage  = 1
	defaultUsersLimit = 10
	maxUsersLimit     = 100
)

// UsersRepo is the collection behind the mock store.
type UsersRepo interface {
	List(ctx context.Context, offset, limit int) ([]user.Record, error)
	GetByID(ctx context.Context, id user.ID) (user.Record, error)
	Create(ctx context.Context, f user.Fields) (user.Record, error)
	Update(ctx context.Context, id user.ID, f user.Fields) (user.Record, error)
	Delete(ctx context.Context, id user.ID) error
}

type UsersHandler struct {
	repo  UsersRepo
	cache cache.Pages

	// writes bumps on every successful write; a page read across a write is not cached
	cacheMu sync.Mutex
	writes  uint64
}

func NewUsersHandler(repo UsersRepo) *UsersHandler {
	return &UsersHandler{repo: repo}
}

func NewUsersHandlerWithCache(repo UsersRepo, c cache.Pages) *UsersHandler {
	return &UsersHandler{repo: repo, cache: c}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	page, ok := queryPositiveInt(ctx, "_page", defaultUsersPage)
	if !ok {
		return
	}
	limit, ok := queryPositiveInt(ctx, "_limit", defaultUsersLimit)
	if !ok {
		return
	}
	limit = min(limit, maxUsersLimit)

	key := utils.BuildUsersListCacheKey(page, limit)

	if h.cache != nil {
		if b, hit := h.cache.Get(ctx.Request.Context(), key); hit {
			RespondJSONWithETag(ctx, http.StatusOK, json.RawMessage(b))
			return
		}
	}

	gen := h.writeGen()

	users, err := h.repo.List(ctx.Request.Context(), (page-1)*limit, limit)
	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}
	if users == nil {
		users = []user.Record{}
	}

	if h.cache != nil {
		if b, err := json.Marshal(users); err == nil {
			h.storePage(ctx, gen, key, b)
		}
	}

	RespondJSONWithETag(ctx, http.StatusOK, users)
}

func (h *UsersHandler) GetUserByID(ctx *gin.Context) {
	u, err := h.repo.GetByID(ctx.Request.Context(), user.ID(ctx.Param("id")))

	if err != nil {
		h.respondRepoError(ctx, err, "Could not fetch user")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, u)
}

// CreateUser ignores any id in the body; the store assigns one.
func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.Fields

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.repo.Create(ctx.Request.Context(), req)
	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	h.invalidate(ctx)
	ctx.JSON(http.StatusCreated, u)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	var req user.Fields

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.repo.Update(ctx.Request.Context(), user.ID(ctx.Param("id")), req)
	if err != nil {
		h.respondRepoError(ctx, err, "Could not update user")
		return
	}

	h.invalidate(ctx)
	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	err := h.repo.Delete(ctx.Request.Context(), user.ID(ctx.Param("id")))
	if err != nil {
		h.respondRepoError(ctx, err, "Could not delete user")
		return
	}

	h.invalidate(ctx)
	ctx.Status(http.StatusNoContent)
}

func (h *UsersHandler) writeGen() uint64 {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()

	return h.writes
}

// storePage caches b unless a write landed since gen was read.
func (h *UsersHandler) storePage(ctx *gin.Context, gen uint64, key string, b []byte) {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()

	if h.writes != gen {
		return
	}
	h.cache.Set(ctx.Request.Context(), key, b)
}

func (h *UsersHandler) invalidate(ctx *gin.Context) {
	if h.cache == nil {
		return
	}

	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()

	h.writes++
	h.cache.Clear(ctx.Request.Context())
}

func (h *UsersHandler) respondRepoError(ctx *gin.Context, err error, msg string) {
	if errors.Is(err, user.ErrNotFound) {
		RespondNotFound(ctx, "User not found")
		return
	}

	RespondInternal(ctx, msg)
}

// missing means fallback; anything that isn't an integer >= 1 is a 400
func queryPositiveInt(ctx *gin.Context, name string, fallback int) (int, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		RespondBadRequest(ctx, "Invalid query parameter", gin.H{"field": name, "value": raw})
		return 0, false
	}

	return n, true
}
