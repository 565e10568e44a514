package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/userdash/internal/dashboard"
	"github.com/geocoder89/userdash/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// DashboardController is the slice of dashboard.Controller the handlers drive.
type DashboardController interface {
	Snapshot() dashboard.State
	SetField(field, value string) (dashboard.State, error)
	SetDraft(f user.Fields) dashboard.State
	Submit(ctx context.Context) dashboard.State
	BeginEditByID(id user.ID) (dashboard.State, error)
	Delete(ctx context.Context, id user.ID) dashboard.State
	NextPage(ctx context.Context) dashboard.State
	PrevPage(ctx context.Context) dashboard.State
}

type DashboardHandler struct {
	ctrl DashboardController
}

func NewDashboardHandler(ctrl DashboardController) *DashboardHandler {
	return &DashboardHandler{ctrl: ctrl}
}

// DraftRequest carries form input (JSON or urlencoded). Empty values are allowed:
// presence is checked on submit.
type DraftRequest struct {
	FirstName  string `json:"firstName" form:"firstName" binding:"max=120"`
	LastName   string `json:"lastName" form:"lastName" binding:"max=120"`
	Email      string `json:"email" form:"email" binding:"max=254"`
	Department string `json:"department" form:"department" binding:"max=120"`
}

func (r DraftRequest) fields() user.Fields {
	return user.Fields{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Department: r.Department,
	}
}

type FieldRequest struct {
	Value string `json:"value" binding:"max=254"`
}

// StateView is the JSON (and template) shape of the dashboard state.
type StateView struct {
	Records     []user.Record `json:"records"`
	Draft       user.Fields   `json:"draft"`
	EditingID   user.ID       `json:"editingId,omitempty"`
	Mode        string        `json:"mode"`
	CurrentPage int           `json:"currentPage"`
	PageSize    int           `json:"pageSize"`
	Loading     bool          `json:"loading"`
	Error       string        `json:"error,omitempty"`
	Phase       string        `json:"phase"`
}

func NewStateView(st dashboard.State) StateView {
	records := st.Records
	if records == nil {
		records = []user.Record{}
	}

	return StateView{
		Records:     records,
		Draft:       st.Draft.Fields,
		EditingID:   st.Draft.EditingID,
		Mode:        st.Mode(),
		CurrentPage: st.Cursor.Page,
		PageSize:    st.Cursor.Size,
		Loading:     st.Status.Loading,
		Error:       st.Status.Error,
		Phase:       string(st.Status.Phase()),
	}
}

// HTML page

func (h *DashboardHandler) Page(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, dashboardTemplateName, NewStateView(h.ctrl.Snapshot()))
}

func (h *DashboardHandler) SubmitForm(ctx *gin.Context) {
	var req DraftRequest

	if !BindForm(ctx, &req) {
		return
	}

	h.ctrl.SetDraft(req.fields())
	h.ctrl.Submit(ctx.Request.Context())

	redirectHome(ctx)
}

func (h *DashboardHandler) EditForm(ctx *gin.Context) {
	if _, err := h.ctrl.BeginEditByID(user.ID(ctx.Param("id"))); err != nil {
		h.respondEditError(ctx, err)
		return
	}

	redirectHome(ctx)
}

func (h *DashboardHandler) DeleteForm(ctx *gin.Context) {
	h.ctrl.Delete(ctx.Request.Context(), user.ID(ctx.Param("id")))

	redirectHome(ctx)
}

func (h *DashboardHandler) NextPageForm(ctx *gin.Context) {
	h.ctrl.NextPage(ctx.Request.Context())

	redirectHome(ctx)
}

func (h *DashboardHandler) PrevPageForm(ctx *gin.Context) {
	h.ctrl.PrevPage(ctx.Request.Context())

	redirectHome(ctx)
}

// JSON API

func (h *DashboardHandler) GetState(ctx *gin.Context) {
	RespondJSONWithETag(ctx, http.StatusOK, NewStateView(h.ctrl.Snapshot()))
}

func (h *DashboardHandler) ReplaceDraft(ctx *gin.Context) {
	var req DraftRequest

	if !BindJSON(ctx, &req) {
		return
	}

	ctx.JSON(http.StatusOK, NewStateView(h.ctrl.SetDraft(req.fields())))
}

func (h *DashboardHandler) SetField(ctx *gin.Context) {
	var req FieldRequest

	if !BindJSON(ctx, &req) {
		return
	}

	st, err := h.ctrl.SetField(ctx.Param("field"), req.Value)
	if err != nil {
		RespondBadRequest(ctx, "Unknown draft field", gin.H{"field": ctx.Param("field")})
		return
	}

	ctx.JSON(http.StatusOK, NewStateView(st))
}

func (h *DashboardHandler) Submit(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, NewStateView(h.ctrl.Submit(ctx.Request.Context())))
}

func (h *DashboardHandler) BeginEdit(ctx *gin.Context) {
	st, err := h.ctrl.BeginEditByID(user.ID(ctx.Param("id")))
	if err != nil {
		h.respondEditError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, NewStateView(st))
}

func (h *DashboardHandler) Delete(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, NewStateView(h.ctrl.Delete(ctx.Request.Context(), user.ID(ctx.Param("id")))))
}

func (h *DashboardHandler) NextPage(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, NewStateView(h.ctrl.NextPage(ctx.Request.Context())))
}

func (h *DashboardHandler) PrevPage(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, NewStateView(h.ctrl.PrevPage(ctx.Request.Context())))
}

func (h *DashboardHandler) respondEditError(ctx *gin.Context, err error) {
	if errors.Is(err, dashboard.ErrRecordNotListed) {
		RespondNotFound(ctx, "User not found on the current page")
		return
	}

	RespondInternal(ctx, "Could not edit user")
}
