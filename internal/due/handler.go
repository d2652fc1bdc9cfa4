package due

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fkhayef/duesledger/internal/ledger"
	"github.com/fkhayef/duesledger/pkg/middleware"
	"github.com/fkhayef/duesledger/pkg/response"
	"github.com/fkhayef/duesledger/pkg/validate"
)

// Handler handles HTTP requests for due operations
type Handler struct {
	service *ledger.Service
	log     *zap.Logger
}

// NewHandler creates a new due handler
func NewHandler(service *ledger.Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes returns the router for due endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleHOD))
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
		r.Get("/{id}/assignments", h.ListAssignments)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(middleware.RoleAdmin))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	return r
}

// Create handles POST /dues
// @Summary      Create a due
// @Description  Create a due and assign it to every student at its level
// @Tags         dues
// @Accept       json
// @Produce      json
// @Param        request body DueRequest true "Due"
// @Success      201 {object} response.APIResponse{data=ledger.DueResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /dues [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req DueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	due, err := h.service.CreateDue(r.Context(), req.toInput())
	if err != nil {
		h.fail(w, r, err, "Failed to create due")
		return
	}

	response.JSON(w, http.StatusCreated, due.ToResponse())
}

// GetByID handles GET /dues/{id}
// @Summary      Get due by ID
// @Tags         dues
// @Produce      json
// @Param        id path int true "Due ID"
// @Success      200 {object} response.APIResponse{data=ledger.DueResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /dues/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := dueID(w, r)
	if !ok {
		return
	}

	due, err := h.service.GetDue(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to get due")
		return
	}

	response.JSON(w, http.StatusOK, due.ToResponse())
}

// List handles GET /dues
// @Summary      List dues
// @Tags         dues
// @Produce      json
// @Param        level query string false "Level, e.g. ICT 300"
// @Param        academic_year query string false "Academic year, e.g. 2024/2025"
// @Success      200 {object} response.APIResponse{data=[]ledger.DueResponse}
// @Router       /dues [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ledger.DueFilter{
		Level:        r.URL.Query().Get("level"),
		AcademicYear: r.URL.Query().Get("academic_year"),
	}

	dues, err := h.service.ListDues(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err, "Failed to list dues")
		return
	}

	dueResponses := make([]*ledger.DueResponse, len(dues))
	for i, d := range dues {
		dueResponses[i] = d.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, dueResponses, &response.Meta{Total: len(dues)})
}

// Update handles PUT /dues/{id}
// @Summary      Update a due
// @Description  Edit a due. A new amount moves every assigned balance by the difference.
// @Tags         dues
// @Accept       json
// @Produce      json
// @Param        id path int true "Due ID"
// @Param        request body DueRequest true "Due"
// @Success      200 {object} response.APIResponse{data=ledger.DueResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /dues/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := dueID(w, r)
	if !ok {
		return
	}

	var req DueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	due, err := h.service.UpdateDue(r.Context(), id, req.toInput())
	if err != nil {
		h.fail(w, r, err, "Failed to update due")
		return
	}

	response.JSON(w, http.StatusOK, due.ToResponse())
}

// Delete handles DELETE /dues/{id}
// @Summary      Delete a due
// @Description  Delete a due and its assignments. Payments made against it are kept.
// @Tags         dues
// @Produce      json
// @Param        id path int true "Due ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /dues/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := dueID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteDue(r.Context(), id); err != nil {
		h.fail(w, r, err, "Failed to delete due")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Due deleted successfully"})
}

// ListAssignments handles GET /dues/{id}/assignments
// @Summary      List the students owing a due
// @Tags         dues
// @Produce      json
// @Param        id path int true "Due ID"
// @Success      200 {object} response.APIResponse{data=[]ledger.StudentDueResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /dues/{id}/assignments [get]
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	id, ok := dueID(w, r)
	if !ok {
		return
	}

	assignments, err := h.service.ListDueAssignments(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to list assignments")
		return
	}

	resp := make([]*ledger.StudentDueResponse, len(assignments))
	for i, sd := range assignments {
		resp[i] = sd.ToResponse()
	}

	response.JSON(w, http.StatusOK, resp)
}

func dueID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid due ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var vErr *validate.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.Invalid(w, vErr)
	case errors.Is(err, ledger.ErrDueNotFound):
		response.NotFound(w, err.Error())
	default:
		h.log.Error(msg, zap.Error(err), zap.String("request_id", chimw.GetReqID(r.Context())))
		response.InternalError(w, msg)
	}
}
