package student

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

// Handler handles HTTP requests for student operations
type Handler struct {
	service *ledger.Service
	log     *zap.Logger
}

// NewHandler creates a new student handler
func NewHandler(service *ledger.Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes returns the router for student endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(middleware.RoleAdmin))
		r.Post("/", h.Create)
		r.Patch("/{id}/level", h.UpdateLevel)
		r.Delete("/{id}", h.Delete)
	})

	r.With(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleHOD)).Get("/", h.List)

	// Staff, or the student themselves
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleHOD, middleware.RoleStudent))
		r.Get("/{id}", h.GetByID)
		r.Get("/{id}/summary", h.Summary)
		r.Get("/{id}/payments", h.Payments)
	})

	return r
}

// Create handles POST /students
// @Summary      Enrol a student
// @Description  Create a student and assign every due matching their level
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        request body CreateStudentRequest true "Student"
// @Success      201 {object} response.APIResponse{data=ledger.StudentResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /students [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	student, err := h.service.CreateStudent(r.Context(), req.toInput())
	if err != nil {
		h.fail(w, r, err, "Failed to create student")
		return
	}

	response.JSON(w, http.StatusCreated, student.ToResponse())
}

// List handles GET /students
// @Summary      List students
// @Tags         students
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]ledger.StudentResponse}
// @Router       /students [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.ListStudents(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to list students")
		return
	}

	studentResponses := make([]*ledger.StudentResponse, len(students))
	for i, s := range students {
		studentResponses[i] = s.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, studentResponses, &response.Meta{Total: len(students)})
}

// GetByID handles GET /students/{id}
// @Summary      Get student by ID
// @Tags         students
// @Produce      json
// @Param        id path int true "Student ID"
// @Success      200 {object} response.APIResponse{data=ledger.StudentResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /students/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accessibleStudentID(w, r)
	if !ok {
		return
	}

	student, err := h.service.GetStudent(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to get student")
		return
	}

	response.JSON(w, http.StatusOK, student.ToResponse())
}

// UpdateLevel handles PATCH /students/{id}/level
// @Summary      Change a student's level
// @Description  Drops the student's assignments and reassigns dues for the new level. Payments are kept.
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        id path int true "Student ID"
// @Param        request body UpdateLevelRequest true "New level"
// @Success      200 {object} response.APIResponse{data=ledger.StudentResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /students/{id}/level [patch]
func (h *Handler) UpdateLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := studentID(w, r)
	if !ok {
		return
	}

	var req UpdateLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	student, err := h.service.UpdateStudentLevel(r.Context(), id, req.Level)
	if err != nil {
		h.fail(w, r, err, "Failed to update student level")
		return
	}

	response.JSON(w, http.StatusOK, student.ToResponse())
}

// Delete handles DELETE /students/{id}
// @Summary      Delete a student
// @Description  Delete a student with their assignments and payments
// @Tags         students
// @Produce      json
// @Param        id path int true "Student ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /students/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := studentID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteStudent(r.Context(), id); err != nil {
		h.fail(w, r, err, "Failed to delete student")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Student deleted successfully"})
}

// Summary handles GET /students/{id}/summary
// @Summary      Get a student's payment summary
// @Tags         students
// @Produce      json
// @Param        id path int true "Student ID"
// @Success      200 {object} response.APIResponse{data=ledger.SummaryResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /students/{id}/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accessibleStudentID(w, r)
	if !ok {
		return
	}

	summary, err := h.service.StudentSummary(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to get summary")
		return
	}

	response.JSON(w, http.StatusOK, summary.ToResponse())
}

// Payments handles GET /students/{id}/payments
// @Summary      List a student's payments
// @Tags         students
// @Produce      json
// @Param        id path int true "Student ID"
// @Success      200 {object} response.APIResponse{data=[]ledger.PaymentResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /students/{id}/payments [get]
func (h *Handler) Payments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accessibleStudentID(w, r)
	if !ok {
		return
	}

	payments, err := h.service.ListPayments(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to list payments")
		return
	}

	paymentResponses := make([]*ledger.PaymentResponse, len(payments))
	for i, p := range payments {
		paymentResponses[i] = p.ToResponse()
	}

	response.JSON(w, http.StatusOK, paymentResponses)
}

func studentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid student ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) accessibleStudentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := studentID(w, r)
	if !ok {
		return 0, false
	}
	if !middleware.CanAccessStudent(r.Context(), id) {
		response.Forbidden(w, "You can only view your own records")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var vErr *validate.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.Invalid(w, vErr)
	case errors.Is(err, ledger.ErrStudentNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ledger.ErrDuplicateEmail):
		response.Conflict(w, err.Error())
	default:
		h.log.Error(msg, zap.Error(err), zap.String("request_id", chimw.GetReqID(r.Context())))
		response.InternalError(w, msg)
	}
}
