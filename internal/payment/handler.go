package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fkhayef/duesledger/internal/ledger"
	"github.com/fkhayef/duesledger/pkg/middleware"
	"github.com/fkhayef/duesledger/pkg/response"
	"github.com/fkhayef/duesledger/pkg/validate"
)

// Handler handles HTTP requests for payment operations
type Handler struct {
	service *ledger.Service
	log     *zap.Logger
}

// NewHandler creates a new payment handler
func NewHandler(service *ledger.Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes returns the router for payment endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/references", h.NewReference)
	r.With(middleware.RequireRole(middleware.RoleAdmin)).Post("/", h.Record)
	r.Get("/{reference}", h.GetByReference)

	return r
}

// NewReference handles POST /payments/references
// @Summary      Mint a payment reference
// @Description  Every payment attempt, retries included, must use a fresh reference
// @Tags         payments
// @Produce      json
// @Success      200 {object} response.APIResponse{data=ReferenceResponse}
// @Router       /payments/references [post]
func (h *Handler) NewReference(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	response.JSON(w, http.StatusOK, ReferenceResponse{Reference: h.service.NewPaymentReference()})
}

// Record handles POST /payments
// @Summary      Record a captured payment
// @Description  Appends the payment and updates the student's balance and status atomically
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body RecordPaymentRequest true "Captured payment"
// @Success      201 {object} response.APIResponse{data=ledger.ReceiptResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /payments [post]
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	receipt, err := h.service.RecordPayment(r.Context(), req.toInput())
	if err != nil {
		h.fail(w, r, err, "Failed to record payment")
		return
	}

	response.JSON(w, http.StatusCreated, receipt.ToResponse())
}

// GetByReference handles GET /payments/{reference}
// @Summary      Look up a payment by reference
// @Tags         payments
// @Produce      json
// @Param        reference path string true "Payment reference"
// @Success      200 {object} response.APIResponse{data=ledger.PaymentResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /payments/{reference} [get]
func (h *Handler) GetByReference(w http.ResponseWriter, r *http.Request) {
	payment, err := h.service.GetPaymentByReference(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		h.fail(w, r, err, "Failed to get payment")
		return
	}

	// Students get the same 404 for someone else's reference
	if !middleware.CanAccessStudent(r.Context(), payment.StudentID) {
		response.NotFound(w, ledger.ErrPaymentNotFound.Error())
		return
	}

	response.JSON(w, http.StatusOK, payment.ToResponse())
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var vErr *validate.ValidationError
	switch {
	case errors.As(err, &vErr):
		response.Invalid(w, vErr)
	case errors.Is(err, ledger.ErrStudentDueNotFound), errors.Is(err, ledger.ErrPaymentNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ledger.ErrDuplicateReference):
		response.Conflict(w, err.Error())
	default:
		h.log.Error(msg, zap.Error(err), zap.String("request_id", chimw.GetReqID(r.Context())))
		response.InternalError(w, msg)
	}
}
