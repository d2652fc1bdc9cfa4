package summary

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fkhayef/duesledger/internal/ledger"
	"github.com/fkhayef/duesledger/pkg/middleware"
	"github.com/fkhayef/duesledger/pkg/response"
)

// Handler serves department-wide payment reports
type Handler struct {
	service *ledger.Service
	log     *zap.Logger
}

// NewHandler creates a new summary handler
func NewHandler(service *ledger.Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes returns the router for summary endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleHOD)).Get("/", h.List)
	r.With(middleware.RequireRole(middleware.RoleAdmin)).Get("/audit", h.Audit)

	return r
}

// List handles GET /summaries
// @Summary      Summaries for every student
// @Description  Ordered by outstanding balance, largest first
// @Tags         summaries
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]ledger.SummaryResponse}
// @Router       /summaries [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.AllStudentSummaries(r.Context())
	if err != nil {
		h.log.Error("failed to build summaries", zap.Error(err), zap.String("request_id", chimw.GetReqID(r.Context())))
		response.InternalError(w, "Failed to build summaries")
		return
	}

	summaryResponses := make([]*ledger.SummaryResponse, len(summaries))
	for i, s := range summaries {
		summaryResponses[i] = s.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, summaryResponses, &response.Meta{Total: len(summaries)})
}

// Audit handles GET /summaries/audit
// @Summary      Reconcile stored balances against the payment ledger
// @Tags         summaries
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]ledger.DriftResponse}
// @Router       /summaries/audit [get]
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	drifts, err := h.service.Audit(r.Context())
	if err != nil {
		h.log.Error("failed to audit ledger", zap.Error(err), zap.String("request_id", chimw.GetReqID(r.Context())))
		response.InternalError(w, "Failed to audit ledger")
		return
	}

	driftResponses := make([]*ledger.DriftResponse, len(drifts))
	for i, d := range drifts {
		driftResponses[i] = d.ToResponse()
	}

	response.JSON(w, http.StatusOK, driftResponses)
}
