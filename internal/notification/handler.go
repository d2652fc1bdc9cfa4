package notification

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/fkhayef/duesledger/pkg/middleware"
	"github.com/fkhayef/duesledger/pkg/response"
	"github.com/fkhayef/duesledger/pkg/validate"
)

// Handler serves the caller's inbox
type Handler struct {
	service *Service
	log     *zap.Logger
}

// NewHandler creates a new notification handler
func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// Routes returns the router for notification endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/unread-count", h.UnreadCounts)
	r.Post("/{id}/read", h.MarkAsRead)
	r.Post("/read-all", h.MarkAllAsRead)

	return r
}

// NotificationResponse represents a notification
type NotificationResponse struct {
	ID         int64      `json:"id"`
	EntityType EntityType `json:"entity_type" example:"PAYMENT"`
	EntityID   int64      `json:"entity_id"`
	Message    string     `json:"message"`
	IsRead     bool       `json:"is_read"`
	CreatedAt  string     `json:"created_at"`
}

// ToResponse converts a Notification to a NotificationResponse DTO
func (n *Notification) ToResponse() *NotificationResponse {
	return &NotificationResponse{
		ID:         n.ID,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		Message:    n.Message,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// List handles GET /notifications
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Param        type query string false "DUE or PAYMENT"
// @Param        unread_only query bool false "Only unread notifications"
// @Param        page query int false "Page number" default(1)
// @Param        per_page query int false "Items per page" default(20)
// @Success      200 {object} response.APIResponse{data=[]NotificationResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /notifications [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	entityType, ok := entityTypeParam(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	filter := Filter{EntityType: entityType, UnreadOnly: q.Get("unread_only") == "true"}
	notifications, total, err := h.service.List(r.Context(), userID, filter, page, perPage)
	if err != nil {
		h.internal(w, r, err, "Failed to list notifications")
		return
	}

	notificationResponses := make([]*NotificationResponse, len(notifications))
	for i, n := range notifications {
		notificationResponses[i] = n.ToResponse()
	}

	response.JSONWithMeta(w, http.StatusOK, notificationResponses, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	})
}

// UnreadCounts handles GET /notifications/unread-count
// @Summary      Unread notification counts
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.APIResponse{data=UnreadCounts}
// @Router       /notifications/unread-count [get]
func (h *Handler) UnreadCounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	counts, err := h.service.UnreadCounts(r.Context(), userID)
	if err != nil {
		h.internal(w, r, err, "Failed to get unread count")
		return
	}

	response.JSON(w, http.StatusOK, counts)
}

// MarkAsRead handles POST /notifications/{id}/read
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Param        id path int true "Notification ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /notifications/{id}/read [post]
func (h *Handler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid notification ID")
		return
	}

	if err := h.service.MarkAsRead(r.Context(), userID, id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		h.internal(w, r, err, "Failed to mark notification as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// MarkAllAsRead handles POST /notifications/read-all
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Param        type query string false "DUE or PAYMENT"
// @Success      200 {object} response.APIResponse
// @Router       /notifications/read-all [post]
func (h *Handler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	entityType, ok := entityTypeParam(w, r)
	if !ok {
		return
	}

	marked, err := h.service.MarkAllAsRead(r.Context(), userID, entityType)
	if err != nil {
		h.internal(w, r, err, "Failed to mark notifications as read")
		return
	}

	response.JSON(w, http.StatusOK, map[string]int64{"marked": marked})
}

func entityTypeParam(w http.ResponseWriter, r *http.Request) (EntityType, bool) {
	t, ok := ParseEntityType(r.URL.Query().Get("type"))
	if !ok {
		response.Invalid(w, &validate.ValidationError{
			Err:    validate.ErrInvalidInput,
			Fields: []validate.FieldError{{Field: "type", Error: "type must be one of [DUE PAYMENT]"}},
		})
		return "", false
	}
	return t, true
}

func (h *Handler) internal(w http.ResponseWriter, r *http.Request, err error, msg string) {
	h.log.Error(msg, zap.Error(err), zap.String("request_id", chimw.GetReqID(r.Context())))
	response.InternalError(w, msg)
}
