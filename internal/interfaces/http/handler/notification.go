package handler

import (
	"time"

	notificationapp "github.com/auctionhouse/backend/internal/application/notification"
	"github.com/auctionhouse/backend/internal/domain/notification"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NotificationHandler handles notification inbox endpoints
type NotificationHandler struct {
	BaseHandler
	service *notificationapp.NotifyService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *notificationapp.NotifyService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// ListNotificationsRequest carries the inbox query parameters
type ListNotificationsRequest struct {
	RecipientID string `form:"recipient_id" binding:"required,uuid"`
	Limit       int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// NotificationResponse represents one notification in API responses
type NotificationResponse struct {
	ID          string               `json:"id"`
	RecipientID string               `json:"recipient_id"`
	Kind        string               `json:"kind"`
	Title       string               `json:"title"`
	Payload     notification.Payload `json:"payload"`
	ReadAt      *time.Time           `json:"read_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

func toNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID.String(),
		RecipientID: n.RecipientID.String(),
		Kind:        string(n.Kind),
		Title:       n.Title,
		Payload:     n.Payload,
		ReadAt:      n.ReadAt,
		CreatedAt:   n.CreatedAt,
	}
}

// List godoc
//
//	@ID			listNotifications
//	@Summary	List notifications
//	@Description	List a recipient's most recent notifications, newest first
//	@Tags		notifications
//	@Produce	json
//	@Param		recipient_id	query		string	true	"Recipient ID"
//	@Param		limit			query		int		false	"Maximum records to return (default 50)"
//	@Success	200				{object}	APIResponse[[]NotificationResponse]
//	@Router		/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	var req ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	records, err := h.service.ListForRecipient(c.Request.Context(), uuid.MustParse(req.RecipientID), req.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]NotificationResponse, 0, len(records))
	for i := range records {
		out = append(out, toNotificationResponse(&records[i]))
	}
	h.Success(c, out)
}

// MarkRead godoc
//
//	@ID			markNotificationRead
//	@Summary	Mark notification read
//	@Description	Record that the recipient read a notification. Re-reading is a no-op.
//	@Tags		notifications
//	@Produce	json
//	@Param		id	path	string	true	"Notification ID"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Router		/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
