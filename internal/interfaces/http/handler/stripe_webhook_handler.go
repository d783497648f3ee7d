package handler

import (
	"io"
	"net/http"

	billingapp "github.com/auctionhouse/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// Maximum webhook payload size. Stripe events are small; anything larger is
// not one of ours.
const maxWebhookPayloadSize = 65536

// StripeWebhookHandler handles Stripe webhook endpoints.
// These endpoints are called by Stripe and do not require authentication;
// authenticity comes from the signature header.
type StripeWebhookHandler struct {
	BaseHandler
	webhookService *billingapp.StripeWebhookService
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(webhookService *billingapp.StripeWebhookService) *StripeWebhookHandler {
	return &StripeWebhookHandler{
		webhookService: webhookService,
	}
}

// StripeWebhookResponse represents the response for Stripe webhook
//
//	@Description	Stripe webhook response
type StripeWebhookResponse struct {
	Received  bool   `json:"received" example:"true"`
	EventID   string `json:"event_id,omitempty" example:"evt_1234567890"`
	EventType string `json:"event_type,omitempty" example:"checkout.session.completed"`
	Message   string `json:"message,omitempty" example:"Webhook processed successfully"`
}

// HandleStripeWebhook godoc
//
//	@ID				handleStripeWebhook
//	@Summary		Handle Stripe webhook
//	@Description	Receive payment confirmations from Stripe and correlate them back to invoices
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header		string					true	"Stripe webhook signature"
//	@Success		200					{object}	StripeWebhookResponse	"Webhook processed successfully"
//	@Failure		400					{object}	StripeWebhookResponse	"Invalid request"
//	@Failure		401					{object}	StripeWebhookResponse	"Invalid signature"
//	@Failure		413					{object}	StripeWebhookResponse	"Payload too large"
//	@Failure		500					{object}	StripeWebhookResponse	"Processing failed, delivery will be retried"
//	@Router			/webhooks/stripe [post]
func (h *StripeWebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// signature verification needs the raw body, so no binding here
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, StripeWebhookResponse{
			Received: false,
			Message:  "Failed to read request body",
		})
		return
	}

	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, StripeWebhookResponse{
			Received: false,
			Message:  "Payload too large",
		})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusUnauthorized, StripeWebhookResponse{
			Received: false,
			Message:  "Missing Stripe-Signature header",
		})
		return
	}

	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		// nil result means the signature never verified
		if result == nil {
			c.JSON(http.StatusUnauthorized, StripeWebhookResponse{
				Received: false,
				Message:  "Webhook signature verification failed",
			})
			return
		}

		// Processing errors return 500 so Stripe redelivers; the event id is
		// only recorded after successful processing, so the retry is
		// reprocessed. Internal details stay out of the response.
		c.JSON(http.StatusInternalServerError, StripeWebhookResponse{
			Received:  true,
			EventID:   result.EventID,
			EventType: result.EventType,
			Message:   "Webhook received but processing encountered an issue",
		})
		return
	}

	c.JSON(http.StatusOK, StripeWebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Message:   result.Message,
	})
}
