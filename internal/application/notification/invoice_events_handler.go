package notification

import (
	"context"
	"fmt"

	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/auctionhouse/backend/internal/domain/notification"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceEventsHandler turns invoice lifecycle events into buyer
// notifications. It runs on the event bus behind the transactional outbox,
// so notifications only fire after the owning financial transaction commits.
type InvoiceEventsHandler struct {
	notifier *NotifyService
	logger   *zap.Logger
}

// NewInvoiceEventsHandler creates a new InvoiceEventsHandler
func NewInvoiceEventsHandler(notifier *NotifyService, logger *zap.Logger) *InvoiceEventsHandler {
	return &InvoiceEventsHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *InvoiceEventsHandler) EventTypes() []string {
	return []string{"InvoicePaid", "InvoiceCancelled"}
}

// Handle processes an invoice lifecycle event
func (h *InvoiceEventsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *billing.InvoicePaidEvent:
		return h.notifier.Notify(ctx, []uuid.UUID{e.BuyerID}, notification.KindInvoicePaid,
			fmt.Sprintf("Invoice %s paid", e.InvoiceNumber),
			notification.Payload{
				"invoice_id":     e.InvoiceID.String(),
				"invoice_number": e.InvoiceNumber,
				"total_amount":   e.TotalAmount,
				"total_display":  valueobject.NewMoneyGBP(e.TotalAmount).Format(),
				"gateway_ref":    e.GatewayRef,
			})
	case *billing.InvoiceCancelledEvent:
		return h.notifier.Notify(ctx, []uuid.UUID{e.BuyerID}, notification.KindInvoiceCancelled,
			fmt.Sprintf("Invoice %s cancelled", e.InvoiceNumber),
			notification.Payload{
				"invoice_id":     e.InvoiceID.String(),
				"invoice_number": e.InvoiceNumber,
				"reason":         e.Reason,
			})
	default:
		h.logger.Error("unexpected event type",
			zap.String("event_type", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}
