package notification

import (
	"context"
	"fmt"

	"github.com/auctionhouse/backend/internal/domain/notification"
	"github.com/auctionhouse/backend/internal/domain/settlement"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatementEventsHandler turns settlement statement events into seller
// notifications.
type StatementEventsHandler struct {
	notifier *NotifyService
	logger   *zap.Logger
}

// NewStatementEventsHandler creates a new StatementEventsHandler
func NewStatementEventsHandler(notifier *NotifyService, logger *zap.Logger) *StatementEventsHandler {
	return &StatementEventsHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *StatementEventsHandler) EventTypes() []string {
	return []string{"SettlementStatementSent", "SettlementStatementPaid"}
}

// Handle processes a statement lifecycle event
func (h *StatementEventsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *settlement.StatementSentEvent:
		return h.notifier.Notify(ctx, []uuid.UUID{e.SellerID}, notification.KindStatementReady,
			fmt.Sprintf("Settlement statement %s is ready", e.StatementNumber),
			notification.Payload{
				"statement_id":     e.StatementID.String(),
				"statement_number": e.StatementNumber,
				"net_payout":       e.NetPayout,
				"payout_display":   valueobject.NewMoneyGBP(e.NetPayout).Format(),
			})
	case *settlement.StatementPaidEvent:
		return h.notifier.Notify(ctx, []uuid.UUID{e.SellerID}, notification.KindStatementPaid,
			fmt.Sprintf("Payout for statement %s sent", e.StatementNumber),
			notification.Payload{
				"statement_id":     e.StatementID.String(),
				"statement_number": e.StatementNumber,
				"net_payout":       e.NetPayout,
				"payout_display":   valueobject.NewMoneyGBP(e.NetPayout).Format(),
			})
	default:
		h.logger.Error("unexpected event type",
			zap.String("event_type", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}
