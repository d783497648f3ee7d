package notification

import (
	"context"
	"fmt"

	appbilling "github.com/auctionhouse/backend/internal/application/billing"
	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/auctionhouse/backend/internal/domain/notification"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotifyService persists lifecycle notifications and pushes best-effort
// real-time events. The durable record is the source of truth; the push is a
// UX accelerant and its failure never fails the calling operation.
type NotifyService struct {
	repo      notification.Repository
	publisher notification.Publisher
	logger    *zap.Logger
}

// NewNotifyService creates a new NotifyService
func NewNotifyService(
	repo notification.Repository,
	publisher notification.Publisher,
	logger *zap.Logger,
) *NotifyService {
	return &NotifyService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Notify persists one durable record per recipient, then pushes each one in
// fire-and-forget fashion.
func (s *NotifyService) Notify(ctx context.Context, recipients []uuid.UUID, kind notification.Kind, title string, payload notification.Payload) error {
	if len(recipients) == 0 {
		return nil
	}

	records := make([]*notification.Notification, 0, len(recipients))
	for _, recipientID := range recipients {
		n, err := notification.New(recipientID, kind, title, payload)
		if err != nil {
			return err
		}
		records = append(records, n)
	}

	if err := s.repo.Save(ctx, records...); err != nil {
		return fmt.Errorf("failed to save notifications: %w", err)
	}

	for _, n := range records {
		s.push(ctx, n)
	}

	return nil
}

// push publishes one record to the recipient's channel, swallowing failures
func (s *NotifyService) push(ctx context.Context, n *notification.Notification) {
	if s.publisher == nil {
		return
	}
	channel := fmt.Sprintf("notifications:%s", n.RecipientID)
	if err := s.publisher.Publish(ctx, channel, string(n.Kind), n.Payload); err != nil {
		s.logger.Warn("Real-time notification push failed",
			zap.String("recipient_id", n.RecipientID.String()),
			zap.String("kind", string(n.Kind)),
			zap.Error(err),
		)
	}
}

// ListForRecipient returns the recipient's most recent notifications
func (s *NotifyService) ListForRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]notification.Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	records, err := s.repo.FindByRecipient(ctx, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return records, nil
}

// MarkRead records that the recipient read a notification
func (s *NotifyService) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// InvoiceDispatched notifies the buyer that their invoice is on its way,
// carrying the pay-link when one was issued. Implements the dispatch
// notifier used by the batch sender.
func (s *NotifyService) InvoiceDispatched(ctx context.Context, invoice *billing.Invoice, result *appbilling.ReconcileResult) error {
	payload := notification.Payload{
		"invoice_id":     invoice.ID.String(),
		"invoice_number": invoice.InvoiceNumber,
		"total_amount":   invoice.TotalAmount,
		"total_display":  valueobject.NewMoneyGBP(invoice.TotalAmount).Format(),
	}
	title := fmt.Sprintf("Invoice %s", invoice.InvoiceNumber)

	kind := notification.KindInvoiceSent
	if result != nil {
		switch result.Outcome {
		case appbilling.OutcomeCharged, appbilling.OutcomeAlreadyPaid:
			kind = notification.KindInvoicePaid
			title = fmt.Sprintf("Invoice %s paid", invoice.InvoiceNumber)
		case appbilling.OutcomeLinkIssued:
			payload["pay_link_url"] = result.PayLinkURL
		}
	}

	return s.Notify(ctx, []uuid.UUID{invoice.BuyerID}, kind, title, payload)
}
