package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/auctionhouse/backend/internal/infrastructure/payment"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// IdempotencyStore remembers processed webhook event ids so duplicate
// deliveries become no-ops. Implemented on redis with a TTL.
type IdempotencyStore interface {
	// IsProcessed reports whether the key was already recorded
	IsProcessed(ctx context.Context, key string) (bool, error)
	// SetIfAbsent records the key and reports true when it was not yet present
	SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// InvoicePayer is the slice of InvoiceService the webhook handler needs
type InvoicePayer interface {
	MarkPaid(ctx context.Context, invoiceID uuid.UUID, gatewayRef string) error
}

// webhookDedupeTTL is how long processed event ids are remembered. Stripe
// retries for up to three days.
const webhookDedupeTTL = 96 * time.Hour

// StripeWebhookService correlates gateway confirmations back to invoices.
// Payment link and off-session charge completions carry the invoice id in
// their metadata; the handler verifies the signature, dedupes by event id,
// and marks the invoice paid.
type StripeWebhookService struct {
	config      *payment.StripeConfig
	payer       InvoicePayer
	idempotency IdempotencyStore
	logger      *zap.Logger
}

// StripeWebhookServiceConfig contains configuration for StripeWebhookService
type StripeWebhookServiceConfig struct {
	Config      *payment.StripeConfig
	Payer       InvoicePayer
	Idempotency IdempotencyStore
	Logger      *zap.Logger
}

// NewStripeWebhookService creates a new StripeWebhookService
func NewStripeWebhookService(cfg StripeWebhookServiceConfig) *StripeWebhookService {
	return &StripeWebhookService{
		config:      cfg.Config,
		payer:       cfg.Payer,
		idempotency: cfg.Idempotency,
		logger:      cfg.Logger,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// ProcessWebhook verifies and processes one Stripe webhook delivery
func (s *StripeWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		s.logger.Error("Failed to verify webhook signature", zap.Error(err))
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Processed: true,
	}

	dedupeKey := "stripe:webhook:" + event.ID
	seen, err := s.idempotency.IsProcessed(ctx, dedupeKey)
	if err != nil {
		// the invoice status guard still prevents double transitions, so a
		// dedupe store outage degrades to extra lookups, not double charges
		s.logger.Warn("Webhook dedupe store unavailable",
			zap.String("event_id", event.ID), zap.Error(err))
	} else if seen {
		result.Message = "Duplicate delivery"
		return result, nil
	}

	s.logger.Info("Processing Stripe webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	switch event.Type {
	case "checkout.session.completed":
		err = s.handleCheckoutCompleted(ctx, event)
	case "payment_intent.succeeded":
		err = s.handlePaymentIntentSucceeded(ctx, event)
	default:
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", string(event.Type)))
		result.Message = "Event type not handled"
	}

	if err != nil {
		// the event id stays unrecorded so the gateway's redelivery is
		// reprocessed rather than swallowed as a duplicate
		s.logger.Error("Failed to process webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
		return result, err
	}

	if _, err := s.idempotency.SetIfAbsent(ctx, dedupeKey, webhookDedupeTTL); err != nil {
		s.logger.Warn("Failed to record processed webhook event",
			zap.String("event_id", event.ID), zap.Error(err))
	}

	return result, nil
}

// handleCheckoutCompleted covers payment link completions
func (s *StripeWebhookService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	gatewayRef := session.ID
	if session.PaymentIntent != nil {
		gatewayRef = session.PaymentIntent.ID
	}

	return s.markInvoicePaid(ctx, session.Metadata, gatewayRef)
}

// handlePaymentIntentSucceeded covers off-session charge confirmations
func (s *StripeWebhookService) handlePaymentIntentSucceeded(ctx context.Context, event stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return fmt.Errorf("failed to unmarshal payment intent: %w", err)
	}

	return s.markInvoicePaid(ctx, intent.Metadata, intent.ID)
}

func (s *StripeWebhookService) markInvoicePaid(ctx context.Context, metadata map[string]string, gatewayRef string) error {
	raw, ok := metadata["invoice_id"]
	if !ok || raw == "" {
		// not one of ours; acknowledge so Stripe stops retrying
		s.logger.Debug("Webhook payload carries no invoice metadata")
		return nil
	}

	invoiceID, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Warn("Webhook carries malformed invoice id",
			zap.String("invoice_id", raw))
		return nil
	}

	if err := s.payer.MarkPaid(ctx, invoiceID, gatewayRef); err != nil {
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	s.logger.Info("Invoice paid via webhook confirmation",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("gateway_ref", gatewayRef))

	return nil
}
