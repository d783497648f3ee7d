package event

import (
	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/auctionhouse/backend/internal/domain/settlement"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the outbox table.
func RegisterAllEvents(serializer *EventSerializer) {
	// Billing domain - Invoice events
	serializer.Register("InvoiceCreated", &billing.InvoiceCreatedEvent{})
	serializer.Register("InvoiceSent", &billing.InvoiceSentEvent{})
	serializer.Register("InvoicePaid", &billing.InvoicePaidEvent{})
	serializer.Register("InvoiceCancelled", &billing.InvoiceCancelledEvent{})

	// Settlement domain - Statement events
	serializer.Register("SettlementStatementDrafted", &settlement.StatementDraftedEvent{})
	serializer.Register("SettlementStatementSent", &settlement.StatementSentEvent{})
	serializer.Register("SettlementStatementPaid", &settlement.StatementPaidEvent{})
}
