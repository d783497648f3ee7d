package settlement

import (
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StatementDraftedEvent is raised when a settlement statement is computed
type StatementDraftedEvent struct {
	shared.BaseDomainEvent
	StatementID     uuid.UUID `json:"statement_id"`
	StatementNumber string    `json:"statement_number"`
	SellerID        uuid.UUID `json:"seller_id"`
	AuctionID       uuid.UUID `json:"auction_id"`
	TotalSales      int64     `json:"total_sales"`
	NetPayout       int64     `json:"net_payout"`
	SoldCount       int       `json:"sold_count"`
	UnsoldCount     int       `json:"unsold_count"`
}

// EventType returns the event type name
func (e *StatementDraftedEvent) EventType() string {
	return "SettlementStatementDrafted"
}

// NewStatementDraftedEvent creates a new StatementDraftedEvent
func NewStatementDraftedEvent(st *Statement) *StatementDraftedEvent {
	return &StatementDraftedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SettlementStatementDrafted", "SettlementStatement", st.ID),
		StatementID:     st.ID,
		StatementNumber: st.StatementNumber,
		SellerID:        st.SellerID,
		AuctionID:       st.AuctionID,
		TotalSales:      st.TotalSales,
		NetPayout:       st.NetPayout,
		SoldCount:       len(st.SoldItems),
		UnsoldCount:     len(st.UnsoldItems),
	}
}

// StatementSentEvent is raised when a statement is issued to the seller
type StatementSentEvent struct {
	shared.BaseDomainEvent
	StatementID     uuid.UUID `json:"statement_id"`
	StatementNumber string    `json:"statement_number"`
	SellerID        uuid.UUID `json:"seller_id"`
	NetPayout       int64     `json:"net_payout"`
}

// EventType returns the event type name
func (e *StatementSentEvent) EventType() string {
	return "SettlementStatementSent"
}

// NewStatementSentEvent creates a new StatementSentEvent
func NewStatementSentEvent(st *Statement) *StatementSentEvent {
	return &StatementSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SettlementStatementSent", "SettlementStatement", st.ID),
		StatementID:     st.ID,
		StatementNumber: st.StatementNumber,
		SellerID:        st.SellerID,
		NetPayout:       st.NetPayout,
	}
}

// StatementPaidEvent is raised when the payout is made
type StatementPaidEvent struct {
	shared.BaseDomainEvent
	StatementID     uuid.UUID `json:"statement_id"`
	StatementNumber string    `json:"statement_number"`
	SellerID        uuid.UUID `json:"seller_id"`
	NetPayout       int64     `json:"net_payout"`
}

// EventType returns the event type name
func (e *StatementPaidEvent) EventType() string {
	return "SettlementStatementPaid"
}

// NewStatementPaidEvent creates a new StatementPaidEvent
func NewStatementPaidEvent(st *Statement) *StatementPaidEvent {
	return &StatementPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SettlementStatementPaid", "SettlementStatement", st.ID),
		StatementID:     st.ID,
		StatementNumber: st.StatementNumber,
		SellerID:        st.SellerID,
		NetPayout:       st.NetPayout,
	}
}
