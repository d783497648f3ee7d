package settlement

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// StatementStatus represents the status of a settlement statement
type StatementStatus string

const (
	StatementStatusDraft StatementStatus = "DRAFT"
	StatementStatusSent  StatementStatus = "SENT"
	StatementStatusPaid  StatementStatus = "PAID"
)

// IsValid checks if the status is a valid StatementStatus
func (s StatementStatus) IsValid() bool {
	switch s {
	case StatementStatusDraft, StatementStatusSent, StatementStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of StatementStatus
func (s StatementStatus) String() string {
	return string(s)
}

// UnsoldReason explains why an item generated no payout obligation
type UnsoldReason string

const (
	// UnsoldReasonNoBids means no bid was placed on the item
	UnsoldReasonNoBids UnsoldReason = "NO_BIDS"
	// UnsoldReasonBelowReserve means a high bid exists but is below the
	// seller's reserve; the bid amount must not count towards sales.
	UnsoldReasonBelowReserve UnsoldReason = "BELOW_RESERVE"
)

// StatementItem is one of the seller's lots as it appears on the statement.
// HammerPrice is pence; it is zero for no-bid items and carries the losing
// high bid for below-reserve items (informational only).
type StatementItem struct {
	AuctionItemID uuid.UUID    `json:"auction_item_id"`
	LotNumber     int          `json:"lot_number"`
	Title         string       `json:"title"`
	HammerPrice   int64        `json:"hammer_price"`
	UnsoldReason  UnsoldReason `json:"unsold_reason,omitempty"`
}

// StatementItems implements GORM Scanner/Valuer for JSONB storage
type StatementItems []StatementItem

// Value implements driver.Valuer
func (s StatementItems) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner
func (s *StatementItems) Scan(value interface{}) error {
	if value == nil {
		*s = StatementItems{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan StatementItems: unsupported type")
	}
	if len(bytes) == 0 {
		*s = StatementItems{}
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Adjustment is one named deduction from the seller's payout. Adjustments
// are always itemized so the statement stays auditable line by line; a
// single opaque deduction figure is not acceptable.
type Adjustment struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"` // pence, positive = deduction
}

// Adjustments implements GORM Scanner/Valuer for JSONB storage
type Adjustments []Adjustment

// Value implements driver.Valuer
func (a Adjustments) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *Adjustments) Scan(value interface{}) error {
	if value == nil {
		*a = Adjustments{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Adjustments: unsupported type")
	}
	if len(bytes) == 0 {
		*a = Adjustments{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// Total returns the sum of all deductions in pence
func (a Adjustments) Total() int64 {
	var total int64
	for _, adj := range a {
		total += adj.Amount
	}
	return total
}

// Statement is the aggregate root for one seller's payout computation for
// one auction. It is derived from item and bid data, never from invoice
// status.
type Statement struct {
	shared.BaseAggregateRoot
	StatementNumber string
	SellerID        uuid.UUID
	AuctionID       uuid.UUID
	Status          StatementStatus
	SoldItems       StatementItems
	UnsoldItems     StatementItems
	TotalSales      int64 // pence
	Commission      int64
	Adjustments     Adjustments
	NetPayout       int64
	SentAt          *time.Time
	PaidAt          *time.Time
}

// NewStatement creates a draft settlement statement. The caller supplies the
// already-partitioned items; NewStatement derives and verifies the monetary
// invariants:
//
//	totalSales = Σ sold hammer prices
//	netPayout  = totalSales − commission − Σ adjustments
//
// A would-be-negative payout is rejected with a validation error so it goes
// to manual review instead of settling a negative amount.
func NewStatement(
	statementNumber string,
	sellerID, auctionID uuid.UUID,
	sold, unsold StatementItems,
	commission int64,
	adjustments Adjustments,
) (*Statement, error) {
	if statementNumber == "" {
		return nil, shared.NewValidationError("INVALID_STATEMENT_NUMBER", "Statement number cannot be empty")
	}
	if sellerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if auctionID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_AUCTION", "Auction ID cannot be empty")
	}
	if commission < 0 {
		return nil, shared.NewValidationError("INVALID_COMMISSION", "Commission cannot be negative")
	}
	for _, adj := range adjustments {
		if adj.Label == "" {
			return nil, shared.NewValidationError("UNNAMED_ADJUSTMENT", "Every adjustment must carry a label")
		}
	}
	for _, item := range unsold {
		if item.UnsoldReason != UnsoldReasonNoBids && item.UnsoldReason != UnsoldReasonBelowReserve {
			return nil, shared.NewValidationError("INVALID_UNSOLD_REASON",
				fmt.Sprintf("Unsold item %s needs a reason", item.AuctionItemID))
		}
	}

	var totalSales int64
	for _, item := range sold {
		totalSales += item.HammerPrice
	}

	netPayout := totalSales - commission - adjustments.Total()
	if netPayout < 0 {
		return nil, shared.NewValidationError("NEGATIVE_PAYOUT",
			fmt.Sprintf("Net payout would be %d pence; statement requires manual review", netPayout))
	}

	st := &Statement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StatementNumber:   statementNumber,
		SellerID:          sellerID,
		AuctionID:         auctionID,
		Status:            StatementStatusDraft,
		SoldItems:         sold,
		UnsoldItems:       unsold,
		TotalSales:        totalSales,
		Commission:        commission,
		Adjustments:       adjustments,
		NetPayout:         netPayout,
	}

	st.AddDomainEvent(NewStatementDraftedEvent(st))

	return st, nil
}

// MarkSent records that the statement was issued to the seller
func (st *Statement) MarkSent() error {
	if st.Status == StatementStatusSent {
		return nil
	}
	if st.Status != StatementStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send statement in %s status", st.Status))
	}

	now := time.Now()
	st.Status = StatementStatusSent
	st.SentAt = &now
	st.UpdatedAt = now
	st.IncrementVersion()

	st.AddDomainEvent(NewStatementSentEvent(st))

	return nil
}

// MarkPaid records that the payout was made to the seller
func (st *Statement) MarkPaid() error {
	if st.Status == StatementStatusPaid {
		return nil
	}
	if st.Status != StatementStatusSent {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot pay statement in %s status", st.Status))
	}

	now := time.Now()
	st.Status = StatementStatusPaid
	st.PaidAt = &now
	st.UpdatedAt = now
	st.IncrementVersion()

	st.AddDomainEvent(NewStatementPaidEvent(st))

	return nil
}

// GetNetPayoutMoney returns the payout as Money
func (st *Statement) GetNetPayoutMoney() valueobject.Money {
	return valueobject.NewMoneyGBP(st.NetPayout)
}

// GetTotalSalesMoney returns total sales as Money
func (st *Statement) GetTotalSalesMoney() valueobject.Money {
	return valueobject.NewMoneyGBP(st.TotalSales)
}
