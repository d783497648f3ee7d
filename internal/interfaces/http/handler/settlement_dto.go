package handler

import (
	"time"

	"github.com/auctionhouse/backend/internal/domain/settlement"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
)

// AdjustmentRequest is one named deduction applied to a settlement
type AdjustmentRequest struct {
	Label  string `json:"label" binding:"required,max=255" example:"Photography fee"`
	Amount int64  `json:"amount" binding:"required,min=1" example:"2500"`
}

// ComputeSettlementRequest is the payload for drafting a seller statement
// @Description Settlement computation request for one seller in one auction
type ComputeSettlementRequest struct {
	SellerID    string              `json:"seller_id" binding:"required,uuid"`
	AuctionID   string              `json:"auction_id" binding:"required,uuid"`
	Adjustments []AdjustmentRequest `json:"adjustments" binding:"omitempty,dive"`
}

// StatementItemResponse is one lot as it appears on the statement
type StatementItemResponse struct {
	AuctionItemID string `json:"auction_item_id"`
	LotNumber     int    `json:"lot_number"`
	Title         string `json:"title"`
	HammerPrice   int64  `json:"hammer_price"`
	UnsoldReason  string `json:"unsold_reason,omitempty" enums:"NO_BIDS,BELOW_RESERVE"`
}

// AdjustmentResponse is one named deduction in API responses
type AdjustmentResponse struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// StatementResponse represents a settlement statement in API responses
type StatementResponse struct {
	ID               string                  `json:"id"`
	StatementNumber  string                  `json:"statement_number" example:"STMT-2026-00017"`
	SellerID         string                  `json:"seller_id"`
	AuctionID        string                  `json:"auction_id"`
	Status           string                  `json:"status" enums:"DRAFT,SENT,PAID"`
	SoldItems        []StatementItemResponse `json:"sold_items"`
	UnsoldItems      []StatementItemResponse `json:"unsold_items"`
	TotalSales       int64                   `json:"total_sales"`
	Commission       int64                   `json:"commission"`
	Adjustments      []AdjustmentResponse    `json:"adjustments"`
	NetPayout        int64                   `json:"net_payout"`
	NetPayoutDisplay string                  `json:"net_payout_display" example:"£8,500.00"`
	SentAt           *time.Time              `json:"sent_at,omitempty"`
	PaidAt           *time.Time              `json:"paid_at,omitempty"`
	Version          int                     `json:"version"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

func toStatementItemResponses(items settlement.StatementItems) []StatementItemResponse {
	out := make([]StatementItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, StatementItemResponse{
			AuctionItemID: item.AuctionItemID.String(),
			LotNumber:     item.LotNumber,
			Title:         item.Title,
			HammerPrice:   item.HammerPrice,
			UnsoldReason:  string(item.UnsoldReason),
		})
	}
	return out
}

// toStatementResponse converts a domain statement to its API shape
func toStatementResponse(statement *settlement.Statement) StatementResponse {
	adjustments := make([]AdjustmentResponse, 0, len(statement.Adjustments))
	for _, adj := range statement.Adjustments {
		adjustments = append(adjustments, AdjustmentResponse{
			Label:  adj.Label,
			Amount: adj.Amount,
		})
	}

	return StatementResponse{
		ID:               statement.ID.String(),
		StatementNumber:  statement.StatementNumber,
		SellerID:         statement.SellerID.String(),
		AuctionID:        statement.AuctionID.String(),
		Status:           statement.Status.String(),
		SoldItems:        toStatementItemResponses(statement.SoldItems),
		UnsoldItems:      toStatementItemResponses(statement.UnsoldItems),
		TotalSales:       statement.TotalSales,
		Commission:       statement.Commission,
		Adjustments:      adjustments,
		NetPayout:        statement.NetPayout,
		NetPayoutDisplay: valueobject.NewMoneyGBP(statement.NetPayout).Format(),
		SentAt:           statement.SentAt,
		PaidAt:           statement.PaidAt,
		Version:          statement.Version,
		CreatedAt:        statement.CreatedAt,
		UpdatedAt:        statement.UpdatedAt,
	}
}

// toStatementListResponse converts a slice of statements
func toStatementListResponse(statements []settlement.Statement) []StatementResponse {
	out := make([]StatementResponse, 0, len(statements))
	for i := range statements {
		out = append(out, toStatementResponse(&statements[i]))
	}
	return out
}
