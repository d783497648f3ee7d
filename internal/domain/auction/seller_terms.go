package auction

import (
	"context"

	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SellerTerms holds the commercial terms agreed with a seller. Rates are
// percentages (20 means 20%) and are injected into billing and settlement
// rather than hardcoded, so tiered or per-seller deals need no code change.
type SellerTerms struct {
	SellerID          uuid.UUID
	CommissionRate    decimal.Decimal
	BuyersPremiumRate decimal.Decimal
	TaxRate           decimal.Decimal
}

// Validate checks the terms are usable for invoicing and settlement
func (t *SellerTerms) Validate() error {
	if t.SellerID == uuid.Nil {
		return shared.NewValidationError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if t.CommissionRate.IsNegative() {
		return shared.NewValidationError("INVALID_COMMISSION_RATE", "Commission rate cannot be negative")
	}
	if t.BuyersPremiumRate.IsNegative() {
		return shared.NewValidationError("INVALID_PREMIUM_RATE", "Buyer's premium rate cannot be negative")
	}
	if t.TaxRate.IsNegative() {
		return shared.NewValidationError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	return nil
}

// SellerTermsRepository provides read access to seller terms
type SellerTermsRepository interface {
	FindBySeller(ctx context.Context, sellerID uuid.UUID) (*SellerTerms, error)
}
