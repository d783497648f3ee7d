package billing

import (
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// BuyerCost is the fully computed cost of one won lot to its buyer.
type BuyerCost struct {
	HammerPrice   valueobject.Money
	BuyersPremium valueobject.Money
	TaxAmount     valueobject.Money
	Total         valueobject.Money
}

// ComputeBuyerCost derives the buyer's cost for a hammer price under the
// given rates. Tax is charged on hammer plus premium, not hammer alone, and
// each rate application rounds half-up to whole pence:
//
//	premium = roundHalfUp(hammer * premiumRate / 100)
//	tax     = roundHalfUp((hammer + premium) * taxRate / 100)
//	total   = hammer + premium + tax
//
// The ordering and rounding are fixed business rules; the gateway is charged
// exactly Total, so any deviation breaks payment reconciliation.
func ComputeBuyerCost(hammer valueobject.Money, premiumRate, taxRate decimal.Decimal) BuyerCost {
	premium := hammer.MultiplyByRate(premiumRate)
	taxable := hammer.MustAdd(premium)
	tax := taxable.MultiplyByRate(taxRate)
	total := taxable.MustAdd(tax)

	return BuyerCost{
		HammerPrice:   hammer,
		BuyersPremium: premium,
		TaxAmount:     tax,
		Total:         total,
	}
}
