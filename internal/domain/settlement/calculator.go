package settlement

import (
	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ItemBid pairs one of the seller's items with its winning bid, if any.
// A nil Bid means no bid was placed.
type ItemBid struct {
	Item auction.Item
	Bid  *auction.WinningBid
}

// Partition is the result of classifying a seller's items. Every item lands
// in exactly one bucket.
type Partition struct {
	Sold   StatementItems
	Unsold StatementItems
}

// PartitionItems classifies each item as sold, unsold with no bids, or
// unsold below reserve. A high bid below the seller's reserve generates no
// payout obligation and must not be counted as sold, even though a bid
// exists; its amount is kept on the statement line for the seller's
// information only.
func PartitionItems(pairs []ItemBid) Partition {
	var p Partition
	for _, pair := range pairs {
		line := StatementItem{
			AuctionItemID: pair.Item.ID,
			LotNumber:     pair.Item.LotNumber,
			Title:         pair.Item.Title,
		}
		switch {
		case pair.Bid == nil:
			line.UnsoldReason = UnsoldReasonNoBids
			p.Unsold = append(p.Unsold, line)
		case !pair.Item.MeetsReserve(pair.Bid.Amount):
			line.UnsoldReason = UnsoldReasonBelowReserve
			line.HammerPrice = pair.Bid.Amount.Pence()
			p.Unsold = append(p.Unsold, line)
		default:
			line.HammerPrice = pair.Bid.Amount.Pence()
			p.Sold = append(p.Sold, line)
		}
	}
	return p
}

// ComputeCommission applies the seller's commission rate to total sales,
// rounding half-up to whole pence.
func ComputeCommission(totalSales int64, commissionRate decimal.Decimal) int64 {
	return valueobject.NewMoneyGBP(totalSales).MultiplyByRate(commissionRate).Pence()
}
