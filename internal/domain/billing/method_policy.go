package billing

import (
	"errors"

	"github.com/auctionhouse/backend/internal/domain/auction"
)

// ErrNoUsableMethod is returned by a DefaultMethodPolicy when the buyer has
// no payment method eligible for an off-session charge.
var ErrNoUsableMethod = errors.New("billing: buyer has no usable payment method")

// DefaultMethodPolicy selects which stored payment method to use for an
// automatic charge. Selection is an explicit, testable policy rather than a
// positional pick of the first saved method.
type DefaultMethodPolicy interface {
	// Select returns the method to charge, or ErrNoUsableMethod
	Select(methods []auction.StoredPaymentMethod) (*auction.StoredPaymentMethod, error)
}

// MostRecentVerifiedPolicy charges the most recently added verified method.
// Buyers updating an expiring card expect the new card to be used.
type MostRecentVerifiedPolicy struct{}

// Select implements DefaultMethodPolicy
func (MostRecentVerifiedPolicy) Select(methods []auction.StoredPaymentMethod) (*auction.StoredPaymentMethod, error) {
	var chosen *auction.StoredPaymentMethod
	for i := range methods {
		m := &methods[i]
		if !m.Verified {
			continue
		}
		if chosen == nil || m.AddedAt.After(chosen.AddedAt) {
			chosen = m
		}
	}
	if chosen == nil {
		return nil, ErrNoUsableMethod
	}
	return chosen, nil
}
