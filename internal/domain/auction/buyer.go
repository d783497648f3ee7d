package auction

import (
	"context"
	"time"

	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StoredPaymentMethod is a tokenised payment method held at the gateway.
// Only the gateway reference is kept; card data never touches this system.
type StoredPaymentMethod struct {
	ID         uuid.UUID `json:"id"`
	GatewayRef string    `json:"gateway_ref"`
	Brand      string    `json:"brand"`
	Last4      string    `json:"last4"`
	Verified   bool      `json:"verified"`
	AddedAt    time.Time `json:"added_at"`
}

// Buyer is a bidder who can be invoiced. The billing core reads buyers and
// writes back only the cached gateway customer reference.
type Buyer struct {
	shared.BaseEntity
	Name               string
	Email              string
	GatewayCustomerRef string
	PaymentMethods     []StoredPaymentMethod
}

// HasGatewayCustomer returns true if a gateway-side customer record exists
func (b *Buyer) HasGatewayCustomer() bool {
	return b.GatewayCustomerRef != ""
}

// CacheGatewayCustomerRef records the gateway customer identifier so retries
// do not create duplicate gateway customers.
func (b *Buyer) CacheGatewayCustomerRef(ref string) error {
	if ref == "" {
		return shared.NewDomainError("INVALID_CUSTOMER_REF", "Gateway customer reference cannot be empty")
	}
	b.GatewayCustomerRef = ref
	b.UpdatedAt = time.Now()
	return nil
}

// BuyerRepository provides access to buyer records
type BuyerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Buyer, error)
	// Save persists buyer updates (only the gateway customer ref is written
	// by this core).
	Save(ctx context.Context, buyer *Buyer) error
}
