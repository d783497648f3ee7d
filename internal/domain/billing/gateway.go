package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Payment Gateway Errors
// ---------------------------------------------------------------------------

var (
	// Customer errors
	ErrGatewayInvalidCustomer = errors.New("gateway: invalid customer details")

	// Charge errors. ErrChargeDeclined and ErrChargeNoMethod are expected
	// outcomes handled by the pay-link fallback, never surfaced as hard
	// failures to callers.
	ErrChargeInvalidAmount = errors.New("gateway: invalid charge amount")
	ErrChargeDeclined      = errors.New("gateway: charge declined")
	ErrChargeNoMethod      = errors.New("gateway: no payment method available")

	// Link errors. Link creation has no further fallback, so these propagate.
	ErrLinkInvalidAmount   = errors.New("gateway: invalid payment link amount")
	ErrLinkCreationFailed  = errors.New("gateway: payment link creation failed")

	// Transport errors
	ErrGatewayUnavailable     = errors.New("gateway: temporarily unavailable")
	ErrGatewayInvalidResponse = errors.New("gateway: invalid response")
	ErrGatewayInvalidWebhook  = errors.New("gateway: invalid webhook signature")
)

// ---------------------------------------------------------------------------
// Gateway Request/Response DTOs
// ---------------------------------------------------------------------------

// CreateCustomerRequest asks the gateway to create a customer record for a buyer
type CreateCustomerRequest struct {
	// BuyerID is our internal buyer identifier, carried in gateway metadata
	BuyerID uuid.UUID
	// Email is the buyer's email address
	Email string
	// Name is the buyer's display name
	Name string
}

// Validate validates the create customer request
func (r *CreateCustomerRequest) Validate() error {
	if r.BuyerID == uuid.Nil || r.Email == "" {
		return ErrGatewayInvalidCustomer
	}
	return nil
}

// ChargeRequest asks the gateway for an off-session charge against a stored method
type ChargeRequest struct {
	// CustomerRef is the gateway-side customer identifier
	CustomerRef string
	// MethodRef is the gateway-side stored payment method identifier
	MethodRef string
	// AmountMinorUnits is the charge amount in pence
	AmountMinorUnits int64
	// Currency is the ISO 4217 currency code
	Currency string
	// InvoiceID is carried in gateway metadata for webhook correlation
	InvoiceID uuid.UUID
	// InvoiceNumber is the human-displayable document number
	InvoiceNumber string
}

// Validate validates the charge request
func (r *ChargeRequest) Validate() error {
	if r.AmountMinorUnits <= 0 {
		return ErrChargeInvalidAmount
	}
	if r.CustomerRef == "" || r.MethodRef == "" {
		return ErrChargeNoMethod
	}
	return nil
}

// ChargeResult is the gateway's answer to an off-session charge attempt
type ChargeResult struct {
	// ChargeRef is the gateway charge identifier
	ChargeRef string
	// Succeeded is true only if the gateway reports the charge captured
	Succeeded bool
	// DeclineReason carries the gateway decline code when Succeeded is false
	DeclineReason string
}

// PaymentLinkRequest asks the gateway for a payer-facing payment link
type PaymentLinkRequest struct {
	// AmountMinorUnits is the link amount in pence
	AmountMinorUnits int64
	// Currency is the ISO 4217 currency code
	Currency string
	// Description is shown to the payer
	Description string
	// InvoiceID is carried in link metadata for webhook correlation
	InvoiceID uuid.UUID
	// InvoiceNumber is the human-displayable document number
	InvoiceNumber string
}

// Validate validates the payment link request
func (r *PaymentLinkRequest) Validate() error {
	if r.AmountMinorUnits <= 0 {
		return ErrLinkInvalidAmount
	}
	if r.InvoiceID == uuid.Nil {
		return ErrLinkCreationFailed
	}
	return nil
}

// PaymentLinkResult is the provisioned payer-facing link
type PaymentLinkResult struct {
	// LinkRef is the gateway link identifier
	LinkRef string
	// URL is the payer-facing URL
	URL string
}

// ---------------------------------------------------------------------------
// PaymentGateway Port Interface
// ---------------------------------------------------------------------------

// PaymentGateway is the port to the external payment gateway. It is defined
// in the domain layer and implemented in infrastructure (Stripe). Every call
// is blocking I/O that can fail or time out; callers make a single attempt
// per invocation and own any retry decision.
type PaymentGateway interface {
	// CreateCustomer creates a gateway-side customer record for a buyer
	CreateCustomer(ctx context.Context, req *CreateCustomerRequest) (string, error)

	// ChargeOffSession attempts to charge a stored payment method without the
	// buyer present. A declined charge returns a ChargeResult with Succeeded
	// false rather than an error; errors mean the gateway could not be asked.
	ChargeOffSession(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)

	// CreatePaymentLink provisions a payer-facing payment link tagged with
	// the invoice in its metadata for later webhook correlation
	CreatePaymentLink(ctx context.Context, req *PaymentLinkRequest) (*PaymentLinkResult, error)
}
