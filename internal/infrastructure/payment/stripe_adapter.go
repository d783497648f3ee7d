package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"go.uber.org/zap"

	"github.com/auctionhouse/backend/internal/domain/billing"
)

// StripeAdapter implements billing.PaymentGateway against the Stripe API.
// Off-session charges use payment intents with a stored payment method;
// payment links are checkout sessions tagged with the invoice id so the
// webhook handler can correlate completions back to the invoice.
type StripeAdapter struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeAdapter creates a new Stripe adapter
func NewStripeAdapter(config *StripeConfig, logger *zap.Logger) (*StripeAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Initialize Stripe client
	config.InitStripeClient()

	return &StripeAdapter{
		config: config,
		logger: logger,
	}, nil
}

// CreateCustomer creates a new customer in Stripe
func (a *StripeAdapter) CreateCustomer(ctx context.Context, req *billing.CreateCustomerRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	a.logger.Debug("Creating Stripe customer",
		zap.String("buyer_id", req.BuyerID.String()),
		zap.String("email", req.Email))

	params := &stripe.CustomerParams{
		Email: stripe.String(req.Email),
		Name:  stripe.String(req.Name),
	}
	params.Context = ctx
	params.Metadata = map[string]string{
		"buyer_id": req.BuyerID.String(),
	}

	cust, err := customer.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe customer",
			zap.String("buyer_id", req.BuyerID.String()),
			zap.Error(err))
		return "", a.mapTransportError(err)
	}

	a.logger.Info("Created Stripe customer",
		zap.String("buyer_id", req.BuyerID.String()),
		zap.String("customer_id", cust.ID))

	return cust.ID, nil
}

// ChargeOffSession attempts to charge a stored payment method without the
// buyer present. A card decline comes back as a ChargeResult with Succeeded
// false; only transport-level failures return an error.
func (a *StripeAdapter) ChargeOffSession(ctx context.Context, req *billing.ChargeRequest) (*billing.ChargeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a.logger.Debug("Charging stored payment method",
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("customer_ref", req.CustomerRef),
		zap.Int64("amount", req.AmountMinorUnits))

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.AmountMinorUnits),
		Currency:      stripe.String(a.currency(req.Currency)),
		Customer:      stripe.String(req.CustomerRef),
		PaymentMethod: stripe.String(req.MethodRef),
		OffSession:    stripe.Bool(true),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String(fmt.Sprintf("Auction invoice %s", req.InvoiceNumber)),
	}
	params.Context = ctx
	params.Metadata = map[string]string{
		"invoice_id":     req.InvoiceID.String(),
		"invoice_number": req.InvoiceNumber,
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		// Card-level failures are expected outcomes, not gateway errors
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			a.logger.Info("Off-session charge declined",
				zap.String("invoice_id", req.InvoiceID.String()),
				zap.String("decline_code", string(stripeErr.Code)))

			result := &billing.ChargeResult{
				Succeeded:     false,
				DeclineReason: string(stripeErr.Code),
			}
			if stripeErr.PaymentIntent != nil {
				result.ChargeRef = stripeErr.PaymentIntent.ID
			}
			return result, nil
		}

		a.logger.Error("Failed to create Stripe payment intent",
			zap.String("invoice_id", req.InvoiceID.String()),
			zap.Error(err))
		return nil, a.mapTransportError(err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		a.logger.Info("Off-session charge did not capture",
			zap.String("invoice_id", req.InvoiceID.String()),
			zap.String("intent_id", intent.ID),
			zap.String("status", string(intent.Status)))
		return &billing.ChargeResult{
			ChargeRef:     intent.ID,
			Succeeded:     false,
			DeclineReason: string(intent.Status),
		}, nil
	}

	a.logger.Info("Off-session charge captured",
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("intent_id", intent.ID))

	return &billing.ChargeResult{
		ChargeRef: intent.ID,
		Succeeded: true,
	}, nil
}

// CreatePaymentLink provisions a payer-facing checkout session for the
// invoice total. The invoice id rides in both the session metadata and the
// payment intent metadata so either webhook event can correlate it.
func (a *StripeAdapter) CreatePaymentLink(ctx context.Context, req *billing.PaymentLinkRequest) (*billing.PaymentLinkResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a.logger.Debug("Creating payment link",
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.Int64("amount", req.AmountMinorUnits))

	metadata := map[string]string{
		"invoice_id":     req.InvoiceID.String(),
		"invoice_number": req.InvoiceNumber,
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(a.currency(req.Currency)),
					UnitAmount: stripe.Int64(req.AmountMinorUnits),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
		SuccessURL: stripe.String(a.config.SuccessURL),
		CancelURL:  stripe.String(a.config.CancelURL),
	}
	params.Context = ctx
	params.Metadata = metadata

	sess, err := session.New(params)
	if err != nil {
		a.logger.Error("Failed to create Stripe checkout session",
			zap.String("invoice_id", req.InvoiceID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", billing.ErrLinkCreationFailed, err)
	}

	if sess.URL == "" {
		return nil, billing.ErrGatewayInvalidResponse
	}

	a.logger.Info("Created payment link",
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("session_id", sess.ID))

	return &billing.PaymentLinkResult{
		LinkRef: sess.ID,
		URL:     sess.URL,
	}, nil
}

// currency falls back to the configured default when the request omits one
func (a *StripeAdapter) currency(requested string) string {
	if requested != "" {
		return requested
	}
	return a.config.Currency
}

// mapTransportError translates Stripe API failures into gateway port errors
func (a *StripeAdapter) mapTransportError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripe.ErrorTypeAPI:
			return fmt.Errorf("%w: %v", billing.ErrGatewayUnavailable, err)
		case stripe.ErrorTypeInvalidRequest:
			return fmt.Errorf("%w: %v", billing.ErrGatewayInvalidResponse, err)
		}
	}
	return fmt.Errorf("%w: %v", billing.ErrGatewayUnavailable, err)
}
