package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconcileOutcome says how a reconciliation run collected, or arranged to
// collect, the invoice amount.
type ReconcileOutcome string

const (
	// OutcomeCharged means the stored payment method was charged
	OutcomeCharged ReconcileOutcome = "CHARGED"
	// OutcomeLinkIssued means a payer-facing payment link was provisioned
	OutcomeLinkIssued ReconcileOutcome = "LINK_ISSUED"
	// OutcomeAlreadyPaid means the invoice was paid before this run started
	OutcomeAlreadyPaid ReconcileOutcome = "ALREADY_PAID"
)

// ErrChargeUnrecorded means the gateway collected the charge but the invoice
// could not be marked paid. The money is already held at the gateway, so this
// must never trigger the pay-link fallback; the webhook confirmation or a
// retry of the run settles the invoice state.
var ErrChargeUnrecorded = errors.New("charge collected but invoice not marked paid")

// ReconcileResult is the typed result of one reconciliation run
type ReconcileResult struct {
	InvoiceID  uuid.UUID        `json:"invoice_id"`
	Outcome    ReconcileOutcome `json:"outcome"`
	GatewayRef string           `json:"gateway_ref,omitempty"`
	PayLinkURL string           `json:"pay_link_url,omitempty"`
}

// ReconcileService collects payment for one invoice: a single off-session
// charge attempt against the buyer's stored method, falling back to a
// payer-facing payment link. It makes exactly one gateway attempt per
// invocation; the caller owns any retry decision.
type ReconcileService struct {
	invoiceRepo  billing.InvoiceRepository
	buyerRepo    auction.BuyerRepository
	attemptRepo  billing.PaymentAttemptRepository
	gateway      billing.PaymentGateway
	methodPolicy billing.DefaultMethodPolicy
	logger       *zap.Logger
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(
	invoiceRepo billing.InvoiceRepository,
	buyerRepo auction.BuyerRepository,
	attemptRepo billing.PaymentAttemptRepository,
	gateway billing.PaymentGateway,
	methodPolicy billing.DefaultMethodPolicy,
	logger *zap.Logger,
) *ReconcileService {
	return &ReconcileService{
		invoiceRepo:  invoiceRepo,
		buyerRepo:    buyerRepo,
		attemptRepo:  attemptRepo,
		gateway:      gateway,
		methodPolicy: methodPolicy,
		logger:       logger,
	}
}

// Reconcile attempts to collect an invoice. An already-paid invoice
// short-circuits without contacting the gateway. A failed or impossible
// charge is an expected branch that falls back to a payment link; only a
// failure of both paths surfaces as an error.
func (s *ReconcileService) Reconcile(ctx context.Context, invoiceID uuid.UUID) (*ReconcileResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "reconcile")
	defer span.End()
	telemetry.SetAttribute(span, "invoice_id", invoiceID.String())

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	if invoice.IsPaid() {
		return &ReconcileResult{
			InvoiceID:  invoice.ID,
			Outcome:    OutcomeAlreadyPaid,
			GatewayRef: invoice.AutomaticChargeRef,
		}, nil
	}
	if invoice.Status == billing.InvoiceStatusCancelled {
		err := shared.NewDomainError("INVALID_STATE", "Cannot reconcile a cancelled invoice")
		telemetry.RecordError(span, err)
		return nil, err
	}

	buyer, err := s.buyerRepo.FindByID(ctx, invoice.BuyerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get buyer: %w", err)
	}

	result, chargeErr := s.tryAutoCharge(ctx, invoice, buyer)
	if chargeErr == nil {
		return result, nil
	}
	if errors.Is(chargeErr, ErrChargeUnrecorded) {
		telemetry.RecordError(span, chargeErr)
		return nil, chargeErr
	}

	// expected branch: log and redirect to the pay-link path
	s.logger.Info("Automatic charge unavailable, falling back to payment link",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Error(chargeErr),
	)
	telemetry.AddEvent(span, "charge_fallback", "reason", chargeErr.Error())

	return s.issuePaymentLink(ctx, invoice)
}

// tryAutoCharge runs the stored-method charge path. A returned error means
// the path is unavailable and the caller should fall back, except
// ErrChargeUnrecorded: past that point the money is collected and falling
// back would collect it twice.
func (s *ReconcileService) tryAutoCharge(ctx context.Context, invoice *billing.Invoice, buyer *auction.Buyer) (*ReconcileResult, error) {
	method, err := s.methodPolicy.Select(buyer.PaymentMethods)
	if err != nil {
		return nil, err
	}

	customerRef, err := s.ensureGatewayCustomer(ctx, buyer)
	if err != nil {
		return nil, err
	}

	chargeResult, err := s.gateway.ChargeOffSession(ctx, &billing.ChargeRequest{
		CustomerRef:      customerRef,
		MethodRef:        method.GatewayRef,
		AmountMinorUnits: invoice.TotalAmount,
		Currency:         "gbp",
		InvoiceID:        invoice.ID,
		InvoiceNumber:    invoice.InvoiceNumber,
	})
	if err != nil {
		s.recordAttempt(ctx, invoice.ID, billing.AttemptMethodAutoCharge, billing.AttemptOutcomeFailed, "", err.Error())
		return nil, err
	}
	if !chargeResult.Succeeded {
		s.recordAttempt(ctx, invoice.ID, billing.AttemptMethodAutoCharge, billing.AttemptOutcomeFailed,
			chargeResult.ChargeRef, chargeResult.DeclineReason)
		return nil, fmt.Errorf("%w: %s", billing.ErrChargeDeclined, chargeResult.DeclineReason)
	}

	fromStatus := invoice.Status
	if err := invoice.MarkPaid(chargeResult.ChargeRef); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChargeUnrecorded, err)
	}
	if err := s.invoiceRepo.SaveTransition(ctx, invoice, fromStatus); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			// another process charged first; the money is collected either way
			s.logger.Warn("Invoice paid concurrently during charge",
				zap.String("invoice_id", invoice.ID.String()))
			return &ReconcileResult{
				InvoiceID: invoice.ID,
				Outcome:   OutcomeAlreadyPaid,
			}, nil
		}
		s.logger.Error("Charge collected but invoice transition failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("charge_ref", chargeResult.ChargeRef),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrChargeUnrecorded, err)
	}

	s.recordAttempt(ctx, invoice.ID, billing.AttemptMethodAutoCharge, billing.AttemptOutcomeSuccess,
		chargeResult.ChargeRef, "")

	s.logger.Info("Invoice charged off-session",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("charge_ref", chargeResult.ChargeRef),
		zap.Int64("amount", invoice.TotalAmount),
	)

	return &ReconcileResult{
		InvoiceID:  invoice.ID,
		Outcome:    OutcomeCharged,
		GatewayRef: chargeResult.ChargeRef,
	}, nil
}

// issuePaymentLink provisions a payer-facing link. A link creation failure
// propagates; there is no further fallback.
func (s *ReconcileService) issuePaymentLink(ctx context.Context, invoice *billing.Invoice) (*ReconcileResult, error) {
	// a previously issued link stays valid whether or not the invoice went
	// out yet; don't provision a second one
	if invoice.PaymentLinkRef != "" {
		return &ReconcileResult{
			InvoiceID:  invoice.ID,
			Outcome:    OutcomeLinkIssued,
			PayLinkURL: invoice.PaymentLinkRef,
		}, nil
	}

	linkResult, err := s.gateway.CreatePaymentLink(ctx, &billing.PaymentLinkRequest{
		AmountMinorUnits: invoice.TotalAmount,
		Currency:         "gbp",
		Description:      fmt.Sprintf("Auction invoice %s", invoice.InvoiceNumber),
		InvoiceID:        invoice.ID,
		InvoiceNumber:    invoice.InvoiceNumber,
	})
	if err != nil {
		s.recordAttempt(ctx, invoice.ID, billing.AttemptMethodPayLink, billing.AttemptOutcomeFailed, "", err.Error())
		return nil, fmt.Errorf("failed to create payment link: %w", err)
	}

	if err := invoice.AttachPaymentLink(linkResult.URL); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.recordAttempt(ctx, invoice.ID, billing.AttemptMethodPayLink, billing.AttemptOutcomeLinkIssued,
		linkResult.LinkRef, "")

	s.logger.Info("Payment link issued",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("link_ref", linkResult.LinkRef),
	)

	return &ReconcileResult{
		InvoiceID:  invoice.ID,
		Outcome:    OutcomeLinkIssued,
		GatewayRef: linkResult.LinkRef,
		PayLinkURL: linkResult.URL,
	}, nil
}

// ensureGatewayCustomer returns the buyer's gateway customer ref, creating
// and caching one on first use so retries never duplicate gateway customers.
func (s *ReconcileService) ensureGatewayCustomer(ctx context.Context, buyer *auction.Buyer) (string, error) {
	if buyer.HasGatewayCustomer() {
		return buyer.GatewayCustomerRef, nil
	}

	ref, err := s.gateway.CreateCustomer(ctx, &billing.CreateCustomerRequest{
		BuyerID: buyer.ID,
		Email:   buyer.Email,
		Name:    buyer.Name,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create gateway customer: %w", err)
	}

	if err := buyer.CacheGatewayCustomerRef(ref); err != nil {
		return "", err
	}
	if err := s.buyerRepo.Save(ctx, buyer); err != nil {
		return "", fmt.Errorf("failed to cache gateway customer ref: %w", err)
	}

	return ref, nil
}

// recordAttempt appends an audit record; audit failures are logged, never
// allowed to fail the payment flow itself.
func (s *ReconcileService) recordAttempt(ctx context.Context, invoiceID uuid.UUID, method billing.AttemptMethod, outcome billing.AttemptOutcome, gatewayRef, detail string) {
	attempt := billing.NewPaymentAttempt(invoiceID, method, outcome, gatewayRef, detail)
	if err := s.attemptRepo.Save(ctx, attempt); err != nil {
		s.logger.Error("Failed to record payment attempt",
			zap.String("invoice_id", invoiceID.String()),
			zap.Error(err),
		)
	}
}
