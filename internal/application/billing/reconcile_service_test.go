package billing

import (
	"context"
	"testing"
	"time"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reconcileFixture struct {
	invoiceRepo *MockInvoiceRepository
	buyerRepo   *MockBuyerRepository
	attemptRepo *MockPaymentAttemptRepository
	gateway     *MockPaymentGateway
	service     *ReconcileService
}

func newReconcileFixture() *reconcileFixture {
	f := &reconcileFixture{
		invoiceRepo: new(MockInvoiceRepository),
		buyerRepo:   new(MockBuyerRepository),
		attemptRepo: new(MockPaymentAttemptRepository),
		gateway:     new(MockPaymentGateway),
	}
	f.service = NewReconcileService(
		f.invoiceRepo, f.buyerRepo, f.attemptRepo, f.gateway,
		billing.MostRecentVerifiedPolicy{}, zap.NewNop(),
	)
	return f
}

func buyerWithMethod(verified bool) *auction.Buyer {
	return &auction.Buyer{
		BaseEntity:         shared.NewBaseEntity(),
		Name:               "Test Buyer",
		Email:              "buyer@example.com",
		GatewayCustomerRef: "cus_123",
		PaymentMethods: []auction.StoredPaymentMethod{{
			ID:         uuid.New(),
			GatewayRef: "pm_123",
			Brand:      "visa",
			Last4:      "4242",
			Verified:   verified,
			AddedAt:    time.Now(),
		}},
	}
}

func TestReconcileService_Reconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("charges stored method and marks paid", func(t *testing.T) {
		f := newReconcileFixture()
		invoice := unpaidInvoice(t)
		buyer := buyerWithMethod(true)
		invoice.BuyerID = buyer.ID

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		f.buyerRepo.On("FindByID", mock.Anything, buyer.ID).Return(buyer, nil)
		f.gateway.On("ChargeOffSession", mock.Anything, mock.MatchedBy(func(req *billing.ChargeRequest) bool {
			return req.AmountMinorUnits == invoice.TotalAmount &&
				req.CustomerRef == "cus_123" &&
				req.MethodRef == "pm_123" &&
				req.InvoiceID == invoice.ID
		})).Return(&billing.ChargeResult{ChargeRef: "pi_123", Succeeded: true}, nil)
		f.invoiceRepo.On("SaveTransition", mock.Anything, invoice, billing.InvoiceStatusUnpaid).Return(nil)
		f.attemptRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.PaymentAttempt")).Return(nil)

		result, err := f.service.Reconcile(ctx, invoice.ID)
		require.NoError(t, err)

		assert.Equal(t, OutcomeCharged, result.Outcome)
		assert.Equal(t, "pi_123", result.GatewayRef)
		assert.True(t, invoice.IsPaid())
		f.gateway.AssertNotCalled(t, "CreatePaymentLink", mock.Anything, mock.Anything)
	})

	t.Run("already paid invoice never contacts the gateway", func(t *testing.T) {
		f := newReconcileFixture()
		invoice := unpaidInvoice(t)
		require.NoError(t, invoice.MarkPaid("pi_original"))

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

		result, err := f.service.Reconcile(ctx, invoice.ID)
		require.NoError(t, err)

		assert.Equal(t, OutcomeAlreadyPaid, result.Outcome)
		assert.Equal(t, "pi_original", result.GatewayRef)
		f.gateway.AssertNotCalled(t, "ChargeOffSession", mock.Anything, mock.Anything)
		f.gateway.AssertNotCalled(t, "CreatePaymentLink", mock.Anything, mock.Anything)
		f.gateway.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("declined charge falls back to payment link", func(t *testing.T) {
		f := newReconcileFixture()
		invoice := unpaidInvoice(t)
		buyer := buyerWithMethod(true)
		invoice.BuyerID = buyer.ID

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		f.buyerRepo.On("FindByID", mock.Anything, buyer.ID).Return(buyer, nil)
		f.gateway.On("ChargeOffSession", mock.Anything, mock.Anything).
			Return(&billing.ChargeResult{Succeeded: false, DeclineReason: "insufficient_funds"}, nil)
		f.gateway.On("CreatePaymentLink", mock.Anything, mock.MatchedBy(func(req *billing.PaymentLinkRequest) bool {
			return req.AmountMinorUnits == invoice.TotalAmount && req.InvoiceID == invoice.ID
		})).Return(&billing.PaymentLinkResult{LinkRef: "plink_1", URL: "https://pay.example/plink_1"}, nil)
		f.invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)
		f.attemptRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.PaymentAttempt")).Return(nil)

		result, err := f.service.Reconcile(ctx, invoice.ID)
		require.NoError(t, err)

		assert.Equal(t, OutcomeLinkIssued, result.Outcome)
		assert.Equal(t, "https://pay.example/plink_1", result.PayLinkURL)
		assert.True(t, invoice.IsUnpaid())
		assert.Equal(t, "https://pay.example/plink_1", invoice.PaymentLinkRef)
	})

	t.Run("buyer with no usable method goes straight to link", func(t *testing.T) {
		f := newReconcileFixture()
		invoice := unpaidInvoice(t)
		buyer := buyerWithMethod(false) // unverified only
		invoice.BuyerID = buyer.ID

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		f.buyerRepo.On("FindByID", mock.Anything, buyer.ID).Return(buyer, nil)
		f.gateway.On("CreatePaymentLink", mock.Anything, mock.Anything).
			Return(&billing.PaymentLinkResult{LinkRef: "plink_1", URL: "https://pay.example/plink_1"}, nil)
		f.invoiceRepo.On("Save", mock.Anything, invoice).Return(nil)
		f.attemptRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.PaymentAttempt")).Return(nil)

		result, err := f.service.Reconcile(ctx, invoice.ID)
		require.NoError(t, err)

		assert.Equal(t, OutcomeLinkIssued, result.Outcome)
		f.gateway.AssertNotCalled(t, "ChargeOffSession", mock.Anything, mock.Anything)
	})

	t.Run("creates and caches gateway customer on first charge", func(t *testing.T) {
		f := newReconcileFixture()
		invoice := unpaidInvoice(t)
		buyer := buyerWithMethod(true)
		buyer.GatewayCustomerRef = ""
		invoice.BuyerID = buyer.ID

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		f.buyerRepo.On("FindByID", mock.Anything, buyer.ID).Return(buyer, nil)
		f.gateway.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(req *billing.CreateCustomerRequest) bool {
			return req.BuyerID == buyer.ID && req.Email == buyer.Email
		})).Return("cus_new", nil)
		f.buyerRepo.On("Save", mock.Anything, buyer).Return(nil)
		f.gateway.On("ChargeOffSession", mock.Anything, mock.MatchedBy(func(req *billing.ChargeRequest) bool {
			return req.CustomerRef == "cus_new"
		})).Return(&billing.ChargeResult{ChargeRef: "pi_123", Succeeded: true}, nil)
		f.invoiceRepo.On("SaveTransition", mock.Anything, invoice, billing.InvoiceStatusUnpaid).Return(nil)
		f.attemptRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.PaymentAttempt")).Return(nil)

		_, err := f.service.Reconcile(ctx, invoice.ID)
		require.NoError(t, err)

		assert.Equal(t, "cus_new", buyer.GatewayCustomerRef)
		f.buyerRepo.AssertExpectations(t)
	})

	t.Run("dual failure surfaces as error", func(t *testing.T) {
		f := newReconcileFixture()
		invoice := unpaidInvoice(t)
		buyer := buyerWithMethod(true)
		invoice.BuyerID = buyer.ID

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		f.buyerRepo.On("FindByID", mock.Anything, buyer.ID).Return(buyer, nil)
		f.gateway.On("ChargeOffSession", mock.Anything, mock.Anything).
			Return(nil, billing.ErrGatewayUnavailable)
		f.gateway.On("CreatePaymentLink", mock.Anything, mock.Anything).
			Return(nil, billing.ErrLinkCreationFailed)
		f.attemptRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.PaymentAttempt")).Return(nil)

		_, err := f.service.Reconcile(ctx, invoice.ID)
		assert.ErrorIs(t, err, billing.ErrLinkCreationFailed)
	})

	t.Run("already issued link is reused for sent invoices", func(t *testing.T) {
		f := newReconcileFixture()
		invoice := unpaidInvoice(t)
		buyer := buyerWithMethod(false)
		invoice.BuyerID = buyer.ID
		require.NoError(t, invoice.MarkSent("https://pay.example/original"))

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		f.buyerRepo.On("FindByID", mock.Anything, buyer.ID).Return(buyer, nil)

		result, err := f.service.Reconcile(ctx, invoice.ID)
		require.NoError(t, err)

		assert.Equal(t, OutcomeLinkIssued, result.Outcome)
		assert.Equal(t, "https://pay.example/original", result.PayLinkURL)
		f.gateway.AssertNotCalled(t, "CreatePaymentLink", mock.Anything, mock.Anything)
	})

	t.Run("persistence failure after collected charge never falls back to a link", func(t *testing.T) {
		f := newReconcileFixture()
		invoice := unpaidInvoice(t)
		buyer := buyerWithMethod(true)
		invoice.BuyerID = buyer.ID

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		f.buyerRepo.On("FindByID", mock.Anything, buyer.ID).Return(buyer, nil)
		f.gateway.On("ChargeOffSession", mock.Anything, mock.Anything).
			Return(&billing.ChargeResult{ChargeRef: "pi_123", Succeeded: true}, nil)
		f.invoiceRepo.On("SaveTransition", mock.Anything, invoice, billing.InvoiceStatusUnpaid).
			Return(assert.AnError)

		_, err := f.service.Reconcile(ctx, invoice.ID)
		assert.ErrorIs(t, err, ErrChargeUnrecorded)
		f.gateway.AssertNotCalled(t, "CreatePaymentLink", mock.Anything, mock.Anything)
	})

	t.Run("unsent invoice with an attached link never gets a second one", func(t *testing.T) {
		f := newReconcileFixture()
		invoice := unpaidInvoice(t)
		buyer := buyerWithMethod(false)
		invoice.BuyerID = buyer.ID
		require.NoError(t, invoice.AttachPaymentLink("https://pay.example/original"))

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		f.buyerRepo.On("FindByID", mock.Anything, buyer.ID).Return(buyer, nil)

		result, err := f.service.Reconcile(ctx, invoice.ID)
		require.NoError(t, err)

		assert.Equal(t, OutcomeLinkIssued, result.Outcome)
		assert.Equal(t, "https://pay.example/original", result.PayLinkURL)
		f.gateway.AssertNotCalled(t, "CreatePaymentLink", mock.Anything, mock.Anything)
	})

	t.Run("lost charge race resolves as already paid", func(t *testing.T) {
		f := newReconcileFixture()
		invoice := unpaidInvoice(t)
		buyer := buyerWithMethod(true)
		invoice.BuyerID = buyer.ID

		f.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
		f.buyerRepo.On("FindByID", mock.Anything, buyer.ID).Return(buyer, nil)
		f.gateway.On("ChargeOffSession", mock.Anything, mock.Anything).
			Return(&billing.ChargeResult{ChargeRef: "pi_123", Succeeded: true}, nil)
		f.invoiceRepo.On("SaveTransition", mock.Anything, invoice, billing.InvoiceStatusUnpaid).
			Return(shared.ErrConcurrencyConflict)

		result, err := f.service.Reconcile(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeAlreadyPaid, result.Outcome)
	})
}
