package billing

import (
	"context"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByBuyerAndAuction(ctx context.Context, buyerID, auctionID uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, buyerID, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindUnsentUnpaidByAuction(ctx context.Context, auctionID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, auctionID)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsForItem(ctx context.Context, auctionItemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, auctionItemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveTransition(ctx context.Context, invoice *billing.Invoice, fromStatus billing.InvoiceStatus) error {
	args := m.Called(ctx, invoice, fromStatus)
	return args.Error(0)
}

// MockItemRepository is a mock implementation of auction.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*auction.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auction.Item), args.Error(1)
}

func (m *MockItemRepository) FindByAuction(ctx context.Context, auctionID uuid.UUID) ([]auction.Item, error) {
	args := m.Called(ctx, auctionID)
	return args.Get(0).([]auction.Item), args.Error(1)
}

func (m *MockItemRepository) FindBySellerAndAuction(ctx context.Context, sellerID, auctionID uuid.UUID) ([]auction.Item, error) {
	args := m.Called(ctx, sellerID, auctionID)
	return args.Get(0).([]auction.Item), args.Error(1)
}

// MockWinningBidRepository is a mock implementation of auction.WinningBidRepository
type MockWinningBidRepository struct {
	mock.Mock
}

func (m *MockWinningBidRepository) FindForItem(ctx context.Context, itemID uuid.UUID) (*auction.WinningBid, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auction.WinningBid), args.Error(1)
}

func (m *MockWinningBidRepository) FindForItemAndBuyer(ctx context.Context, itemID, buyerID uuid.UUID) (*auction.WinningBid, error) {
	args := m.Called(ctx, itemID, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auction.WinningBid), args.Error(1)
}

func (m *MockWinningBidRepository) FindForBuyerInAuction(ctx context.Context, buyerID, auctionID uuid.UUID) ([]auction.WinningBid, error) {
	args := m.Called(ctx, buyerID, auctionID)
	return args.Get(0).([]auction.WinningBid), args.Error(1)
}

// MockSellerTermsRepository is a mock implementation of auction.SellerTermsRepository
type MockSellerTermsRepository struct {
	mock.Mock
}

func (m *MockSellerTermsRepository) FindBySeller(ctx context.Context, sellerID uuid.UUID) (*auction.SellerTerms, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auction.SellerTerms), args.Error(1)
}

// MockBuyerRepository is a mock implementation of auction.BuyerRepository
type MockBuyerRepository struct {
	mock.Mock
}

func (m *MockBuyerRepository) FindByID(ctx context.Context, id uuid.UUID) (*auction.Buyer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auction.Buyer), args.Error(1)
}

func (m *MockBuyerRepository) Save(ctx context.Context, buyer *auction.Buyer) error {
	args := m.Called(ctx, buyer)
	return args.Error(0)
}

// MockPaymentAttemptRepository is a mock implementation of billing.PaymentAttemptRepository
type MockPaymentAttemptRepository struct {
	mock.Mock
}

func (m *MockPaymentAttemptRepository) Save(ctx context.Context, attempt *billing.PaymentAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockPaymentAttemptRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.PaymentAttempt, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]billing.PaymentAttempt), args.Error(1)
}

// MockPaymentGateway is a mock implementation of billing.PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCustomer(ctx context.Context, req *billing.CreateCustomerRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentGateway) ChargeOffSession(ctx context.Context, req *billing.ChargeRequest) (*billing.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ChargeResult), args.Error(1)
}

func (m *MockPaymentGateway) CreatePaymentLink(ctx context.Context, req *billing.PaymentLinkRequest) (*billing.PaymentLinkResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentLinkResult), args.Error(1)
}

// MockReconciler is a mock implementation of InvoiceReconciler
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context, invoiceID uuid.UUID) (*ReconcileResult, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ReconcileResult), args.Error(1)
}

// MockDispatchNotifier is a mock implementation of DispatchNotifier
type MockDispatchNotifier struct {
	mock.Mock
}

func (m *MockDispatchNotifier) InvoiceDispatched(ctx context.Context, invoice *billing.Invoice, result *ReconcileResult) error {
	args := m.Called(ctx, invoice, result)
	return args.Error(0)
}
