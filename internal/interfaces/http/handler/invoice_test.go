package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	billingapp "github.com/auctionhouse/backend/internal/application/billing"
	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/domain/shared/valueobject"
	"github.com/auctionhouse/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockInvoiceRepo struct {
	mock.Mock
}

func (m *MockInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) FindByBuyerAndAuction(ctx context.Context, buyerID, auctionID uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, buyerID, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) FindUnsentUnpaidByAuction(ctx context.Context, auctionID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) ExistsForItem(ctx context.Context, auctionItemID uuid.UUID) (bool, error) {
	args := m.Called(ctx, auctionItemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepo) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepo) SaveTransition(ctx context.Context, invoice *billing.Invoice, fromStatus billing.InvoiceStatus) error {
	args := m.Called(ctx, invoice, fromStatus)
	return args.Error(0)
}

type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) FindByID(ctx context.Context, id uuid.UUID) (*auction.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auction.Item), args.Error(1)
}

func (m *MockItemRepo) FindByAuction(ctx context.Context, auctionID uuid.UUID) ([]auction.Item, error) {
	args := m.Called(ctx, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auction.Item), args.Error(1)
}

func (m *MockItemRepo) FindBySellerAndAuction(ctx context.Context, sellerID, auctionID uuid.UUID) ([]auction.Item, error) {
	args := m.Called(ctx, sellerID, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auction.Item), args.Error(1)
}

type MockBidRepo struct {
	mock.Mock
}

func (m *MockBidRepo) FindForItem(ctx context.Context, itemID uuid.UUID) (*auction.WinningBid, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auction.WinningBid), args.Error(1)
}

func (m *MockBidRepo) FindForItemAndBuyer(ctx context.Context, itemID, buyerID uuid.UUID) (*auction.WinningBid, error) {
	args := m.Called(ctx, itemID, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auction.WinningBid), args.Error(1)
}

func (m *MockBidRepo) FindForBuyerInAuction(ctx context.Context, buyerID, auctionID uuid.UUID) ([]auction.WinningBid, error) {
	args := m.Called(ctx, buyerID, auctionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auction.WinningBid), args.Error(1)
}

type MockTermsRepo struct {
	mock.Mock
}

func (m *MockTermsRepo) FindBySeller(ctx context.Context, sellerID uuid.UUID) (*auction.SellerTerms, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auction.SellerTerms), args.Error(1)
}

type MockInvoiceReconciler struct {
	mock.Mock
}

func (m *MockInvoiceReconciler) Reconcile(ctx context.Context, invoiceID uuid.UUID) (*billingapp.ReconcileResult, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billingapp.ReconcileResult), args.Error(1)
}

type invoiceHandlerFixture struct {
	invoiceRepo *MockInvoiceRepo
	itemRepo    *MockItemRepo
	bidRepo     *MockBidRepo
	termsRepo   *MockTermsRepo
	reconciler  *MockInvoiceReconciler
	router      *gin.Engine
}

func setupInvoiceHandler(t *testing.T) *invoiceHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &invoiceHandlerFixture{
		invoiceRepo: new(MockInvoiceRepo),
		itemRepo:    new(MockItemRepo),
		bidRepo:     new(MockBidRepo),
		termsRepo:   new(MockTermsRepo),
		reconciler:  new(MockInvoiceReconciler),
	}

	service := billingapp.NewInvoiceService(f.invoiceRepo, f.itemRepo, f.bidRepo, f.termsRepo, zap.NewNop())
	h := NewInvoiceHandler(service, f.reconciler)

	f.router = gin.New()
	group := f.router.Group("/api/v1/billing")
	group.POST("/invoices", h.Create)
	group.GET("/invoices", h.List)
	group.GET("/invoices/:id", h.GetByID)
	group.POST("/invoices/:id/cancel", h.Cancel)
	group.POST("/invoices/:id/mark-paid", h.MarkPaid)
	group.POST("/invoices/:id/mark-sent", h.MarkSent)
	group.POST("/invoices/:id/reconcile", h.Reconcile)
	return f
}

type invoiceEnvelope struct {
	Success bool            `json:"success"`
	Data    InvoiceResponse `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

func decodeInvoiceEnvelope(t *testing.T, w *httptest.ResponseRecorder) invoiceEnvelope {
	t.Helper()
	var env invoiceEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func testItemFixture(itemID, auctionID, sellerID uuid.UUID, lot int) *auction.Item {
	return &auction.Item{
		BaseEntity: shared.BaseEntity{ID: itemID, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		AuctionID:  auctionID,
		SellerID:   sellerID,
		LotNumber:  lot,
		Title:      "Victorian writing desk",
	}
}

func testTermsFixture(sellerID uuid.UUID) *auction.SellerTerms {
	return &auction.SellerTerms{
		SellerID:          sellerID,
		CommissionRate:    decimal.NewFromInt(15),
		BuyersPremiumRate: decimal.NewFromInt(20),
		TaxRate:           decimal.NewFromInt(10),
	}
}

func testInvoiceFixture(t *testing.T, buyerID, auctionID uuid.UUID) *billing.Invoice {
	t.Helper()
	cost := billing.ComputeBuyerCost(valueobject.NewMoneyGBP(10000), decimal.NewFromInt(20), decimal.NewFromInt(10))
	line := billing.NewLineItem(uuid.New(), 7, "Victorian writing desk", cost)
	inv, err := billing.NewInvoice("INV-2026-00042", buyerID, auctionID, []billing.LineItem{line})
	require.NoError(t, err)
	return inv
}

func TestInvoiceHandler_Create_Success(t *testing.T) {
	f := setupInvoiceHandler(t)

	buyerID := uuid.New()
	auctionID := uuid.New()
	sellerID := uuid.New()
	itemID := uuid.New()

	f.invoiceRepo.On("ExistsForItem", mock.Anything, itemID).Return(false, nil)
	f.itemRepo.On("FindByID", mock.Anything, itemID).Return(testItemFixture(itemID, auctionID, sellerID, 7), nil)
	f.bidRepo.On("FindForItemAndBuyer", mock.Anything, itemID, buyerID).Return(&auction.WinningBid{
		ID:            uuid.New(),
		AuctionItemID: itemID,
		BuyerID:       buyerID,
		Amount:        valueobject.NewMoneyGBP(10000),
		PlacedAt:      time.Now(),
	}, nil)
	f.termsRepo.On("FindBySeller", mock.Anything, sellerID).Return(testTermsFixture(sellerID), nil)
	f.invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	w := postJSON(f.router, "/api/v1/billing/invoices", CreateInvoiceRequest{
		BuyerID:   buyerID.String(),
		AuctionID: auctionID.String(),
		ItemIDs:   []string{itemID.String()},
		Notes:     "Collect in person",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	env := decodeInvoiceEnvelope(t, w)
	assert.True(t, env.Success)
	assert.Equal(t, "UNPAID", env.Data.Status)
	assert.Equal(t, buyerID.String(), env.Data.BuyerID)
	require.Len(t, env.Data.LineItems, 1)
	// 10000 hammer + 20% premium, then 10% tax on the taxable base
	assert.Equal(t, int64(10000), env.Data.Subtotal)
	assert.Equal(t, int64(2000), env.Data.BuyersPremium)
	assert.Equal(t, int64(1200), env.Data.TaxAmount)
	assert.Equal(t, int64(13200), env.Data.TotalAmount)
	assert.Equal(t, "£132.00", env.Data.TotalDisplay)
	assert.NotEmpty(t, env.Data.InvoiceNumber)
	f.invoiceRepo.AssertExpectations(t)
}

func TestInvoiceHandler_Create_EmptyItems(t *testing.T) {
	f := setupInvoiceHandler(t)

	w := postJSON(f.router, "/api/v1/billing/invoices", CreateInvoiceRequest{
		BuyerID:   uuid.New().String(),
		AuctionID: uuid.New().String(),
		ItemIDs:   []string{},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeInvoiceEnvelope(t, w)
	assert.False(t, env.Success)
	f.invoiceRepo.AssertNotCalled(t, "Save")
}

func TestInvoiceHandler_Create_ItemAlreadyInvoiced(t *testing.T) {
	f := setupInvoiceHandler(t)

	buyerID := uuid.New()
	auctionID := uuid.New()
	itemID := uuid.New()

	f.invoiceRepo.On("ExistsForItem", mock.Anything, itemID).Return(true, nil)

	w := postJSON(f.router, "/api/v1/billing/invoices", CreateInvoiceRequest{
		BuyerID:   buyerID.String(),
		AuctionID: auctionID.String(),
		ItemIDs:   []string{itemID.String()},
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	env := decodeInvoiceEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeConflict, env.Error.Code)
	f.invoiceRepo.AssertNotCalled(t, "Save")
}

func TestInvoiceHandler_Create_NoWinningBid(t *testing.T) {
	f := setupInvoiceHandler(t)

	buyerID := uuid.New()
	auctionID := uuid.New()
	sellerID := uuid.New()
	itemID := uuid.New()

	f.invoiceRepo.On("ExistsForItem", mock.Anything, itemID).Return(false, nil)
	f.itemRepo.On("FindByID", mock.Anything, itemID).Return(testItemFixture(itemID, auctionID, sellerID, 3), nil)
	f.bidRepo.On("FindForItemAndBuyer", mock.Anything, itemID, buyerID).Return(nil, shared.ErrNotFound)

	w := postJSON(f.router, "/api/v1/billing/invoices", CreateInvoiceRequest{
		BuyerID:   buyerID.String(),
		AuctionID: auctionID.String(),
		ItemIDs:   []string{itemID.String()},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeInvoiceEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
	f.invoiceRepo.AssertNotCalled(t, "Save")
}

func TestInvoiceHandler_GetByID(t *testing.T) {
	f := setupInvoiceHandler(t)

	buyerID := uuid.New()
	auctionID := uuid.New()
	inv := testInvoiceFixture(t, buyerID, auctionID)

	f.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/billing/invoices/"+inv.ID.String(), nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeInvoiceEnvelope(t, w)
	assert.Equal(t, inv.ID.String(), env.Data.ID)
	assert.Equal(t, "INV-2026-00042", env.Data.InvoiceNumber)
}

func TestInvoiceHandler_GetByID_NotFound(t *testing.T) {
	f := setupInvoiceHandler(t)

	id := uuid.New()
	f.invoiceRepo.On("FindByID", mock.Anything, id).Return(nil, fmt.Errorf("find invoice: %w", shared.ErrNotFound))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/billing/invoices/"+id.String(), nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decodeInvoiceEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeNotFound, env.Error.Code)
}

func TestInvoiceHandler_GetByID_InvalidID(t *testing.T) {
	f := setupInvoiceHandler(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/billing/invoices/not-a-uuid", nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_List(t *testing.T) {
	f := setupInvoiceHandler(t)

	buyerID := uuid.New()
	auctionID := uuid.New()
	inv := testInvoiceFixture(t, buyerID, auctionID)

	f.invoiceRepo.On("FindAll", mock.Anything, mock.MatchedBy(func(filter billing.InvoiceFilter) bool {
		return filter.BuyerID != nil && *filter.BuyerID == buyerID
	})).Return([]billing.Invoice{*inv}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/billing/invoices?buyer_id="+buyerID.String(), nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Success bool              `json:"success"`
		Data    []InvoiceResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, inv.ID.String(), env.Data[0].ID)
}

func TestInvoiceHandler_MarkPaid(t *testing.T) {
	f := setupInvoiceHandler(t)

	inv := testInvoiceFixture(t, uuid.New(), uuid.New())

	f.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	f.invoiceRepo.On("SaveTransition", mock.Anything, inv, billing.InvoiceStatusUnpaid).Return(nil)

	w := postJSON(f.router, "/api/v1/billing/invoices/"+inv.ID.String()+"/mark-paid", MarkInvoicePaidRequest{
		GatewayRef: "pi_3MtwBwLkdIwHu7ix28a3tqPa",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeInvoiceEnvelope(t, w)
	assert.Equal(t, "PAID", env.Data.Status)
	assert.NotNil(t, env.Data.PaidAt)
	f.invoiceRepo.AssertExpectations(t)
}

func TestInvoiceHandler_Cancel(t *testing.T) {
	f := setupInvoiceHandler(t)

	inv := testInvoiceFixture(t, uuid.New(), uuid.New())

	f.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	f.invoiceRepo.On("SaveTransition", mock.Anything, inv, billing.InvoiceStatusUnpaid).Return(nil)

	w := postJSON(f.router, "/api/v1/billing/invoices/"+inv.ID.String()+"/cancel", CancelInvoiceRequest{
		Reason: "Buyer defaulted",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeInvoiceEnvelope(t, w)
	assert.Equal(t, "CANCELLED", env.Data.Status)
	assert.Equal(t, "Buyer defaulted", env.Data.CancelReason)
}

func TestInvoiceHandler_Reconcile(t *testing.T) {
	f := setupInvoiceHandler(t)

	invoiceID := uuid.New()
	f.reconciler.On("Reconcile", mock.Anything, invoiceID).Return(&billingapp.ReconcileResult{
		InvoiceID:  invoiceID,
		Outcome:    billingapp.OutcomeCharged,
		GatewayRef: "pi_charge_ref",
	}, nil)

	w := postJSON(f.router, "/api/v1/billing/invoices/"+invoiceID.String()+"/reconcile", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Success bool                       `json:"success"`
		Data    billingapp.ReconcileResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, billingapp.OutcomeCharged, env.Data.Outcome)
	assert.Equal(t, "pi_charge_ref", env.Data.GatewayRef)
	f.reconciler.AssertExpectations(t)
}

func TestInvoiceHandler_Reconcile_ChargeDeclined(t *testing.T) {
	f := setupInvoiceHandler(t)

	invoiceID := uuid.New()
	f.reconciler.On("Reconcile", mock.Anything, invoiceID).Return(nil,
		shared.NewDomainError("CHARGE_DECLINED", "Stored payment method was declined"))

	w := postJSON(f.router, "/api/v1/billing/invoices/"+invoiceID.String()+"/reconcile", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decodeInvoiceEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeChargeDeclined, env.Error.Code)
}
