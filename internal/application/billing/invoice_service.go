package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService owns the invoice lifecycle: creation from won bids and the
// explicit status transitions.
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	itemRepo    auction.ItemRepository
	bidRepo     auction.WinningBidRepository
	termsRepo   auction.SellerTermsRepository
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	itemRepo auction.ItemRepository,
	bidRepo auction.WinningBidRepository,
	termsRepo auction.SellerTermsRepository,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		itemRepo:    itemRepo,
		bidRepo:     bidRepo,
		termsRepo:   termsRepo,
		logger:      logger,
	}
}

// CreateInvoiceRequest asks for an invoice covering a buyer's won lots in an
// auction. ItemIDs lists the lots to invoice; each must carry a winning bid
// belonging to the buyer.
type CreateInvoiceRequest struct {
	BuyerID   uuid.UUID
	AuctionID uuid.UUID
	ItemIDs   []uuid.UUID
	Notes     string
}

// CreateInvoice computes amounts for each won lot and persists a new Unpaid
// invoice. It fails with a validation error when any item lacks a qualifying
// bid for the buyer, and rejects items already covered by a live invoice.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*billing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "create_invoice")
	defer span.End()

	telemetry.SetAttributes(span,
		"buyer_id", req.BuyerID.String(),
		"auction_id", req.AuctionID.String(),
		"item_count", len(req.ItemIDs),
	)

	if len(req.ItemIDs) == 0 {
		err := shared.NewValidationError("EMPTY_INVOICE", "At least one item is required")
		telemetry.RecordError(span, err)
		return nil, err
	}

	lines := make([]billing.LineItem, 0, len(req.ItemIDs))
	for _, itemID := range req.ItemIDs {
		line, err := s.buildLine(ctx, req.BuyerID, itemID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		lines = append(lines, *line)
	}

	invoice, err := billing.NewInvoice(
		billing.GenerateInvoiceNumber(time.Now()),
		req.BuyerID,
		req.AuctionID,
		lines,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Notes != "" {
		invoice.SetNotes(req.Notes)
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("buyer_id", req.BuyerID.String()),
		zap.Int64("total_amount", invoice.TotalAmount),
	)

	telemetry.AddEvent(span, "invoice_created",
		"invoice_id", invoice.ID.String(),
		"invoice_number", invoice.InvoiceNumber,
	)

	return invoice, nil
}

// buildLine prices one won lot for the buyer under the seller's terms
func (s *InvoiceService) buildLine(ctx context.Context, buyerID, itemID uuid.UUID) (*billing.LineItem, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", itemID, err)
	}

	invoiced, err := s.invoiceRepo.ExistsForItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing invoices for item %s: %w", itemID, err)
	}
	if invoiced {
		return nil, shared.NewValidationError("ALREADY_INVOICED",
			fmt.Sprintf("Item %s is already covered by an invoice", itemID))
	}

	bid, err := s.bidRepo.FindForItemAndBuyer(ctx, itemID, buyerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("NO_WINNING_BID",
				fmt.Sprintf("No qualifying bid exists for item %s and buyer %s", itemID, buyerID))
		}
		return nil, fmt.Errorf("failed to get winning bid for item %s: %w", itemID, err)
	}

	if !item.MeetsReserve(bid.Amount) {
		return nil, shared.NewValidationError("NO_WINNING_BID",
			fmt.Sprintf("High bid on item %s is below the seller's reserve", itemID))
	}

	terms, err := s.termsRepo.FindBySeller(ctx, item.SellerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seller terms for item %s: %w", itemID, err)
	}
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	cost := billing.ComputeBuyerCost(bid.Amount, terms.BuyersPremiumRate, terms.TaxRate)
	line := billing.NewLineItem(itemID, item.LotNumber, item.Title, cost)
	return &line, nil
}

// GetInvoice returns one invoice by id
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// ListInvoices returns invoices matching the filter
func (s *InvoiceService) ListInvoices(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	invoices, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// MarkPaid transitions an invoice to Paid under the status guard. A duplicate
// confirmation for an already-paid invoice returns success without touching
// the row.
func (s *InvoiceService) MarkPaid(ctx context.Context, invoiceID uuid.UUID, gatewayRef string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "mark_paid")
	defer span.End()
	telemetry.SetAttribute(span, "invoice_id", invoiceID.String())

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to get invoice: %w", err)
	}

	if invoice.IsPaid() {
		return nil
	}

	fromStatus := invoice.Status
	if err := invoice.MarkPaid(gatewayRef); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.invoiceRepo.SaveTransition(ctx, invoice, fromStatus); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			// another process completed the transition first
			s.logger.Info("Invoice already transitioned by another process",
				zap.String("invoice_id", invoiceID.String()))
			return nil
		}
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to save invoice transition: %w", err)
	}

	s.logger.Info("Invoice marked paid",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("gateway_ref", gatewayRef),
	)

	return nil
}

// MarkSent records dispatch of the invoice. Re-sending is a no-op.
func (s *InvoiceService) MarkSent(ctx context.Context, invoiceID uuid.UUID, linkOrConfirmation string) error {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to get invoice: %w", err)
	}

	if invoice.IsSent() {
		return nil
	}

	if err := invoice.MarkSent(linkOrConfirmation); err != nil {
		return err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return fmt.Errorf("failed to save invoice: %w", err)
	}

	return nil
}

// CancelInvoice cancels an unpaid invoice after a manual admin decision
func (s *InvoiceService) CancelInvoice(ctx context.Context, invoiceID uuid.UUID, reason string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "cancel_invoice")
	defer span.End()
	telemetry.SetAttribute(span, "invoice_id", invoiceID.String())

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to get invoice: %w", err)
	}

	if invoice.Status == billing.InvoiceStatusCancelled {
		return nil
	}

	fromStatus := invoice.Status
	if err := invoice.Cancel(reason); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	if err := s.invoiceRepo.SaveTransition(ctx, invoice, fromStatus); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return shared.NewDomainError("INVALID_STATE", "Invoice changed state during cancellation")
		}
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to save invoice transition: %w", err)
	}

	s.logger.Info("Invoice cancelled",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("reason", reason),
	)

	return nil
}
