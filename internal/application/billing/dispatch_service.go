package billing

import (
	"context"
	"fmt"

	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/auctionhouse/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceReconciler is the slice of ReconcileService the dispatcher needs
type InvoiceReconciler interface {
	Reconcile(ctx context.Context, invoiceID uuid.UUID) (*ReconcileResult, error)
}

// DispatchNotifier tells the buyer their invoice is ready. Implemented by the
// notification application service.
type DispatchNotifier interface {
	InvoiceDispatched(ctx context.Context, invoice *billing.Invoice, result *ReconcileResult) error
}

// BatchFailure records one invoice that could not be dispatched, for manual
// follow-up by an admin.
type BatchFailure struct {
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Reason        string    `json:"reason"`
}

// BatchResult reports a dispatch run. Partial failure is a normal outcome,
// expressed in the result rather than as an error; callers must inspect it.
type BatchResult struct {
	AuctionID uuid.UUID      `json:"auction_id"`
	Sent      []uuid.UUID    `json:"sent"`
	Skipped   []uuid.UUID    `json:"skipped"`
	Failed    []BatchFailure `json:"failed"`
}

// SentCount returns how many invoices were dispatched
func (r *BatchResult) SentCount() int { return len(r.Sent) }

// FailedCount returns how many invoices could not be dispatched
func (r *BatchResult) FailedCount() int { return len(r.Failed) }

// DispatchService sends every outstanding invoice for an auction: reconcile,
// notify the buyer, mark sent. Invoices are processed sequentially and
// independently; one poisoned invoice must not abort the batch.
type DispatchService struct {
	invoiceRepo billing.InvoiceRepository
	reconciler  InvoiceReconciler
	notifier    DispatchNotifier
	logger      *zap.Logger
}

// NewDispatchService creates a new DispatchService
func NewDispatchService(
	invoiceRepo billing.InvoiceRepository,
	reconciler InvoiceReconciler,
	notifier DispatchNotifier,
	logger *zap.Logger,
) *DispatchService {
	return &DispatchService{
		invoiceRepo: invoiceRepo,
		reconciler:  reconciler,
		notifier:    notifier,
		logger:      logger,
	}
}

// SendAllForAuction dispatches every Unpaid, never-sent invoice under the
// auction. Already-sent invoices are skipped, not failed.
func (s *DispatchService) SendAllForAuction(ctx context.Context, auctionID uuid.UUID) (*BatchResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "send_all_for_auction")
	defer span.End()
	telemetry.SetAttribute(span, "auction_id", auctionID.String())

	invoices, err := s.invoiceRepo.FindUnsentUnpaidByAuction(ctx, auctionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to list dispatchable invoices: %w", err)
	}

	result := &BatchResult{
		AuctionID: auctionID,
		Sent:      []uuid.UUID{},
		Skipped:   []uuid.UUID{},
		Failed:    []BatchFailure{},
	}

	for i := range invoices {
		invoice := &invoices[i]
		if invoice.IsSent() {
			result.Skipped = append(result.Skipped, invoice.ID)
			continue
		}

		if err := s.dispatchOne(ctx, invoice); err != nil {
			s.logger.Error("Invoice dispatch failed",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, BatchFailure{
				InvoiceID:     invoice.ID,
				InvoiceNumber: invoice.InvoiceNumber,
				Reason:        err.Error(),
			})
			continue
		}
		result.Sent = append(result.Sent, invoice.ID)
	}

	s.logger.Info("Auction dispatch complete",
		zap.String("auction_id", auctionID.String()),
		zap.Int("sent", result.SentCount()),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", result.FailedCount()),
	)
	telemetry.SetAttributes(span,
		"sent", result.SentCount(),
		"skipped", len(result.Skipped),
		"failed", result.FailedCount(),
	)

	return result, nil
}

// dispatchOne processes a single invoice, converting panics into recorded
// failures so the batch keeps moving.
func (s *DispatchService) dispatchOne(ctx context.Context, invoice *billing.Invoice) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during dispatch: %v", r)
		}
	}()

	reconcileResult, err := s.reconciler.Reconcile(ctx, invoice.ID)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	// reload: reconciliation may have moved the invoice to Paid or attached a link
	fresh, err := s.invoiceRepo.FindByID(ctx, invoice.ID)
	if err != nil {
		return fmt.Errorf("reload invoice: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.InvoiceDispatched(ctx, fresh, reconcileResult); err != nil {
			// notification is best-effort relative to the financial flow
			s.logger.Warn("Invoice notification failed",
				zap.String("invoice_number", fresh.InvoiceNumber),
				zap.Error(err),
			)
		}
	}

	if err := fresh.MarkSent(reconcileResult.PayLinkURL); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	if err := s.invoiceRepo.Save(ctx, fresh); err != nil {
		return fmt.Errorf("save invoice: %w", err)
	}

	return nil
}
