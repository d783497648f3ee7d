package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/auctionhouse/backend/internal/domain/settlement"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"github.com/auctionhouse/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SettlementService computes and manages seller payout statements. The
// computation is a read path over item and bid data, never gated by invoice
// status, and safe to run concurrently across sellers and auctions.
type SettlementService struct {
	statementRepo settlement.StatementRepository
	itemRepo      auction.ItemRepository
	bidRepo       auction.WinningBidRepository
	termsRepo     auction.SellerTermsRepository
	logger        *zap.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	statementRepo settlement.StatementRepository,
	itemRepo auction.ItemRepository,
	bidRepo auction.WinningBidRepository,
	termsRepo auction.SellerTermsRepository,
	logger *zap.Logger,
) *SettlementService {
	return &SettlementService{
		statementRepo: statementRepo,
		itemRepo:      itemRepo,
		bidRepo:       bidRepo,
		termsRepo:     termsRepo,
		logger:        logger,
	}
}

// ComputeSettlementRequest asks for a payout statement for one seller in one
// auction. Adjustments are named deductions supplied by the operator.
type ComputeSettlementRequest struct {
	SellerID    uuid.UUID
	AuctionID   uuid.UUID
	Adjustments settlement.Adjustments
}

// ComputeSettlement partitions the seller's items into sold and unsold,
// applies the seller's commission rate and the supplied adjustments, and
// persists a draft statement. A would-be-negative payout is rejected and
// nothing is persisted.
func (s *SettlementService) ComputeSettlement(ctx context.Context, req ComputeSettlementRequest) (*settlement.Statement, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "compute_settlement")
	defer span.End()
	telemetry.SetAttributes(span,
		"seller_id", req.SellerID.String(),
		"auction_id", req.AuctionID.String(),
	)

	items, err := s.itemRepo.FindBySellerAndAuction(ctx, req.SellerID, req.AuctionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get seller items: %w", err)
	}
	if len(items) == 0 {
		err := shared.NewValidationError("NO_ITEMS",
			fmt.Sprintf("Seller %s has no items in auction %s", req.SellerID, req.AuctionID))
		telemetry.RecordError(span, err)
		return nil, err
	}

	pairs := make([]settlement.ItemBid, 0, len(items))
	for i := range items {
		item := items[i]
		if item.Withdrawn {
			continue
		}
		bid, err := s.bidRepo.FindForItem(ctx, item.ID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				pairs = append(pairs, settlement.ItemBid{Item: item})
				continue
			}
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to get winning bid for item %s: %w", item.ID, err)
		}
		pairs = append(pairs, settlement.ItemBid{Item: item, Bid: bid})
	}

	partition := settlement.PartitionItems(pairs)

	terms, err := s.termsRepo.FindBySeller(ctx, req.SellerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to get seller terms: %w", err)
	}
	if err := terms.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var totalSales int64
	for _, line := range partition.Sold {
		totalSales += line.HammerPrice
	}
	commission := settlement.ComputeCommission(totalSales, terms.CommissionRate)

	statement, err := settlement.NewStatement(
		billing.GenerateStatementNumber(time.Now()),
		req.SellerID,
		req.AuctionID,
		partition.Sold,
		partition.Unsold,
		commission,
		req.Adjustments,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.statementRepo.Save(ctx, statement); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save statement: %w", err)
	}

	s.logger.Info("Settlement statement drafted",
		zap.String("statement_number", statement.StatementNumber),
		zap.String("seller_id", req.SellerID.String()),
		zap.Int64("total_sales", statement.TotalSales),
		zap.Int64("net_payout", statement.NetPayout),
	)

	return statement, nil
}

// GetStatement returns one statement by id
func (s *SettlementService) GetStatement(ctx context.Context, id uuid.UUID) (*settlement.Statement, error) {
	statement, err := s.statementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}
	return statement, nil
}

// ListStatementsForAuction returns all statements drafted for an auction
func (s *SettlementService) ListStatementsForAuction(ctx context.Context, auctionID uuid.UUID) ([]settlement.Statement, error) {
	statements, err := s.statementRepo.FindByAuction(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	return statements, nil
}

// MarkStatementSent records that the statement was issued to the seller
func (s *SettlementService) MarkStatementSent(ctx context.Context, statementID uuid.UUID) error {
	statement, err := s.statementRepo.FindByID(ctx, statementID)
	if err != nil {
		return fmt.Errorf("failed to get statement: %w", err)
	}
	if err := statement.MarkSent(); err != nil {
		return err
	}
	if err := s.statementRepo.Save(ctx, statement); err != nil {
		return fmt.Errorf("failed to save statement: %w", err)
	}
	return nil
}

// MarkStatementPaid records that the payout was made to the seller
func (s *SettlementService) MarkStatementPaid(ctx context.Context, statementID uuid.UUID) error {
	statement, err := s.statementRepo.FindByID(ctx, statementID)
	if err != nil {
		return fmt.Errorf("failed to get statement: %w", err)
	}
	if err := statement.MarkPaid(); err != nil {
		return err
	}
	if err := s.statementRepo.Save(ctx, statement); err != nil {
		return fmt.Errorf("failed to save statement: %w", err)
	}

	s.logger.Info("Settlement statement paid",
		zap.String("statement_number", statement.StatementNumber),
		zap.Int64("net_payout", statement.NetPayout),
	)
	return nil
}
