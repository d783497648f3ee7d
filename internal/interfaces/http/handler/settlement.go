package handler

import (
	settlementapp "github.com/auctionhouse/backend/internal/application/settlement"
	"github.com/auctionhouse/backend/internal/domain/settlement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettlementHandler handles seller settlement statement endpoints
type SettlementHandler struct {
	BaseHandler
	service *settlementapp.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(service *settlementapp.SettlementService) *SettlementHandler {
	return &SettlementHandler{service: service}
}

// Compute godoc
//
//	@ID			computeSettlement
//	@Summary	Compute settlement
//	@Description	Draft a payout statement for one seller in one auction
//	@Tags		settlement
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ComputeSettlementRequest	true	"Settlement computation request"
//	@Success	201		{object}	APIResponse[StatementResponse]
//	@Failure	400		{object}	ErrorResponse	"No items or negative payout"
//	@Router		/settlement/statements [post]
func (h *SettlementHandler) Compute(c *gin.Context) {
	var req ComputeSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	adjustments := make(settlement.Adjustments, 0, len(req.Adjustments))
	for _, adj := range req.Adjustments {
		adjustments = append(adjustments, settlement.Adjustment{
			Label:  adj.Label,
			Amount: adj.Amount,
		})
	}

	statement, err := h.service.ComputeSettlement(c.Request.Context(), settlementapp.ComputeSettlementRequest{
		SellerID:    uuid.MustParse(req.SellerID),
		AuctionID:   uuid.MustParse(req.AuctionID),
		Adjustments: adjustments,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toStatementResponse(statement))
}

// GetByID godoc
//
//	@ID			getStatement
//	@Summary	Get settlement statement
//	@Tags		settlement
//	@Produce	json
//	@Param		id	path		string	true	"Statement ID"
//	@Success	200	{object}	APIResponse[StatementResponse]
//	@Failure	404	{object}	ErrorResponse
//	@Router		/settlement/statements/{id} [get]
func (h *SettlementHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	statement, err := h.service.GetStatement(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toStatementResponse(statement))
}

// ListByAuction godoc
//
//	@ID			listAuctionStatements
//	@Summary	List statements for auction
//	@Tags		settlement
//	@Produce	json
//	@Param		id	path		string	true	"Auction ID"
//	@Success	200	{object}	APIResponse[[]StatementResponse]
//	@Router		/settlement/auctions/{id}/statements [get]
func (h *SettlementHandler) ListByAuction(c *gin.Context) {
	auctionID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	statements, err := h.service.ListStatementsForAuction(c.Request.Context(), auctionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toStatementListResponse(statements))
}

// MarkSent godoc
//
//	@ID			markStatementSent
//	@Summary	Mark statement sent
//	@Description	Record that the statement was issued to the seller
//	@Tags		settlement
//	@Produce	json
//	@Param		id	path		string	true	"Statement ID"
//	@Success	200	{object}	APIResponse[StatementResponse]
//	@Failure	422	{object}	ErrorResponse	"Statement is not in Draft"
//	@Router		/settlement/statements/{id}/mark-sent [post]
func (h *SettlementHandler) MarkSent(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkStatementSent(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	statement, err := h.service.GetStatement(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toStatementResponse(statement))
}

// MarkPaid godoc
//
//	@ID			markStatementPaid
//	@Summary	Mark statement paid
//	@Description	Record that the payout was made to the seller
//	@Tags		settlement
//	@Produce	json
//	@Param		id	path		string	true	"Statement ID"
//	@Success	200	{object}	APIResponse[StatementResponse]
//	@Failure	422	{object}	ErrorResponse	"Statement was never sent"
//	@Router		/settlement/statements/{id}/mark-paid [post]
func (h *SettlementHandler) MarkPaid(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkStatementPaid(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	statement, err := h.service.GetStatement(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toStatementResponse(statement))
}
