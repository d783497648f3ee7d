package handler

import (
	billingapp "github.com/auctionhouse/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// DispatchHandler handles batch invoice dispatch endpoints
type DispatchHandler struct {
	BaseHandler
	service *billingapp.DispatchService
}

// NewDispatchHandler creates a new DispatchHandler
func NewDispatchHandler(service *billingapp.DispatchService) *DispatchHandler {
	return &DispatchHandler{service: service}
}

// SendAll godoc
//
//	@ID			dispatchAuctionInvoices
//	@Summary	Dispatch auction invoices
//	@Description	Send every unpaid, never-sent invoice for an auction. Partial failure is reported in the result, not as an error.
//	@Tags		billing
//	@Produce	json
//	@Param		id	path		string	true	"Auction ID"
//	@Success	200	{object}	APIResponse[billingapp.BatchResult]
//	@Router		/billing/auctions/{id}/dispatch [post]
func (h *DispatchHandler) SendAll(c *gin.Context) {
	auctionID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.SendAllForAuction(c.Request.Context(), auctionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
