package handler

import (
	billingapp "github.com/auctionhouse/backend/internal/application/billing"
	"github.com/auctionhouse/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles buyer invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	service    *billingapp.InvoiceService
	reconciler billingapp.InvoiceReconciler
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service *billingapp.InvoiceService, reconciler billingapp.InvoiceReconciler) *InvoiceHandler {
	return &InvoiceHandler{
		service:    service,
		reconciler: reconciler,
	}
}

// Create godoc
//
//	@ID			createInvoice
//	@Summary	Create invoice
//	@Description	Create an invoice covering a buyer's won lots in an auction
//	@Tags		billing
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateInvoiceRequest	true	"Invoice creation request"
//	@Success	201		{object}	APIResponse[InvoiceResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse	"An item is already invoiced"
//	@Router		/billing/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	itemIDs := make([]uuid.UUID, 0, len(req.ItemIDs))
	for _, raw := range req.ItemIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid item id: "+raw)
			return
		}
		itemIDs = append(itemIDs, id)
	}

	invoice, err := h.service.CreateInvoice(c.Request.Context(), billingapp.CreateInvoiceRequest{
		BuyerID:   uuid.MustParse(req.BuyerID),
		AuctionID: uuid.MustParse(req.AuctionID),
		ItemIDs:   itemIDs,
		Notes:     req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toInvoiceResponse(invoice))
}

// GetByID godoc
//
//	@ID			getInvoice
//	@Summary	Get invoice
//	@Tags		billing
//	@Produce	json
//	@Param		id	path		string	true	"Invoice ID"
//	@Success	200	{object}	APIResponse[InvoiceResponse]
//	@Failure	404	{object}	ErrorResponse
//	@Router		/billing/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// List godoc
//
//	@ID			listInvoices
//	@Summary	List invoices
//	@Description	List invoices filtered by buyer, auction, status and dispatch state
//	@Tags		billing
//	@Produce	json
//	@Param		buyer_id	query		string	false	"Filter by buyer"
//	@Param		auction_id	query		string	false	"Filter by auction"
//	@Param		status		query		string	false	"Filter by status"	Enums(UNPAID, PAID, CANCELLED)
//	@Param		unsent		query		bool	false	"Only never-dispatched invoices"
//	@Param		sort_by		query		string	false	"Sort field"	Enums(created_at, updated_at, invoice_number, status, total_amount, sent_at, paid_at)
//	@Param		sort_order	query		string	false	"Sort direction"	Enums(asc, desc)
//	@Success	200			{object}	APIResponse[[]InvoiceResponse]
//	@Router		/billing/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := billing.InvoiceFilter{
		Unsent:    req.Unsent,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if req.BuyerID != "" {
		id := uuid.MustParse(req.BuyerID)
		filter.BuyerID = &id
	}
	if req.AuctionID != "" {
		id := uuid.MustParse(req.AuctionID)
		filter.AuctionID = &id
	}
	if req.Status != "" {
		status := billing.InvoiceStatus(req.Status)
		filter.Status = &status
	}

	invoices, err := h.service.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceListResponse(invoices))
}

// Cancel godoc
//
//	@ID			cancelInvoice
//	@Summary	Cancel invoice
//	@Description	Cancel an unpaid invoice after a manual admin decision
//	@Tags		billing
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Invoice ID"
//	@Param		request	body		CancelInvoiceRequest	true	"Cancellation reason"
//	@Success	200		{object}	APIResponse[InvoiceResponse]
//	@Failure	422		{object}	ErrorResponse	"Invoice is not cancellable"
//	@Router		/billing/invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.service.CancelInvoice(c.Request.Context(), id, req.Reason); err != nil {
		h.HandleError(c, err)
		return
	}

	invoice, err := h.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// MarkPaid godoc
//
//	@ID			markInvoicePaid
//	@Summary	Mark invoice paid
//	@Description	Record an out-of-band payment confirmation. Re-confirming a paid invoice is a no-op.
//	@Tags		billing
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Invoice ID"
//	@Param		request	body		MarkInvoicePaidRequest	true	"Gateway reference"
//	@Success	200		{object}	APIResponse[InvoiceResponse]
//	@Router		/billing/invoices/{id}/mark-paid [post]
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req MarkInvoicePaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.service.MarkPaid(c.Request.Context(), id, req.GatewayRef); err != nil {
		h.HandleError(c, err)
		return
	}

	invoice, err := h.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// MarkSent godoc
//
//	@ID			markInvoiceSent
//	@Summary	Mark invoice sent
//	@Description	Record a manual dispatch of the invoice. Re-sending is a no-op.
//	@Tags		billing
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Invoice ID"
//	@Param		request	body		MarkInvoiceSentRequest	false	"Dispatch confirmation"
//	@Success	200		{object}	APIResponse[InvoiceResponse]
//	@Router		/billing/invoices/{id}/mark-sent [post]
func (h *InvoiceHandler) MarkSent(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req MarkInvoiceSentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	if err := h.service.MarkSent(c.Request.Context(), id, req.Confirmation); err != nil {
		h.HandleError(c, err)
		return
	}

	invoice, err := h.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toInvoiceResponse(invoice))
}

// Reconcile godoc
//
//	@ID			reconcileInvoice
//	@Summary	Reconcile invoice
//	@Description	Collect payment for one invoice: a single off-session charge attempt with payment-link fallback
//	@Tags		billing
//	@Produce	json
//	@Param		id	path		string	true	"Invoice ID"
//	@Success	200	{object}	APIResponse[billingapp.ReconcileResult]
//	@Failure	422	{object}	ErrorResponse	"Invoice is cancelled"
//	@Router		/billing/invoices/{id}/reconcile [post]
func (h *InvoiceHandler) Reconcile(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.reconciler.Reconcile(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
