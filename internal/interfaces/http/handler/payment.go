package handler

import (
	"github.com/erp/posting/internal/application/posting"
	"github.com/erp/posting/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// PaymentHandler exposes bills, invoices and payment submission
type PaymentHandler struct {
	BaseHandler
	posting PostingService
	queries QueryService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(postingService PostingService, queries QueryService) *PaymentHandler {
	return &PaymentHandler{posting: postingService, queries: queries}
}

// CreateInvoice bills a confirmed order
// POST /invoices
func (h *PaymentHandler) CreateInvoice(c *gin.Context) {
	var req posting.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	inv, err := h.posting.CreateInvoiceFromOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// GetInvoice returns a bill or invoice with its paid and open balance
// GET /invoices/:id
func (h *PaymentHandler) GetInvoice(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.queries.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// ListInvoicePayments lists the payments recorded against a bill or invoice
// GET /invoices/:id/payments
func (h *PaymentHandler) ListInvoicePayments(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var q PageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.queries.ListInvoicePayments(c.Request.Context(), id, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// RecordPayment posts a payment. An Idempotency-Key header makes a retried
// submission fail with ERR_DUPLICATE_POSTING instead of paying twice.
// POST /payments
func (h *PaymentHandler) RecordPayment(c *gin.Context) {
	var req posting.RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.posting.RecordPayment(c.Request.Context(), req, c.GetHeader(middleware.IdempotencyKeyHeader))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}
