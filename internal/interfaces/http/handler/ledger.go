package handler

import (
	"github.com/erp/posting/internal/application/posting"
	"github.com/gin-gonic/gin"
)

// LedgerHandler exposes the stock and financial ledgers. Everything except
// RecordMovement is read-only.
type LedgerHandler struct {
	BaseHandler
	posting PostingService
	queries QueryService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(postingService PostingService, queries QueryService) *LedgerHandler {
	return &LedgerHandler{posting: postingService, queries: queries}
}

// RecordMovement posts a manual adjustment or an opening balance
// POST /stock/movements
func (h *LedgerHandler) RecordMovement(c *gin.Context) {
	var req posting.RecordStockMovementRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.posting.RecordStockMovement(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// ListStockLedger lists stock ledger entries
// GET /stock/ledger
func (h *LedgerHandler) ListStockLedger(c *gin.Context) {
	var filter posting.StockLedgerFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.queries.ListStockLedger(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// GetProductStock reports a product's stock and whether it matches its ledger
// GET /products/:id/stock
func (h *LedgerHandler) GetProductStock(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	stock, err := h.queries.GetProductStock(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stock)
}

// ListFinancialLedger lists financial ledger entries
// GET /ledger/entries
func (h *LedgerHandler) ListFinancialLedger(c *gin.Context) {
	var filter posting.FinancialLedgerFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.queries.ListFinancialLedger(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}
