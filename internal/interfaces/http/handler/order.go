package handler

import (
	"github.com/erp/posting/internal/application/posting"
	"github.com/gin-gonic/gin"
)

// OrderHandler exposes purchase and sales orders: line item mutation and
// status changes, the two triggers of stock posting
type OrderHandler struct {
	BaseHandler
	posting PostingService
	queries QueryService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(postingService PostingService, queries QueryService) *OrderHandler {
	return &OrderHandler{posting: postingService, queries: queries}
}

// Create opens a draft order
// POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req posting.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.posting.CreateOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List lists orders, newest first
// GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter posting.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.queries.ListOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// Get returns an order with its lines and totals
// GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := h.posting.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateHeader changes counterparty name, date or notes of a draft order
// PUT /orders/:id
func (h *OrderHandler) UpdateHeader(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req posting.UpdateOrderHeaderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.posting.UpdateOrderHeader(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// AddItem adds a line and returns the recomputed order
// POST /orders/:id/items
func (h *OrderHandler) AddItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req posting.AddLineItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.posting.AddLineItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateItem reprices a line
// PUT /orders/:id/items/:item_id
func (h *OrderHandler) UpdateItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.uuidParam(c, "item_id")
	if !ok {
		return
	}
	var req posting.UpdateLineItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.posting.UpdateLineItem(c.Request.Context(), id, itemID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// RemoveItem deletes a line
// DELETE /orders/:id/items/:item_id
func (h *OrderHandler) RemoveItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.uuidParam(c, "item_id")
	if !ok {
		return
	}
	order, err := h.posting.RemoveLineItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ChangeStatus moves the order through its state machine; confirming posts
// stock for every line
// POST /orders/:id/status
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req posting.ChangeOrderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.posting.ChangeOrderStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
