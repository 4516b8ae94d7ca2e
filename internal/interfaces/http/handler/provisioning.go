package handler

import (
	"github.com/erp/posting/internal/application/posting"
	"github.com/gin-gonic/gin"
)

// ProvisioningHandler exposes products, tax rules and the chart of accounts
type ProvisioningHandler struct {
	BaseHandler
	provisioning ProvisioningService
	queries      QueryService
}

// NewProvisioningHandler creates a new ProvisioningHandler
func NewProvisioningHandler(provisioning ProvisioningService, queries QueryService) *ProvisioningHandler {
	return &ProvisioningHandler{provisioning: provisioning, queries: queries}
}

// CreateProduct POST /products
func (h *ProvisioningHandler) CreateProduct(c *gin.Context) {
	var req posting.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.provisioning.CreateProduct(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// ListProducts GET /products
func (h *ProvisioningHandler) ListProducts(c *gin.Context) {
	var q PageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.queries.ListProducts(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}

// DeactivateProduct POST /products/:id/deactivate
func (h *ProvisioningHandler) DeactivateProduct(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	product, err := h.provisioning.DeactivateProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// CreateTaxRule POST /tax-rules
func (h *ProvisioningHandler) CreateTaxRule(c *gin.Context) {
	var req posting.CreateTaxRuleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rule, err := h.provisioning.CreateTaxRule(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rule)
}

// ProvisionAccount POST /accounts
func (h *ProvisioningHandler) ProvisionAccount(c *gin.Context) {
	var req posting.ProvisionAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	account, err := h.provisioning.ProvisionAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// ListAccounts GET /accounts
func (h *ProvisioningHandler) ListAccounts(c *gin.Context) {
	var q PageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.queries.ListAccounts(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(c, page)
}
