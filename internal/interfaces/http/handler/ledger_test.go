package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/erp/posting/internal/application/posting"
	"github.com/erp/posting/internal/domain/inventory"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/erp/posting/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupLedgerRouter(ps *MockPostingService, qs *MockQueryService) *gin.Engine {
	h := NewLedgerHandler(ps, qs)
	r := gin.New()
	r.POST("/stock/movements", h.RecordMovement)
	r.GET("/stock/ledger", h.ListStockLedger)
	r.GET("/products/:id/stock", h.GetProductStock)
	r.GET("/ledger/entries", h.ListFinancialLedger)
	return r
}

func TestLedgerHandler_RecordMovement(t *testing.T) {
	productID := uuid.New()

	t.Run("negative adjustment", func(t *testing.T) {
		ps, qs := new(MockPostingService), new(MockQueryService)
		r := setupLedgerRouter(ps, qs)
		ps.On("RecordStockMovement", mock.Anything, mock.MatchedBy(func(req posting.RecordStockMovementRequest) bool {
			return req.MovementType == inventory.MovementAdjustment && req.QuantityDelta.Equal(decimal.NewFromInt(-3))
		})).Return(&posting.StockLedgerEntryResponse{ProductID: productID, BalanceQuantity: decimal.NewFromInt(7)}, nil)

		w := doJSON(r, http.MethodPost, "/stock/movements", map[string]any{
			"product_id":     productID,
			"movement_type":  "adjustment",
			"quantity_delta": "-3",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"balance_quantity":"7"`)
		ps.AssertExpectations(t)
	})

	t.Run("order movement types are not accepted", func(t *testing.T) {
		ps, qs := new(MockPostingService), new(MockQueryService)
		r := setupLedgerRouter(ps, qs)

		w := doJSON(r, http.MethodPost, "/stock/movements", map[string]any{
			"product_id":     productID,
			"movement_type":  "sale",
			"quantity_delta": "1",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		ps.AssertNotCalled(t, "RecordStockMovement", mock.Anything, mock.Anything)
	})

	t.Run("stock would go negative", func(t *testing.T) {
		ps, qs := new(MockPostingService), new(MockQueryService)
		r := setupLedgerRouter(ps, qs)
		ps.On("RecordStockMovement", mock.Anything, mock.Anything).Return(nil, shared.ErrStockPostingFailed)

		w := doJSON(r, http.MethodPost, "/stock/movements", map[string]any{
			"product_id":     productID,
			"movement_type":  "adjustment",
			"quantity_delta": "-100",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeStockPostingFailed, decodeResponse(t, w).Error.Code)
	})
}

func TestLedgerHandler_ListStockLedger_BindsFilter(t *testing.T) {
	ps, qs := new(MockPostingService), new(MockQueryService)
	r := setupLedgerRouter(ps, qs)
	productID := uuid.New()
	page := shared.NewPaginated([]posting.StockLedgerEntryResponse{{Sequence: 1}, {Sequence: 2}}, 2, 1, 20)

	qs.On("ListStockLedger", mock.Anything, mock.MatchedBy(func(f posting.StockLedgerFilter) bool {
		return f.ProductID != nil && *f.ProductID == productID &&
			f.FromDate != nil && f.FromDate.Format(time.DateOnly) == "2024-01-01"
	})).Return(&page, nil)

	w := doJSON(r, http.MethodGet, "/stock/ledger?product_id="+productID.String()+"&from_date=2024-01-01", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	qs.AssertExpectations(t)
}

func TestLedgerHandler_ListFinancialLedger(t *testing.T) {
	ps, qs := new(MockPostingService), new(MockQueryService)
	r := setupLedgerRouter(ps, qs)
	page := shared.NewPaginated([]posting.LedgerEntryResponse{{AccountCode: "CASH001"}}, 1, 1, 20)
	qs.On("ListFinancialLedger", mock.Anything, posting.FinancialLedgerFilter{AccountCode: "CASH001", EntryType: "debit"}).Return(&page, nil)

	w := doJSON(r, http.MethodGet, "/ledger/entries?account_code=CASH001&entry_type=debit", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/ledger/entries?entry_type=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	qs.AssertExpectations(t)
}

func TestLedgerHandler_GetProductStock(t *testing.T) {
	ps, qs := new(MockPostingService), new(MockQueryService)
	r := setupLedgerRouter(ps, qs)
	productID := uuid.New()
	qs.On("GetProductStock", mock.Anything, productID).Return(&posting.ProductStockResponse{
		ProductID:     productID,
		CurrentStock:  decimal.NewFromInt(3),
		LedgerBalance: decimal.NewFromInt(3),
		InSync:        true,
	}, nil)
	qs.On("GetProductStock", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

	w := doJSON(r, http.MethodGet, "/products/"+productID.String()+"/stock", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"in_sync":true`)

	w = doJSON(r, http.MethodGet, "/products/"+uuid.NewString()+"/stock", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
