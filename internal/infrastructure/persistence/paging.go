package persistence

import (
	"slices"
	"strings"

	"github.com/erp/posting/internal/domain/shared"
	"gorm.io/gorm"
)

// sortSpec whitelists the columns a listing may be ordered by. Requested
// columns are matched exactly and never interpolated otherwise.
type sortSpec struct {
	columns []string
	// fallback orders the listing when the request names no allowed column
	fallback string
	// tieBreaker keeps pages stable when the sort column repeats
	tieBreaker string
}

var (
	productSort = sortSpec{
		columns:    []string{"id", "created_at", "updated_at", "sku", "name", "current_stock", "sales_price"},
		fallback:   "sku",
		tieBreaker: "id",
	}
	taxRuleSort = sortSpec{
		columns:    []string{"id", "created_at", "name", "rate"},
		fallback:   "name",
		tieBreaker: "id",
	}
	orderSort = sortSpec{
		columns:    []string{"id", "created_at", "updated_at", "order_number", "order_date", "status", "total_amount"},
		fallback:   "created_at",
		tieBreaker: "id",
	}
	// sequence is the per-product posting order
	stockLedgerSort = sortSpec{
		columns:    []string{"created_at", "sequence", "transaction_date", "quantity"},
		fallback:   "sequence",
		tieBreaker: "created_at",
	}
	// debit and credit of a pair share created_at
	ledgerEntrySort = sortSpec{
		columns:    []string{"created_at", "transaction_date", "account_code", "amount"},
		fallback:   "created_at",
		tieBreaker: "entry_type",
	}
	accountSort = sortSpec{
		columns:  []string{"code", "name", "created_at", "balance"},
		fallback: "code",
	}
	invoiceSort = sortSpec{
		columns:    []string{"id", "created_at", "invoice_number", "invoice_date", "due_date", "total_amount", "balance_amount", "status"},
		fallback:   "created_at",
		tieBreaker: "id",
	}
	paymentSort = sortSpec{
		columns:    []string{"created_at", "payment_date", "payment_number", "amount"},
		fallback:   "payment_date",
		tieBreaker: "created_at",
	}
)

func (s sortSpec) column(requested string) string {
	if c := strings.TrimSpace(requested); slices.Contains(s.columns, c) {
		return c
	}
	return s.fallback
}

// sortDirection accepts "asc" in any case; everything else sorts newest first.
func sortDirection(requested string) string {
	if strings.EqualFold(strings.TrimSpace(requested), "asc") {
		return "ASC"
	}
	return "DESC"
}

// page orders query by the filter's column and direction and cuts out the
// requested page.
func (s sortSpec) page(query *gorm.DB, filter shared.Filter) *gorm.DB {
	col, dir := s.column(filter.OrderBy), sortDirection(filter.OrderDir)
	query = query.Order(col + " " + dir)
	if s.tieBreaker != "" && s.tieBreaker != col {
		query = query.Order(s.tieBreaker + " " + dir)
	}
	return query.Offset(filter.Offset()).Limit(filter.Limit())
}

// applyDateRange restricts column to the filter's inclusive From/To bounds
func applyDateRange(query *gorm.DB, filter shared.Filter, column string) *gorm.DB {
	if filter.From != nil {
		query = query.Where(column+" >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where(column+" <= ?", *filter.To)
	}
	return query
}
