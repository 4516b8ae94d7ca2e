package shared

import (
	"fmt"

	"github.com/google/uuid"
)

// SourceKind discriminates what produced a ledger row.
type SourceKind string

const (
	SourcePurchaseOrder SourceKind = "purchase_order"
	SourceSalesOrder    SourceKind = "sales_order"
	SourcePayment       SourceKind = "payment"
	// SourceManual marks adjustments and opening balances entered by an operator.
	SourceManual SourceKind = "manual"
)

// IsValid checks if the source kind is known
func (k SourceKind) IsValid() bool {
	switch k {
	case SourcePurchaseOrder, SourceSalesOrder, SourcePayment, SourceManual:
		return true
	}
	return false
}

// String returns the string representation
func (k SourceKind) String() string {
	return string(k)
}

// SourceRef is a typed reference from a ledger row to its originating
// document. ID is nil for manual entries.
type SourceRef struct {
	Kind SourceKind
	ID   *uuid.UUID
}

// PurchaseOrderRef references a purchase order
func PurchaseOrderRef(id uuid.UUID) SourceRef {
	return SourceRef{Kind: SourcePurchaseOrder, ID: &id}
}

// SalesOrderRef references a sales order
func SalesOrderRef(id uuid.UUID) SourceRef {
	return SourceRef{Kind: SourceSalesOrder, ID: &id}
}

// PaymentRef references a payment
func PaymentRef(id uuid.UUID) SourceRef {
	return SourceRef{Kind: SourcePayment, ID: &id}
}

// ManualRef references an operator entry with no originating document
func ManualRef() SourceRef {
	return SourceRef{Kind: SourceManual}
}

// Validate checks that the reference carries an ID exactly when its kind
// requires one.
func (r SourceRef) Validate() error {
	if !r.Kind.IsValid() {
		return ErrValidation.WithMessage("unknown source kind %q", r.Kind)
	}
	if r.Kind == SourceManual {
		if r.ID != nil {
			return ErrValidation.WithMessage("manual source must not reference a document")
		}
		return nil
	}
	if r.ID == nil || *r.ID == uuid.Nil {
		return ErrValidation.WithMessage("%s source requires a document id", r.Kind)
	}
	return nil
}

// String renders the reference as kind:id
func (r SourceRef) String() string {
	if r.ID == nil {
		return string(r.Kind)
	}
	return fmt.Sprintf("%s:%s", r.Kind, r.ID)
}
