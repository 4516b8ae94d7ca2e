package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/posting/internal/domain/finance"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRowLocks(t *testing.T) {
	t.Run("product lookup for update issues FOR UPDATE", func(t *testing.T) {
		db, mock := mockPostgres(t)
		id := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 .*FOR UPDATE`).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "sku", "name", "is_active"}).
				AddRow(id.String(), "SKU-1", "Widget", true))

		p, err := NewGormProductRepository(db.DB).FindByIDForUpdate(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "SKU-1", p.SKU)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("accounts are locked in code order", func(t *testing.T) {
		db, mock := mockPostgres(t)

		mock.ExpectQuery(`SELECT \* FROM "chart_accounts" WHERE code IN \(\$1,\$2\) ORDER BY code ASC FOR UPDATE`).
			WithArgs("AP001", "CASH001").
			WillReturnRows(sqlmock.NewRows([]string{"id", "code", "is_active"}).
				AddRow(uuid.NewString(), "AP001", true).
				AddRow(uuid.NewString(), "CASH001", true))

		got, err := NewGormAccountRepository(db.DB).FindByCodesForUpdate(context.Background(), []string{"CASH001", "AP001"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing invoice maps to not found", func(t *testing.T) {
		db, mock := mockPostgres(t)

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 .*FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := NewGormInvoiceRepository(db.DB).FindByIDForUpdate(context.Background(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPostgresUniqueViolation(t *testing.T) {
	db, mock := mockPostgres(t)

	invoiceID := uuid.New()
	p, err := finance.NewPayment(finance.PaymentInput{
		PaymentNumber:     "PAY-9",
		Direction:         finance.PaymentDirectionCustomer,
		CustomerInvoiceID: &invoiceID,
		Amount:            dec("10"),
		Method:            finance.PaymentMethodCash,
		PaymentDate:       time.Now(),
	})
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO "payments"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_payments_number"})

	err = NewGormPaymentRepository(db.DB).Create(context.Background(), p)
	assert.ErrorIs(t, err, shared.ErrDuplicatePosting)
	assert.NoError(t, mock.ExpectationsWereMet())
}
