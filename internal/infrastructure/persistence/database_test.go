package persistence

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/posting/internal/domain/shared"
	"github.com/erp/posting/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func mockPostgres(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)
	return &Database{DB: gdb}, mock
}

func TestDatabase_PingAndClose(t *testing.T) {
	db, mock := mockPostgres(t)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing()
	mock.ExpectClose()

	assert.Error(t, db.Ping())
	assert.NoError(t, db.Ping())
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Transaction(t *testing.T) {
	type postingNote struct {
		ID   uint
		Note string
	}

	tests := []struct {
		name    string
		expect  func(mock sqlmock.Sqlmock)
		fn      func(tx *gorm.DB) error
		wantErr error
	}{
		{
			name: "commits the posting",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO "posting_notes"`).
					WithArgs("stock posted").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
				mock.ExpectCommit()
			},
			fn: func(tx *gorm.DB) error {
				return tx.Create(&postingNote{Note: "stock posted"}).Error
			},
		},
		{
			name: "rolls back a rejected posting",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn: func(*gorm.DB) error {
				return shared.ErrOverpayment
			},
			wantErr: shared.ErrOverpayment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := mockPostgres(t)
			tt.expect(mock)

			err := db.Transaction(tt.fn)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNewDatabaseWithOptions(t *testing.T) {
	t.Run("opens an in-memory sqlite database and migrates the posting tables", func(t *testing.T) {
		db, err := NewDatabaseWithOptions(&config.DatabaseConfig{
			Driver:     config.DriverSQLite,
			SQLitePath: ":memory:",
		}, Options{Logger: zap.NewNop(), LogLevel: "silent"})
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		require.NoError(t, db.AutoMigrate())
		for _, table := range []string{"products", "orders", "order_items", "stock_ledger_entries", "ledger_entries", "chart_accounts", "invoices", "payments", "tax_rules"} {
			assert.True(t, db.DB.Migrator().HasTable(table), table)
		}

		sqlDB, err := db.DB.DB()
		require.NoError(t, err)
		assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
	})

	t.Run("rejects an unknown driver", func(t *testing.T) {
		_, err := NewDatabaseWithOptions(&config.DatabaseConfig{Driver: "mysql"}, Options{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported database driver")
	})
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?_foreign_keys=on", sqliteDSN(":memory:"))
	assert.Equal(t, "file::memory:?_foreign_keys=on", sqliteDSN(""))
	assert.Equal(t, "/tmp/p.db?_foreign_keys=on&_busy_timeout=5000", sqliteDSN("/tmp/p.db"))
}
