package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/papererp/backend/internal/domain/ledger"
	"github.com/papererp/backend/internal/domain/shared"
)

func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func invoiceRows(invoiceID, tenantID, customerID uuid.UUID) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "version", "created_at", "updated_at",
		"invoice_number", "customer_id", "customer_name",
		"total_amount", "balance", "paid_amount", "credited_amount",
		"status", "issue_date",
	}).AddRow(
		invoiceID, tenantID, 1, now, now,
		"INV-001", customerID, "Acme Paper Co",
		decimal.RequireFromString("150.00"), decimal.RequireFromString("150.00"),
		decimal.Zero, decimal.Zero,
		ledger.InvoiceStatusOpen, now,
	)
}

func TestGormInvoiceRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds existing invoice", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoiceID := uuid.New()
		tenantID := uuid.New()
		customerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, invoiceID, 1).
			WillReturnRows(invoiceRows(invoiceID, tenantID, customerID))

		invoice, err := repo.FindByIDForTenant(context.Background(), tenantID, invoiceID)

		require.NoError(t, err)
		require.NotNil(t, invoice)
		assert.Equal(t, invoiceID, invoice.ID)
		assert.Equal(t, "INV-001", invoice.InvoiceNumber)
		assert.True(t, invoice.Balance.Equal(decimal.RequireFromString("150.00")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for missing invoice", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		tenantID := uuid.New()
		invoiceID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, invoiceID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		invoice, err := repo.FindByIDForTenant(context.Background(), tenantID, invoiceID)

		assert.NoError(t, err)
		assert.Nil(t, invoice)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	newInvoice := func(tenantID uuid.UUID) *ledger.Invoice {
		inv := &ledger.Invoice{
			InvoiceNumber: "INV-001",
			CustomerID:    uuid.New(),
			CustomerName:  "Acme Paper Co",
			TotalAmount:   decimal.RequireFromString("150.00"),
			Balance:       decimal.RequireFromString("150.00"),
			Status:        ledger.InvoiceStatusOpen,
			IssueDate:     time.Now(),
		}
		inv.ID = uuid.New()
		inv.TenantID = tenantID
		inv.Version = 2
		return inv
	}

	t.Run("updates row at expected version", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoice := newInvoice(uuid.New())

		mock.ExpectExec(`UPDATE "invoices" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), invoice)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports conflict when no row matches the version", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoice := newInvoice(uuid.New())

		mock.ExpectExec(`UPDATE "invoices" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), invoice)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "CONCURRENCY_CONFLICT", domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_FindOpenByCustomer(t *testing.T) {
	t.Run("orders by due date then issue date", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		tenantID := uuid.New()
		customerID := uuid.New()
		invoiceID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE tenant_id = \$1 AND customer_id = \$2 AND status IN \(\$3,\$4,\$5\) ORDER BY due_date ASC NULLS LAST, issue_date ASC, invoice_number ASC`).
			WithArgs(tenantID, customerID,
				ledger.InvoiceStatusOpen, ledger.InvoiceStatusPartial, ledger.InvoiceStatusOverdue).
			WillReturnRows(invoiceRows(invoiceID, tenantID, customerID))

		invoices, err := repo.FindOpenByCustomer(context.Background(), tenantID, customerID)

		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, invoiceID, invoices[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice when customer has no open invoices", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		tenantID := uuid.New()
		customerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE tenant_id = \$1 AND customer_id = \$2 AND status IN`).
			WithArgs(tenantID, customerID,
				ledger.InvoiceStatusOpen, ledger.InvoiceStatusPartial, ledger.InvoiceStatusOverdue).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		invoices, err := repo.FindOpenByCustomer(context.Background(), tenantID, customerID)

		require.NoError(t, err)
		assert.Empty(t, invoices)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_ExistsByNumber(t *testing.T) {
	t.Run("reports taken invoice number", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE tenant_id = \$1 AND invoice_number = \$2`).
			WithArgs(tenantID, "INV-001").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByNumber(context.Background(), tenantID, "INV-001")

		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports free invoice number", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices" WHERE tenant_id = \$1 AND invoice_number = \$2`).
			WithArgs(tenantID, "INV-404").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByNumber(context.Background(), tenantID, "INV-404")

		require.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
