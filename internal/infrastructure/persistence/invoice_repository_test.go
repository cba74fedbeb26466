package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormInvoiceRepository_FindByID(t *testing.T) {
	t.Run("loads invoice with items in position order", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoiceID := uuid.New()
		itemID := uuid.New()
		from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		invoiceRows := sqlmock.NewRows([]string{"invoice_id", "vendor_id", "period_from", "period_to", "total_amount", "status"}).
			AddRow(invoiceID, "V1", from, from.AddDate(0, 1, -1), "9000", "미확정")
		itemRows := sqlmock.NewRows([]string{"id", "invoice_id", "position", "label", "quantity", "unit_price", "amount", "remark"}).
			AddRow(itemID, invoiceID, 0, "기본 출고비", 10, "900", "9000", "")

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE invoice_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(invoiceID, 1).
			WillReturnRows(invoiceRows)
		mock.ExpectQuery(`SELECT \* FROM "invoice_items" WHERE .*"invoice_items"\."invoice_id" = \$1.* ORDER BY position`).
			WithArgs(invoiceID).
			WillReturnRows(itemRows)

		invoice, err := repo.FindByID(context.Background(), invoiceID)

		assert.NoError(t, err)
		require.NotNil(t, invoice)
		require.Len(t, invoice.Items, 1)
		assert.Equal(t, "기본 출고비", invoice.Items[0].Label)
		assert.Equal(t, billing.InvoiceStatusUnconfirmed, invoice.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing invoice fails with not found", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		invoiceID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE invoice_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(invoiceID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		invoice, err := repo.FindByID(context.Background(), invoiceID)

		assert.Nil(t, invoice)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_FindByVendorPeriod(t *testing.T) {
	t.Run("absence is nil without error", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE vendor_id = \$1 AND period_from = \$2 AND period_to = \$3 ORDER BY .* LIMIT .*`).
			WithArgs("V1", from, to, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		invoice, err := repo.FindByVendorPeriod(context.Background(), "V1", from, to)

		assert.NoError(t, err)
		assert.Nil(t, invoice)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_Periods(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormInvoiceRepository(gormDB)

	rows := sqlmock.NewRows([]string{"to_char"}).
		AddRow("2024-02").
		AddRow("2024-01")

	mock.ExpectQuery(`SELECT DISTINCT to_char\(period_from, 'YYYY-MM'\) FROM "invoices" ORDER BY to_char\(period_from, 'YYYY-MM'\) DESC`).
		WillReturnRows(rows)

	periods, err := repo.Periods(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []string{"2024-02", "2024-01"}, periods)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInvoiceRepository_Save(t *testing.T) {
	t.Run("replaces items and header in one transaction", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		items := []billing.InvoiceItem{
			billing.NewInvoiceItem("기본 출고비", 10, decimal.NewFromInt(900)),
		}
		invoice, err := billing.NewInvoice("V1", from, from.AddDate(0, 1, -1), items)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "invoice_items" WHERE invoice_id = \$1`).
			WithArgs(invoice.InvoiceID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO "invoices"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "invoice_items"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.Save(context.Background(), invoice)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_DeleteBatch(t *testing.T) {
	t.Run("returns the number of removed invoices", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		ids := []uuid.UUID{uuid.New(), uuid.New()}

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "invoice_items" WHERE invoice_id IN \(\$1,\$2\)`).
			WithArgs(ids[0], ids[1]).
			WillReturnResult(sqlmock.NewResult(0, 7))
		mock.ExpectExec(`DELETE FROM "invoices" WHERE invoice_id IN \(\$1,\$2\)`).
			WithArgs(ids[0], ids[1]).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		removed, err := repo.DeleteBatch(context.Background(), ids)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), removed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty id list is a no-op", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(gormDB)

		removed, err := repo.DeleteBatch(context.Background(), nil)

		assert.NoError(t, err)
		assert.Zero(t, removed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
