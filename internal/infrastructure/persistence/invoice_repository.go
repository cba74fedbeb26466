package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID loads an invoice with its items in position order
func (r *GormInvoiceRepository) FindByID(ctx context.Context, invoiceID uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		First(&invoice, "invoice_id = ?", invoiceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByVendorPeriod finds the invoice for an exact vendor+period.
// Returns nil without error when none exists.
func (r *GormInvoiceRepository) FindByVendorPeriod(ctx context.Context, vendorID string, from, to time.Time) (*billing.Invoice, error) {
	var invoice billing.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Where("vendor_id = ? AND period_from = ? AND period_to = ?", vendorID, from, to).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAll lists invoices matching the filter, newest first
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		})

	if filter.Period != "" {
		query = query.Where("to_char(period_from, 'YYYY-MM') = ?", filter.Period)
	}
	if filter.VendorID != "" {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var invoices []billing.Invoice
	err := query.Order("period_from DESC, vendor_id").Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// Periods returns the distinct YYYY-MM values of stored invoices, newest first
func (r *GormInvoiceRepository) Periods(ctx context.Context) ([]string, error) {
	var periods []string
	err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Distinct("to_char(period_from, 'YYYY-MM')").
		Order("to_char(period_from, 'YYYY-MM') DESC").
		Pluck("to_char(period_from, 'YYYY-MM')", &periods).Error
	if err != nil {
		return nil, err
	}
	return periods, nil
}

// Save persists the invoice header and items atomically. Stale items from a
// previous version of the invoice are removed in the same transaction.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoice.InvoiceID).Delete(&billing.InvoiceItem{}).Error; err != nil {
			return err
		}
		err := tx.Omit("Items").
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "invoice_id"}},
				UpdateAll: true,
			}).
			Create(invoice).Error
		if err != nil {
			return err
		}
		if len(invoice.Items) == 0 {
			return nil
		}
		return tx.Create(&invoice.Items).Error
	})
}

// Delete removes the invoice and its items
func (r *GormInvoiceRepository) Delete(ctx context.Context, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", invoiceID).Delete(&billing.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Where("invoice_id = ?", invoiceID).Delete(&billing.Invoice{}).Error
	})
}

// DeleteBatch removes several invoices, returning the number removed
func (r *GormInvoiceRepository) DeleteBatch(ctx context.Context, invoiceIDs []uuid.UUID) (int64, error) {
	if len(invoiceIDs) == 0 {
		return 0, nil
	}

	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id IN ?", invoiceIDs).Delete(&billing.InvoiceItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("invoice_id IN ?", invoiceIDs).Delete(&billing.Invoice{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
