package persistence

import (
	"context"
	"errors"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVendorRepository implements billing.VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByID finds a vendor by its ID
func (r *GormVendorRepository) FindByID(ctx context.Context, vendorID string) (*billing.Vendor, error) {
	var vendor billing.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "vendor_id = ?", vendorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrVendorNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// FindAll finds all vendors, optionally limited to active ones
func (r *GormVendorRepository) FindAll(ctx context.Context, activeOnly bool) ([]billing.Vendor, error) {
	query := r.db.WithContext(ctx).Order("vendor_id")
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var vendors []billing.Vendor
	if err := query.Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

// Save creates or updates a vendor
func (r *GormVendorRepository) Save(ctx context.Context, vendor *billing.Vendor) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vendor_id"}},
			UpdateAll: true,
		}).
		Create(vendor).Error
}

// Delete removes a vendor and all of its aliases
func (r *GormVendorRepository) Delete(ctx context.Context, vendorID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("vendor_id = ?", vendorID).Delete(&billing.Alias{}).Error; err != nil {
			return err
		}
		return tx.Where("vendor_id = ?", vendorID).Delete(&billing.Vendor{}).Error
	})
}
