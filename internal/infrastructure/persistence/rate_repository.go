package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRateRepository implements billing.RateRepository using GORM
type GormRateRepository struct {
	db *gorm.DB
}

// NewGormRateRepository creates a new GormRateRepository
func NewGormRateRepository(db *gorm.DB) *GormRateRepository {
	return &GormRateRepository{db: db}
}

// OutboundBasicPrice returns the basic outbound unit price for the band
func (r *GormRateRepository) OutboundBasicPrice(ctx context.Context, group billing.SKUGroup) (decimal.Decimal, error) {
	var rate billing.OutboundBasicRate
	if err := r.db.WithContext(ctx).First(&rate, "sku_group = ?", group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, shared.ErrRateNotFound
		}
		return decimal.Zero, err
	}
	return rate.UnitPrice, nil
}

// OutboundExtraPrice returns the unit price for an ad-hoc task item.
// Absence is reported through ok=false, not an error.
func (r *GormRateRepository) OutboundExtraPrice(ctx context.Context, item string) (decimal.Decimal, bool, error) {
	var rate billing.OutboundExtraRate
	if err := r.db.WithContext(ctx).First(&rate, "item = ?", item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	return rate.UnitPrice, true, nil
}

// ShippingZoneRates returns all bands of one rate plan in band order
func (r *GormRateRepository) ShippingZoneRates(ctx context.Context, plan billing.RatePlan) ([]billing.ShippingZoneRate, error) {
	var rates []billing.ShippingZoneRate
	err := r.db.WithContext(ctx).
		Where("rate_plan = ?", plan).
		Order("len_min_cm").
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

// MaterialRates returns the packaging material price list
func (r *GormRateRepository) MaterialRates(ctx context.Context) ([]billing.MaterialRate, error) {
	var rates []billing.MaterialRate
	if err := r.db.WithContext(ctx).Order("item").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// VendorCharges returns ad-hoc/recurring charges for the vendor
func (r *GormRateRepository) VendorCharges(ctx context.Context, vendorID string, activeOnly bool) ([]billing.VendorCharge, error) {
	query := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID)
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var charges []billing.VendorCharge
	if err := query.Order("charge_id").Find(&charges).Error; err != nil {
		return nil, err
	}
	return charges, nil
}

// StorageFees returns active storage fees for the vendor whose period
// (YYYY-MM) falls inside the date range. YYYY-MM compares correctly as text.
func (r *GormRateRepository) StorageFees(ctx context.Context, vendorID string, from, to time.Time) ([]billing.StorageFee, error) {
	var fees []billing.StorageFee
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND active = ?", vendorID, true).
		Where("period >= ? AND period <= ?", from.Format("2006-01"), to.Format("2006-01")).
		Order("storage_id").
		Find(&fees).Error
	if err != nil {
		return nil, err
	}
	return fees, nil
}

// OutboundBasicRates returns the full basic outbound rate table
func (r *GormRateRepository) OutboundBasicRates(ctx context.Context) ([]billing.OutboundBasicRate, error) {
	var rates []billing.OutboundBasicRate
	if err := r.db.WithContext(ctx).Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// OutboundExtraRates returns the full ad-hoc task rate table
func (r *GormRateRepository) OutboundExtraRates(ctx context.Context) ([]billing.OutboundExtraRate, error) {
	var rates []billing.OutboundExtraRate
	if err := r.db.WithContext(ctx).Order("item").Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// SaveOutboundBasicRate creates or updates one basic outbound band price
func (r *GormRateRepository) SaveOutboundBasicRate(ctx context.Context, rate *billing.OutboundBasicRate) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku_group"}},
			UpdateAll: true,
		}).
		Create(rate).Error
}

// SaveOutboundExtraRate creates or updates one ad-hoc task price
func (r *GormRateRepository) SaveOutboundExtraRate(ctx context.Context, rate *billing.OutboundExtraRate) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item"}},
			UpdateAll: true,
		}).
		Create(rate).Error
}

// ReplaceShippingZoneRates swaps the whole band set of a plan atomically
func (r *GormRateRepository) ReplaceShippingZoneRates(ctx context.Context, plan billing.RatePlan, rates []billing.ShippingZoneRate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("rate_plan = ?", plan).Delete(&billing.ShippingZoneRate{}).Error; err != nil {
			return err
		}
		if len(rates) == 0 {
			return nil
		}
		return tx.Create(&rates).Error
	})
}

// SaveMaterialRate creates or updates one packaging material price
func (r *GormRateRepository) SaveMaterialRate(ctx context.Context, rate *billing.MaterialRate) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item"}},
			UpdateAll: true,
		}).
		Create(rate).Error
}

// SaveVendorCharge creates or updates a vendor charge
func (r *GormRateRepository) SaveVendorCharge(ctx context.Context, charge *billing.VendorCharge) error {
	return r.db.WithContext(ctx).Save(charge).Error
}

// DeleteVendorCharge removes a vendor charge
func (r *GormRateRepository) DeleteVendorCharge(ctx context.Context, chargeID uint64) error {
	return r.db.WithContext(ctx).
		Where("charge_id = ?", chargeID).
		Delete(&billing.VendorCharge{}).Error
}

// SaveStorageFee creates or updates a storage fee
func (r *GormRateRepository) SaveStorageFee(ctx context.Context, fee *billing.StorageFee) error {
	return r.db.WithContext(ctx).Save(fee).Error
}

// DeleteStorageFee removes a storage fee
func (r *GormRateRepository) DeleteStorageFee(ctx context.Context, storageID uint64) error {
	return r.db.WithContext(ctx).
		Where("storage_id = ?", storageID).
		Delete(&billing.StorageFee{}).Error
}
