package persistence

import (
	"context"
	"errors"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GormAliasRepository implements billing.AliasRepository using GORM
type GormAliasRepository struct {
	db *gorm.DB
}

// NewGormAliasRepository creates a new GormAliasRepository
func NewGormAliasRepository(db *gorm.DB) *GormAliasRepository {
	return &GormAliasRepository{db: db}
}

// FindByVendor returns every alias registered for the vendor, optionally
// limited to one source type
func (r *GormAliasRepository) FindByVendor(ctx context.Context, vendorID string, sourceType billing.SourceType) ([]billing.Alias, error) {
	query := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID)
	if sourceType != "" {
		query = query.Where("source_type = ?", sourceType)
	}

	var aliases []billing.Alias
	if err := query.Order("alias").Find(&aliases).Error; err != nil {
		return nil, err
	}
	return aliases, nil
}

// FindOwners returns every vendor currently owning the alias under the
// source type
func (r *GormAliasRepository) FindOwners(ctx context.Context, sourceType billing.SourceType, alias string) ([]billing.Alias, error) {
	var owners []billing.Alias
	err := r.db.WithContext(ctx).
		Where("source_type = ? AND alias = ?", sourceType, billing.NormalizeAlias(alias)).
		Find(&owners).Error
	if err != nil {
		return nil, err
	}
	return owners, nil
}

// MappedAliases returns the distinct alias strings registered under the
// source type, excluding the given vendor when excludeVendorID is set
func (r *GormAliasRepository) MappedAliases(ctx context.Context, sourceType billing.SourceType, excludeVendorID string) ([]string, error) {
	query := r.db.WithContext(ctx).
		Model(&billing.Alias{}).
		Where("source_type = ?", sourceType)
	if excludeVendorID != "" {
		query = query.Where("vendor_id <> ?", excludeVendorID)
	}

	var aliases []string
	if err := query.Distinct("alias").Order("alias").Pluck("alias", &aliases).Error; err != nil {
		return nil, err
	}
	return aliases, nil
}

// Save inserts an alias assignment. The (alias, source_type) primary key
// enforces single ownership; an insert that collides with another vendor's
// assignment fails with shared.ErrAliasConflict.
func (r *GormAliasRepository) Save(ctx context.Context, alias *billing.Alias) error {
	err := r.db.WithContext(ctx).Create(alias).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return err
	}

	owners, lookupErr := r.FindOwners(ctx, alias.SourceType, alias.Alias)
	if lookupErr != nil {
		return lookupErr
	}
	for _, owner := range owners {
		if owner.VendorID == alias.VendorID {
			// Already assigned to the same vendor, nothing to do.
			return nil
		}
	}
	return shared.ErrAliasConflict
}

// Delete removes one alias assignment
func (r *GormAliasRepository) Delete(ctx context.Context, vendorID string, sourceType billing.SourceType, alias string) error {
	return r.db.WithContext(ctx).
		Where("vendor_id = ? AND source_type = ? AND alias = ?", vendorID, sourceType, billing.NormalizeAlias(alias)).
		Delete(&billing.Alias{}).Error
}

// DeleteByVendor removes every alias of a vendor
func (r *GormAliasRepository) DeleteByVendor(ctx context.Context, vendorID string) error {
	return r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Delete(&billing.Alias{}).Error
}

// isUniqueViolation reports whether the error is a unique constraint
// violation (PostgreSQL error code 23505).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
