package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	keyOutboundBasic = "out_basic"
	keyOutboundExtra = "out_extra"
	keyMaterials     = "materials"
	keyZonesPrefix   = "zones:"
)

// CachedRateRepository decorates a billing.RateRepository with a snapshot
// cache over the four shared rate tables. Per-vendor charges and storage
// fees always hit storage; they are edited too often to cache profitably.
// Every write through this repository invalidates the whole snapshot.
type CachedRateRepository struct {
	inner  billing.RateRepository
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedRateRepository wraps a rate repository with the given store
func NewCachedRateRepository(inner billing.RateRepository, store Store, ttl time.Duration, logger *zap.Logger) *CachedRateRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRateRepository{
		inner:  inner,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// cachedLoad fills dest from cache, falling back to loadFn on a miss or a
// cache failure. Cache trouble is logged and never surfaces to the caller.
func cachedLoad[T any](ctx context.Context, r *CachedRateRepository, key string, loadFn func(context.Context) ([]T, error)) ([]T, error) {
	data, hit, err := r.store.Get(ctx, key)
	if err != nil {
		r.logger.Warn("Rate cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		var cached []T
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		r.logger.Warn("Rate cache entry corrupted", zap.String("key", key))
	}

	loaded, err := loadFn(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(loaded); err == nil {
		if err := r.store.Set(ctx, key, data, r.ttl); err != nil {
			r.logger.Warn("Rate cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return loaded, nil
}

// OutboundBasicPrice resolves the band price from the cached basic table
func (r *CachedRateRepository) OutboundBasicPrice(ctx context.Context, group billing.SKUGroup) (decimal.Decimal, error) {
	rates, err := r.OutboundBasicRates(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	for _, rate := range rates {
		if rate.SKUGroup == group {
			return rate.UnitPrice, nil
		}
	}
	return decimal.Zero, shared.ErrRateNotFound
}

// OutboundExtraPrice resolves the task price from the cached extra table
func (r *CachedRateRepository) OutboundExtraPrice(ctx context.Context, item string) (decimal.Decimal, bool, error) {
	rates, err := r.OutboundExtraRates(ctx)
	if err != nil {
		return decimal.Zero, false, err
	}
	for _, rate := range rates {
		if rate.Item == item {
			return rate.UnitPrice, true, nil
		}
	}
	return decimal.Zero, false, nil
}

// ShippingZoneRates returns the cached band set of one plan
func (r *CachedRateRepository) ShippingZoneRates(ctx context.Context, plan billing.RatePlan) ([]billing.ShippingZoneRate, error) {
	return cachedLoad(ctx, r, keyZonesPrefix+string(plan), func(ctx context.Context) ([]billing.ShippingZoneRate, error) {
		return r.inner.ShippingZoneRates(ctx, plan)
	})
}

// MaterialRates returns the cached packaging material price list
func (r *CachedRateRepository) MaterialRates(ctx context.Context) ([]billing.MaterialRate, error) {
	return cachedLoad(ctx, r, keyMaterials, r.inner.MaterialRates)
}

// VendorCharges always hits storage
func (r *CachedRateRepository) VendorCharges(ctx context.Context, vendorID string, activeOnly bool) ([]billing.VendorCharge, error) {
	return r.inner.VendorCharges(ctx, vendorID, activeOnly)
}

// StorageFees always hits storage
func (r *CachedRateRepository) StorageFees(ctx context.Context, vendorID string, from, to time.Time) ([]billing.StorageFee, error) {
	return r.inner.StorageFees(ctx, vendorID, from, to)
}

// OutboundBasicRates returns the cached basic outbound table
func (r *CachedRateRepository) OutboundBasicRates(ctx context.Context) ([]billing.OutboundBasicRate, error) {
	return cachedLoad(ctx, r, keyOutboundBasic, r.inner.OutboundBasicRates)
}

// OutboundExtraRates returns the cached ad-hoc task table
func (r *CachedRateRepository) OutboundExtraRates(ctx context.Context) ([]billing.OutboundExtraRate, error) {
	return cachedLoad(ctx, r, keyOutboundExtra, r.inner.OutboundExtraRates)
}

// SaveOutboundBasicRate writes through and invalidates the snapshot
func (r *CachedRateRepository) SaveOutboundBasicRate(ctx context.Context, rate *billing.OutboundBasicRate) error {
	if err := r.inner.SaveOutboundBasicRate(ctx, rate); err != nil {
		return err
	}
	return r.Invalidate(ctx)
}

// SaveOutboundExtraRate writes through and invalidates the snapshot
func (r *CachedRateRepository) SaveOutboundExtraRate(ctx context.Context, rate *billing.OutboundExtraRate) error {
	if err := r.inner.SaveOutboundExtraRate(ctx, rate); err != nil {
		return err
	}
	return r.Invalidate(ctx)
}

// ReplaceShippingZoneRates writes through and invalidates the snapshot
func (r *CachedRateRepository) ReplaceShippingZoneRates(ctx context.Context, plan billing.RatePlan, rates []billing.ShippingZoneRate) error {
	if err := r.inner.ReplaceShippingZoneRates(ctx, plan, rates); err != nil {
		return err
	}
	return r.Invalidate(ctx)
}

// SaveMaterialRate writes through and invalidates the snapshot
func (r *CachedRateRepository) SaveMaterialRate(ctx context.Context, rate *billing.MaterialRate) error {
	if err := r.inner.SaveMaterialRate(ctx, rate); err != nil {
		return err
	}
	return r.Invalidate(ctx)
}

// SaveVendorCharge passes through; vendor charges are not cached
func (r *CachedRateRepository) SaveVendorCharge(ctx context.Context, charge *billing.VendorCharge) error {
	return r.inner.SaveVendorCharge(ctx, charge)
}

// DeleteVendorCharge passes through; vendor charges are not cached
func (r *CachedRateRepository) DeleteVendorCharge(ctx context.Context, chargeID uint64) error {
	return r.inner.DeleteVendorCharge(ctx, chargeID)
}

// SaveStorageFee passes through; storage fees are not cached
func (r *CachedRateRepository) SaveStorageFee(ctx context.Context, fee *billing.StorageFee) error {
	return r.inner.SaveStorageFee(ctx, fee)
}

// DeleteStorageFee passes through; storage fees are not cached
func (r *CachedRateRepository) DeleteStorageFee(ctx context.Context, storageID uint64) error {
	return r.inner.DeleteStorageFee(ctx, storageID)
}

// Invalidate drops the whole snapshot
func (r *CachedRateRepository) Invalidate(ctx context.Context) error {
	return r.store.DeleteAll(ctx)
}

// Close releases the underlying store
func (r *CachedRateRepository) Close() error {
	return r.store.Close()
}

var _ billing.RateRepository = (*CachedRateRepository)(nil)
