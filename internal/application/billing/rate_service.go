package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RateCacheInvalidator drops cached rate-table snapshots after admin writes.
type RateCacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// RateService handles admin maintenance of the rate tables, vendor charges
// and storage fees.
type RateService struct {
	rateRepo    billing.RateRepository
	invalidator RateCacheInvalidator
	logger      *zap.Logger
}

// NewRateService creates a new RateService
func NewRateService(rateRepo billing.RateRepository, logger *zap.Logger) *RateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateService{rateRepo: rateRepo, logger: logger}
}

// SetCacheInvalidator wires the rate cache so writes drop stale snapshots.
func (s *RateService) SetCacheInvalidator(inv RateCacheInvalidator) {
	s.invalidator = inv
}

func (s *RateService) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("rate cache invalidation failed", zap.Error(err))
	}
}

// ListOutboundBasicRates returns the SKU band price list.
func (s *RateService) ListOutboundBasicRates(ctx context.Context) ([]billing.OutboundBasicRate, error) {
	return s.rateRepo.OutboundBasicRates(ctx)
}

// SaveOutboundBasicRate upserts one SKU band price.
func (s *RateService) SaveOutboundBasicRate(ctx context.Context, rate *billing.OutboundBasicRate) error {
	if !rate.SKUGroup.IsValid() {
		return shared.NewDomainError("INVALID_SKU_GROUP", "Unknown SKU group: "+string(rate.SKUGroup))
	}
	if err := s.rateRepo.SaveOutboundBasicRate(ctx, rate); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ListOutboundExtraRates returns the ad-hoc task price list.
func (s *RateService) ListOutboundExtraRates(ctx context.Context) ([]billing.OutboundExtraRate, error) {
	return s.rateRepo.OutboundExtraRates(ctx)
}

// SaveOutboundExtraRate upserts one ad-hoc task price.
func (s *RateService) SaveOutboundExtraRate(ctx context.Context, rate *billing.OutboundExtraRate) error {
	if err := s.rateRepo.SaveOutboundExtraRate(ctx, rate); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ListShippingZoneRates returns the zone bands of one rate plan in ascending
// length order.
func (s *RateService) ListShippingZoneRates(ctx context.Context, plan billing.RatePlan) ([]billing.ShippingZoneRate, error) {
	rates, err := s.rateRepo.ShippingZoneRates(ctx, plan)
	if err != nil {
		return nil, err
	}
	table, err := billing.NewZoneTable(plan, rates)
	if err != nil {
		// Stored bands that no longer form a valid table are still listed;
		// the admin needs to see them to fix the overlap.
		return rates, nil
	}
	return table.Bands(), nil
}

// ReplaceShippingZoneRates swaps a rate plan's whole zone table. Overlapping
// or inverted bands are rejected before anything is written.
func (s *RateService) ReplaceShippingZoneRates(ctx context.Context, plan billing.RatePlan, rates []billing.ShippingZoneRate) error {
	for i := range rates {
		rates[i].RatePlan = plan
	}
	table, err := billing.NewZoneTable(plan, rates)
	if err != nil {
		return err
	}
	if err := s.rateRepo.ReplaceShippingZoneRates(ctx, plan, table.Bands()); err != nil {
		return err
	}
	s.invalidate(ctx)

	s.logger.Info("shipping zone table replaced",
		zap.String("rate_plan", string(plan)),
		zap.Int("bands", len(table.Bands())))
	return nil
}

// ListMaterialRates returns the packaging material price list.
func (s *RateService) ListMaterialRates(ctx context.Context) ([]billing.MaterialRate, error) {
	return s.rateRepo.MaterialRates(ctx)
}

// SaveMaterialRate upserts one packaging material price.
func (s *RateService) SaveMaterialRate(ctx context.Context, rate *billing.MaterialRate) error {
	if err := s.rateRepo.SaveMaterialRate(ctx, rate); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ListVendorCharges returns a vendor's recurring and ad-hoc charges.
func (s *RateService) ListVendorCharges(ctx context.Context, vendorID string, activeOnly bool) ([]billing.VendorCharge, error) {
	return s.rateRepo.VendorCharges(ctx, vendorID, activeOnly)
}

// SaveVendorCharge upserts one vendor charge.
func (s *RateService) SaveVendorCharge(ctx context.Context, charge *billing.VendorCharge) error {
	return s.rateRepo.SaveVendorCharge(ctx, charge)
}

// DeleteVendorCharge removes one vendor charge.
func (s *RateService) DeleteVendorCharge(ctx context.Context, chargeID uint64) error {
	return s.rateRepo.DeleteVendorCharge(ctx, chargeID)
}

// ListStorageFees returns a vendor's storage fees whose period falls inside
// the date range.
func (s *RateService) ListStorageFees(ctx context.Context, vendorID string, from, to time.Time) ([]billing.StorageFee, error) {
	return s.rateRepo.StorageFees(ctx, vendorID, from, to)
}

// SaveStorageFee upserts one storage fee row.
func (s *RateService) SaveStorageFee(ctx context.Context, fee *billing.StorageFee) error {
	return s.rateRepo.SaveStorageFee(ctx, fee)
}

// DeleteStorageFee removes one storage fee row.
func (s *RateService) DeleteStorageFee(ctx context.Context, storageID uint64) error {
	return s.rateRepo.DeleteStorageFee(ctx, storageID)
}
