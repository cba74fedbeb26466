package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// stageFunc is one computation stage bound to a shared calc state.
type stageFunc func(ctx context.Context, st *calcState)

// runSingleStage prices one isolated stage for a vendor and period. The
// individual fee endpoints use these to preview a stage without the rest of
// the invoice.
func (s *CalculationService) runSingleStage(ctx context.Context, vendorID string, from, to time.Time, stage stageFunc) (*CalculationResult, error) {
	start := time.Now()

	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	st := &calcState{
		vendor:     vendor,
		from:       from,
		to:         to,
		zoneCounts: make(map[string]int64),
	}
	stage(ctx, st)

	total := decimal.Zero
	for _, it := range st.items {
		total = total.Add(it.Amount)
	}

	return &CalculationResult{
		VendorID:    vendor.VendorID,
		From:        from,
		To:          to,
		Items:       st.items,
		TotalAmount: total,
		ZoneCounts:  st.zoneCounts,
		Warnings:    st.warnings,
		Duration:    time.Since(start),
	}, nil
}

// CourierFee prices only the courier zone stage. ZoneCounts carries the
// per-zone classification of every matched parcel.
func (s *CalculationService) CourierFee(ctx context.Context, vendorID string, from, to time.Time) (*CalculationResult, error) {
	return s.runSingleStage(ctx, vendorID, from, to, s.courierFeeStage)
}

// InboundFee prices only the inbound inspection stage.
func (s *CalculationService) InboundFee(ctx context.Context, vendorID string, from, to time.Time) (*CalculationResult, error) {
	return s.runSingleStage(ctx, vendorID, from, to, s.inboundFeeStage)
}

// RemoteFee prices only the remote-area surcharge stage.
func (s *CalculationService) RemoteFee(ctx context.Context, vendorID string, from, to time.Time) (*CalculationResult, error) {
	return s.runSingleStage(ctx, vendorID, from, to, s.remoteFeeStage)
}

// ShippingStatsCount reports how many shipping-stat rows fall in the period
// for the vendor, after tracking-number dedup. Upload checks use it to see
// whether a vendor's outbound data arrived.
func (s *CalculationService) ShippingStatsCount(ctx context.Context, vendorID string, from, to time.Time) (int64, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		return 0, err
	}
	names, err := s.matchNames(ctx, vendor, billing.SourceShippingStats)
	if err != nil {
		return 0, err
	}
	rows, err := s.sourceRepo.ShippingStats(ctx, names, from, to)
	if err != nil {
		return 0, err
	}
	return int64(len(billing.DedupShippingStats(rows))), nil
}
