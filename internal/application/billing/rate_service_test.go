package billing

import (
	"context"
	"testing"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	calls int
}

func (r *recordingInvalidator) Invalidate(ctx context.Context) error {
	r.calls++
	return nil
}

func TestRateService_ReplaceShippingZoneRates(t *testing.T) {
	t.Run("valid table is written and cache dropped", func(t *testing.T) {
		rates := new(MockRateRepository)
		inv := &recordingInvalidator{}
		svc := NewRateService(rates, nil)
		svc.SetCacheInvalidator(inv)

		bands := []billing.ShippingZoneRate{
			{Zone: "소", LenMinCm: 51, LenMaxCm: 71, Price: decimal.NewFromInt(2500)},
			{Zone: "극소", LenMinCm: 0, LenMaxCm: 51, Price: decimal.NewFromInt(2100)},
		}
		rates.On("ReplaceShippingZoneRates", mock.Anything, billing.RatePlanStandard, mock.Anything).Return(nil)

		err := svc.ReplaceShippingZoneRates(context.Background(), billing.RatePlanStandard, bands)
		require.NoError(t, err)
		assert.Equal(t, 1, inv.calls)

		// The written bands are sorted and stamped with the plan.
		written := rates.Calls[0].Arguments.Get(2).([]billing.ShippingZoneRate)
		require.Len(t, written, 2)
		assert.Equal(t, "극소", written[0].Zone)
		assert.Equal(t, billing.RatePlanStandard, written[0].RatePlan)
	})

	t.Run("overlapping bands are rejected before writing", func(t *testing.T) {
		rates := new(MockRateRepository)
		inv := &recordingInvalidator{}
		svc := NewRateService(rates, nil)
		svc.SetCacheInvalidator(inv)

		bands := []billing.ShippingZoneRate{
			{Zone: "극소", LenMinCm: 0, LenMaxCm: 60, Price: decimal.NewFromInt(2100)},
			{Zone: "소", LenMinCm: 51, LenMaxCm: 71, Price: decimal.NewFromInt(2500)},
		}

		err := svc.ReplaceShippingZoneRates(context.Background(), billing.RatePlanStandard, bands)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ZONE_OVERLAP", domainErr.Code)

		rates.AssertNotCalled(t, "ReplaceShippingZoneRates", mock.Anything, mock.Anything, mock.Anything)
		assert.Zero(t, inv.calls)
	})
}

func TestRateService_SaveOutboundBasicRate(t *testing.T) {
	rates := new(MockRateRepository)
	svc := NewRateService(rates, nil)

	t.Run("unknown SKU group is rejected", func(t *testing.T) {
		err := svc.SaveOutboundBasicRate(context.Background(), &billing.OutboundBasicRate{
			SKUGroup:  billing.SKUGroup("≤9,999"),
			UnitPrice: decimal.NewFromInt(100),
		})
		require.Error(t, err)
		rates.AssertNotCalled(t, "SaveOutboundBasicRate", mock.Anything, mock.Anything)
	})

	t.Run("valid band is saved", func(t *testing.T) {
		rate := &billing.OutboundBasicRate{SKUGroup: billing.SKUGroupUpTo500, UnitPrice: decimal.NewFromInt(1000)}
		rates.On("SaveOutboundBasicRate", mock.Anything, rate).Return(nil)

		require.NoError(t, svc.SaveOutboundBasicRate(context.Background(), rate))
		rates.AssertExpectations(t)
	})
}

func TestRateService_ListShippingZoneRates(t *testing.T) {
	rates := new(MockRateRepository)
	svc := NewRateService(rates, nil)

	rates.On("ShippingZoneRates", mock.Anything, billing.RatePlanA).Return([]billing.ShippingZoneRate{
		{RatePlan: billing.RatePlanA, Zone: "소", LenMinCm: 51, LenMaxCm: 71, Price: decimal.NewFromInt(2500)},
		{RatePlan: billing.RatePlanA, Zone: "극소", LenMinCm: 0, LenMaxCm: 51, Price: decimal.NewFromInt(2100)},
	}, nil)

	bands, err := svc.ListShippingZoneRates(context.Background(), billing.RatePlanA)
	require.NoError(t, err)

	require.Len(t, bands, 2)
	assert.Equal(t, "극소", bands[0].Zone)
	assert.Equal(t, "소", bands[1].Zone)
}
