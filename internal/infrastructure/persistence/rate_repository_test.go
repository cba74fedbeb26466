package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormRateRepository_OutboundBasicPrice(t *testing.T) {
	t.Run("returns the band price", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormRateRepository(gormDB)

		rows := sqlmock.NewRows([]string{"sku_group", "unit_price"}).
			AddRow("≤100", "900")

		mock.ExpectQuery(`SELECT \* FROM "out_basic_rates" WHERE sku_group = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("≤100", 1).
			WillReturnRows(rows)

		price, err := repo.OutboundBasicPrice(context.Background(), billing.SKUGroupUpTo100)

		assert.NoError(t, err)
		assert.Equal(t, "900", price.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports missing band as rate not found", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormRateRepository(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "out_basic_rates" WHERE sku_group = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(">2,000", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.OutboundBasicPrice(context.Background(), billing.SKUGroupOver2000)

		assert.Equal(t, shared.ErrRateNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormRateRepository_OutboundExtraPrice(t *testing.T) {
	t.Run("reports absence through ok=false", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormRateRepository(gormDB)

		mock.ExpectQuery(`SELECT \* FROM "out_extra_rates" WHERE item = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("합포장", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, ok, err := repo.OutboundExtraPrice(context.Background(), billing.ExtraItemCombinedPack)

		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns the item price", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormRateRepository(gormDB)

		rows := sqlmock.NewRows([]string{"item", "unit_price"}).
			AddRow("입고검수", "100")

		mock.ExpectQuery(`SELECT \* FROM "out_extra_rates" WHERE item = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("입고검수", 1).
			WillReturnRows(rows)

		price, ok, err := repo.OutboundExtraPrice(context.Background(), billing.ExtraItemInboundInspection)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "100", price.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormRateRepository_ShippingZoneRates(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormRateRepository(gormDB)

	rows := sqlmock.NewRows([]string{"rate_plan", "zone", "len_min_cm", "len_max_cm", "price"}).
		AddRow("표준", "극소", 0, 51, "2500").
		AddRow("표준", "소", 51, 71, "3000")

	mock.ExpectQuery(`SELECT \* FROM "shipping_zone_rates" WHERE rate_plan = \$1 ORDER BY len_min_cm`).
		WithArgs("표준").
		WillReturnRows(rows)

	rates, err := repo.ShippingZoneRates(context.Background(), billing.RatePlanStandard)

	assert.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "극소", rates[0].Zone)
	assert.Equal(t, 51, rates[0].LenMaxCm)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRateRepository_StorageFees(t *testing.T) {
	gormDB, mock, mockDB := newMockGorm(t)
	defer mockDB.Close()
	repo := NewGormRateRepository(gormDB)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"storage_id", "vendor_id", "item", "qty", "unit_price", "amount", "period", "active"}).
		AddRow(1, "V1", "보관비 1월", 1, "50000", "50000", "2024-01", true)

	mock.ExpectQuery(`SELECT \* FROM "storage_fees" WHERE \(vendor_id = \$1 AND active = \$2\) AND \(period >= \$3 AND period <= \$4\) ORDER BY storage_id`).
		WithArgs("V1", true, "2024-01", "2024-02").
		WillReturnRows(rows)

	fees, err := repo.StorageFees(context.Background(), "V1", from, to)

	assert.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, "2024-01", fees[0].Period)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRateRepository_ReplaceShippingZoneRates(t *testing.T) {
	t.Run("deletes old bands and inserts new ones atomically", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormRateRepository(gormDB)

		rates := []billing.ShippingZoneRate{
			{RatePlan: billing.RatePlanA, Zone: "극소", LenMinCm: 0, LenMaxCm: 51},
			{RatePlan: billing.RatePlanA, Zone: "소", LenMinCm: 51, LenMaxCm: 71},
		}

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "shipping_zone_rates" WHERE rate_plan = \$1`).
			WithArgs("A").
			WillReturnResult(sqlmock.NewResult(0, 6))
		mock.ExpectExec(`INSERT INTO "shipping_zone_rates"`).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err := repo.ReplaceShippingZoneRates(context.Background(), billing.RatePlanA, rates)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty replacement clears the plan", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGorm(t)
		defer mockDB.Close()
		repo := NewGormRateRepository(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "shipping_zone_rates" WHERE rate_plan = \$1`).
			WithArgs("A").
			WillReturnResult(sqlmock.NewResult(0, 6))
		mock.ExpectCommit()

		err := repo.ReplaceShippingZoneRates(context.Background(), billing.RatePlanA, nil)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
