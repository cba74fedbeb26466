package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVendor(t *testing.T) {
	t.Run("creates vendor with valid input", func(t *testing.T) {
		vendor, err := NewVendor("V001", "한빛상사", RatePlanA, SKUGroupUpTo100)
		require.NoError(t, err)
		require.NotNil(t, vendor)

		assert.Equal(t, "V001", vendor.VendorID)
		assert.Equal(t, "한빛상사", vendor.Name)
		assert.Equal(t, RatePlanA, vendor.RatePlan)
		assert.Equal(t, SKUGroupUpTo100, vendor.SKUGroup)
		assert.True(t, vendor.Active)
		assert.False(t, vendor.Flags.Barcode)
	})

	t.Run("trims vendor id and name", func(t *testing.T) {
		vendor, err := NewVendor("  V002  ", "  상사  ", RatePlanStandard, SKUGroupUpTo300)
		require.NoError(t, err)
		assert.Equal(t, "V002", vendor.VendorID)
		assert.Equal(t, "상사", vendor.Name)
	})

	t.Run("fails with empty id", func(t *testing.T) {
		vendor, err := NewVendor("", "Name", RatePlanStandard, SKUGroupUpTo100)
		assert.Nil(t, vendor)
		assert.Error(t, err)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		vendor, err := NewVendor("V001", "   ", RatePlanStandard, SKUGroupUpTo100)
		assert.Nil(t, vendor)
		assert.Error(t, err)
	})

	t.Run("fails with unknown sku group", func(t *testing.T) {
		vendor, err := NewVendor("V001", "Name", RatePlanStandard, SKUGroup("≤9000"))
		assert.Nil(t, vendor)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "SKU group")
	})
}

func TestNormalizeRatePlan(t *testing.T) {
	tests := []struct {
		raw  string
		want RatePlan
	}{
		{"A", RatePlanA},
		{"a", RatePlanA},
		{" A ", RatePlanA},
		{"", RatePlanStandard},
		{"STD", RatePlanStandard},
		{"standard", RatePlanStandard},
		{"표준", RatePlanStandard},
		{"기본", RatePlanStandard},
		{"B", RatePlanStandard},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeRatePlan(tt.raw), "raw=%q", tt.raw)
	}
}

func TestVendor_Update(t *testing.T) {
	vendor, err := NewVendor("V001", "Old", RatePlanStandard, SKUGroupUpTo100)
	require.NoError(t, err)

	t.Run("updates attributes", func(t *testing.T) {
		err := vendor.Update("New", RatePlanA, SKUGroupUpTo500)
		require.NoError(t, err)
		assert.Equal(t, "New", vendor.Name)
		assert.Equal(t, RatePlanA, vendor.RatePlan)
		assert.Equal(t, SKUGroupUpTo500, vendor.SKUGroup)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		err := vendor.Update("", RatePlanA, SKUGroupUpTo500)
		assert.Error(t, err)
		assert.Equal(t, "New", vendor.Name)
	})
}

func TestVendor_UsesMailer(t *testing.T) {
	vendor, err := NewVendor("V001", "Name", RatePlanStandard, SKUGroupUpTo100)
	require.NoError(t, err)

	assert.False(t, vendor.UsesMailer())

	vendor.SetFlags(ServiceFlags{Mailer: true})
	assert.True(t, vendor.UsesMailer())

	// legacy pairing still counts
	vendor.SetFlags(ServiceFlags{PPBag: true, CustomBox: true})
	assert.True(t, vendor.UsesMailer())

	vendor.SetFlags(ServiceFlags{PPBag: true})
	assert.False(t, vendor.UsesMailer())
}

func TestVendor_ActivateDeactivate(t *testing.T) {
	vendor, err := NewVendor("V001", "Name", RatePlanStandard, SKUGroupUpTo100)
	require.NoError(t, err)

	vendor.Deactivate()
	assert.False(t, vendor.Active)
	vendor.Activate()
	assert.True(t, vendor.Active)
}
