package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTrackingNo(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain number", "688101234567", "688101234567"},
		{"trims and uppercases", "  ab12  ", "AB12"},
		{"empty", "", ""},
		{"zero placeholder", "0", ""},
		{"dash placeholder", "-", ""},
		{"na placeholder", "na", ""},
		{"slash na placeholder", "N/A", ""},
		{"none placeholder", "None", ""},
		{"null placeholder", "NULL", ""},
		{"nan placeholder", "nan", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTrackingNo(tt.raw))
		})
	}
}

func TestDedupShippingStats(t *testing.T) {
	t.Run("first occurrence wins", func(t *testing.T) {
		rows := []ShippingStatRow{
			{ID: 1, TrackingNo: "100", InnerQty: 1},
			{ID: 2, TrackingNo: "200", InnerQty: 3},
			{ID: 3, TrackingNo: "100", InnerQty: 5},
		}
		got := DedupShippingStats(rows)
		assert.Len(t, got, 2)
		assert.Equal(t, uint64(1), got[0].ID)
		assert.Equal(t, uint64(2), got[1].ID)
	})

	t.Run("placeholder keys never collapse", func(t *testing.T) {
		rows := []ShippingStatRow{
			{ID: 1, TrackingNo: ""},
			{ID: 2, TrackingNo: "-"},
			{ID: 3, TrackingNo: "N/A"},
			{ID: 4, TrackingNo: "0"},
		}
		got := DedupShippingStats(rows)
		assert.Len(t, got, 4)
	})

	t.Run("dedup matches across formatting", func(t *testing.T) {
		rows := []ShippingStatRow{
			{ID: 1, TrackingNo: "abc1"},
			{ID: 2, TrackingNo: " ABC1 "},
		}
		got := DedupShippingStats(rows)
		assert.Len(t, got, 1)
		assert.Equal(t, uint64(1), got[0].ID)
	})

	t.Run("preserves order", func(t *testing.T) {
		rows := []ShippingStatRow{
			{ID: 3, TrackingNo: "c"},
			{ID: 1, TrackingNo: "a"},
			{ID: 2, TrackingNo: "b"},
		}
		got := DedupShippingStats(rows)
		assert.Equal(t, []uint64{3, 1, 2}, []uint64{got[0].ID, got[1].ID, got[2].ID})
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, DedupShippingStats(nil))
	})
}
