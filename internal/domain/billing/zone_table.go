package billing

import (
	"fmt"
	"sort"

	"github.com/billing/backend/internal/domain/shared"
)

// ZoneTable is the lookup structure for one rate plan's courier fee bands.
// Bands are half-open intervals [LenMinCm, LenMaxCm), kept sorted by lower
// bound so lookup is a binary search. Overlapping bands are rejected when
// the table is built, which makes lookup results unambiguous by
// construction.
type ZoneTable struct {
	plan  RatePlan
	bands []ShippingZoneRate
}

// NewZoneTable builds a zone table from the stored bands of one rate plan.
func NewZoneTable(plan RatePlan, rates []ShippingZoneRate) (*ZoneTable, error) {
	bands := make([]ShippingZoneRate, 0, len(rates))
	for _, r := range rates {
		if r.RatePlan != plan {
			continue
		}
		if r.LenMinCm < 0 || r.LenMaxCm <= r.LenMinCm {
			return nil, shared.NewDomainError("INVALID_ZONE_BAND",
				fmt.Sprintf("Zone %q has an invalid range [%d, %d)", r.Zone, r.LenMinCm, r.LenMaxCm))
		}
		bands = append(bands, r)
	}

	sort.Slice(bands, func(i, j int) bool { return bands[i].LenMinCm < bands[j].LenMinCm })

	for i := 1; i < len(bands); i++ {
		if bands[i].LenMinCm < bands[i-1].LenMaxCm {
			return nil, shared.NewDomainError("ZONE_OVERLAP",
				fmt.Sprintf("Zones %q and %q overlap for rate plan %s",
					bands[i-1].Zone, bands[i].Zone, plan))
		}
	}

	return &ZoneTable{plan: plan, bands: bands}, nil
}

// Plan returns the rate plan this table belongs to.
func (t *ZoneTable) Plan() RatePlan {
	return t.plan
}

// Bands returns the bands in ascending length order.
func (t *ZoneTable) Bands() []ShippingZoneRate {
	return t.bands
}

// Lookup finds the band whose [min, max) interval contains lengthCm. The
// second return value is false when no band covers the value; callers treat
// that as a per-row warning, not a failure.
func (t *ZoneTable) Lookup(lengthCm int) (ShippingZoneRate, bool) {
	// First band whose upper bound is above the value.
	i := sort.Search(len(t.bands), func(i int) bool {
		return lengthCm < t.bands[i].LenMaxCm
	})
	if i < len(t.bands) && lengthCm >= t.bands[i].LenMinCm {
		return t.bands[i], true
	}
	return ShippingZoneRate{}, false
}
