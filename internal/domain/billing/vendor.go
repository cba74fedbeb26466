package billing

import (
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/shared"
)

// RatePlan selects which shipping zone table applies to a vendor.
type RatePlan string

const (
	RatePlanStandard RatePlan = "표준"
	RatePlanA        RatePlan = "A"
)

// NormalizeRatePlan maps the raw spellings seen in vendor records onto the
// two canonical plans. Unknown values fall back to the standard plan, the
// same way the billing sheets have always been read.
func NormalizeRatePlan(raw string) RatePlan {
	v := strings.TrimSpace(raw)
	switch strings.ToUpper(v) {
	case "A":
		return RatePlanA
	case "", "STD", "STANDARD":
		return RatePlanStandard
	}
	switch v {
	case "기본", "표준":
		return RatePlanStandard
	}
	return RatePlanStandard
}

// SKUGroup is the size/volume tier used to price basic outbound handling.
type SKUGroup string

const (
	SKUGroupUpTo100  SKUGroup = "≤100"
	SKUGroupUpTo300  SKUGroup = "≤300"
	SKUGroupUpTo500  SKUGroup = "≤500"
	SKUGroupUpTo1000 SKUGroup = "≤1,000"
	SKUGroupUpTo2000 SKUGroup = "≤2,000"
	SKUGroupOver2000 SKUGroup = ">2,000"
)

// AllSKUGroups lists the fixed bands in ascending order.
func AllSKUGroups() []SKUGroup {
	return []SKUGroup{
		SKUGroupUpTo100,
		SKUGroupUpTo300,
		SKUGroupUpTo500,
		SKUGroupUpTo1000,
		SKUGroupUpTo2000,
		SKUGroupOver2000,
	}
}

// IsValid reports whether the group is one of the fixed bands.
func (g SKUGroup) IsValid() bool {
	for _, b := range AllSKUGroups() {
		if g == b {
			return true
		}
	}
	return false
}

// ServiceFlags are the per-vendor switches for optional handling services.
// Each flag gates one flag-fee stage of invoice calculation.
type ServiceFlags struct {
	Barcode       bool `gorm:"not null;default:false"` // barcode attachment per received unit
	CustomBox     bool `gorm:"not null;default:false"` // vendor-supplied custom boxes
	VoidFill      bool `gorm:"not null;default:false"` // void fill per outbound parcel
	PPBag         bool `gorm:"not null;default:false"` // PP bag per received unit
	Mailer        bool `gorm:"not null;default:false"` // mailer bags for small zones
	VideoOutbound bool `gorm:"not null;default:false"` // outbound video recording
	VideoReturn   bool `gorm:"not null;default:false"` // return video recording
}

// Vendor is the canonical billed counterparty. The many raw name spellings
// observed across uploaded files are attached to it as per-source aliases.
type Vendor struct {
	VendorID  string       `gorm:"column:vendor_id;type:varchar(100);primaryKey"`
	Name      string       `gorm:"type:varchar(200);not null"`
	RatePlan  RatePlan     `gorm:"column:rate_plan;type:varchar(20);not null;default:'표준'"`
	SKUGroup  SKUGroup     `gorm:"column:sku_group;type:varchar(20);not null;default:'≤100'"`
	Active    bool         `gorm:"not null;default:true"`
	Flags     ServiceFlags `gorm:"embedded;embeddedPrefix:flag_"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Vendor) TableName() string {
	return "vendors"
}

// NewVendor creates a vendor with required fields validated.
func NewVendor(vendorID, name string, ratePlan RatePlan, skuGroup SKUGroup) (*Vendor, error) {
	vendorID = strings.TrimSpace(vendorID)
	name = strings.TrimSpace(name)
	if vendorID == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_ID", "Vendor ID cannot be empty")
	}
	if len(vendorID) > 100 {
		return nil, shared.NewDomainError("INVALID_VENDOR_ID", "Vendor ID cannot exceed 100 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}
	if !skuGroup.IsValid() {
		return nil, shared.NewDomainError("INVALID_SKU_GROUP", "Unknown SKU group: "+string(skuGroup))
	}

	now := time.Now()
	return &Vendor{
		VendorID:  vendorID,
		Name:      name,
		RatePlan:  NormalizeRatePlan(string(ratePlan)),
		SKUGroup:  skuGroup,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Update updates the mutable billing attributes of the vendor.
func (v *Vendor) Update(name string, ratePlan RatePlan, skuGroup SKUGroup) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}
	if !skuGroup.IsValid() {
		return shared.NewDomainError("INVALID_SKU_GROUP", "Unknown SKU group: "+string(skuGroup))
	}
	v.Name = name
	v.RatePlan = NormalizeRatePlan(string(ratePlan))
	v.SKUGroup = skuGroup
	v.UpdatedAt = time.Now()
	return nil
}

// SetFlags replaces the service flag set.
func (v *Vendor) SetFlags(flags ServiceFlags) {
	v.Flags = flags
	v.UpdatedAt = time.Now()
}

// Activate marks the vendor as billable.
func (v *Vendor) Activate() {
	v.Active = true
	v.UpdatedAt = time.Now()
}

// Deactivate excludes the vendor from batch generation.
func (v *Vendor) Deactivate() {
	v.Active = false
	v.UpdatedAt = time.Now()
}

// UsesMailer reports whether zone-matched packaging should prefer mailer
// bags over boxes. The legacy pairing of PP bag + custom box is honored for
// vendors configured before the dedicated mailer flag existed.
func (v *Vendor) UsesMailer() bool {
	return v.Flags.Mailer || (v.Flags.PPBag && v.Flags.CustomBox)
}
