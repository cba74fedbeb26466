package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutboundBasicRate prices basic outbound handling by SKU band.
type OutboundBasicRate struct {
	SKUGroup  SKUGroup        `gorm:"column:sku_group;type:varchar(20);primaryKey"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (OutboundBasicRate) TableName() string {
	return "out_basic_rates"
}

// OutboundExtraRate prices an ad-hoc handling task by item name. Absence of
// an item means the task is not billable, not that lookup failed.
type OutboundExtraRate struct {
	Item      string          `gorm:"type:varchar(100);primaryKey"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (OutboundExtraRate) TableName() string {
	return "out_extra_rates"
}

// Extra-rate item names referenced by calculation stages.
const (
	ExtraItemInboundInspection = "입고검수"
	ExtraItemBarcode           = "바코드 부착"
	ExtraItemCombinedPack      = "합포장"
	ExtraItemVoidFill          = "완충작업"
	ExtraItemVideoOutbound     = "출고영상촬영"
	ExtraItemVideoReturn       = "반품영상촬영"
	ExtraItemReturnPickup      = "반품회수"
	ExtraItemRemoteArea        = "도서산간"
)

// ShippingZoneRate is one length band of a rate plan's courier fee table.
// A band covers [LenMinCm, LenMaxCm) and bands of one plan must not overlap.
type ShippingZoneRate struct {
	RatePlan  RatePlan        `gorm:"column:rate_plan;type:varchar(20);primaryKey"`
	Zone      string          `gorm:"type:varchar(50);primaryKey"`
	LenMinCm  int             `gorm:"column:len_min_cm;not null"`
	LenMaxCm  int             `gorm:"column:len_max_cm;not null"`
	Price     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (ShippingZoneRate) TableName() string {
	return "shipping_zone_rates"
}

// MaterialRate prices a packaging material. SizeCode ties the material to a
// shipping zone label so zone counts can be converted into packaging items.
type MaterialRate struct {
	Item      string          `gorm:"type:varchar(100);primaryKey"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SizeCode  string          `gorm:"column:size_code;type:varchar(50);index"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (MaterialRate) TableName() string {
	return "material_rates"
}

// ChargeType distinguishes storage from other ad-hoc vendor charges.
type ChargeType string

const (
	ChargeTypeStorage ChargeType = "보관비"
	ChargeTypeOther   ChargeType = "기타"
)

// VendorCharge is a vendor-specific recurring or ad-hoc billed line item,
// appended to every invoice of that vendor while active.
type VendorCharge struct {
	ChargeID   uint64          `gorm:"column:charge_id;primaryKey;autoIncrement"`
	VendorID   string          `gorm:"column:vendor_id;type:varchar(100);not null;index"`
	Item       string          `gorm:"type:varchar(200);not null"`
	Qty        int64           `gorm:"not null;default:1"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Remark     string          `gorm:"type:text"`
	ChargeType ChargeType      `gorm:"column:charge_type;type:varchar(20);not null;default:'기타'"`
	Active     bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName returns the table name for GORM
func (VendorCharge) TableName() string {
	return "vendor_charges"
}

// StorageFee is a per-vendor storage charge for one billing period (YYYY-MM).
type StorageFee struct {
	StorageID uint64          `gorm:"column:storage_id;primaryKey;autoIncrement"`
	VendorID  string          `gorm:"column:vendor_id;type:varchar(100);not null;index"`
	Item      string          `gorm:"type:varchar(200);not null"`
	Qty       int64           `gorm:"not null;default:1"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Period    string          `gorm:"type:varchar(7);not null;index"`
	Remark    string          `gorm:"type:text"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (StorageFee) TableName() string {
	return "storage_fees"
}
