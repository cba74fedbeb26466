package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source rows are written once by the upload pipeline and are read-only
// here. Each row keeps the vendor name exactly as it appeared in the file;
// resolution to a canonical vendor happens through the alias registry at
// query time.

// InboundSlipRow is one line of a receiving slip upload.
type InboundSlipRow struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	VendorName  string    `gorm:"column:vendor_name;type:varchar(200);not null;index"`
	WorkDate    time.Time `gorm:"column:work_date;type:date;not null;index"`
	ProductName string    `gorm:"column:product_name;type:varchar(300)"`
	Quantity    int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InboundSlipRow) TableName() string {
	return "inbound_slip"
}

// ShippingStatRow is one parcel of a shipping statistics upload. TrackingNo
// may be blank when the carrier had not assigned a number at export time;
// blank keys never participate in duplicate elimination.
type ShippingStatRow struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	VendorName string    `gorm:"column:vendor_name;type:varchar(200);not null;index"`
	ShipDate   time.Time `gorm:"column:ship_date;type:date;not null;index"`
	TrackingNo string    `gorm:"column:tracking_no;type:varchar(50);index"`
	InnerQty   int64     `gorm:"column:inner_qty;not null;default:1"`
}

// TableName returns the table name for GORM
func (ShippingStatRow) TableName() string {
	return "shipping_stats"
}

// PostalInRow is one outbound parcel from the postal courier export.
type PostalInRow struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	SenderName   string    `gorm:"column:sender_name;type:varchar(200);not null;index"`
	ReceivedDate time.Time `gorm:"column:received_date;type:date;not null;index"`
	VolumeCm     int       `gorm:"column:volume_cm;not null;default:0"`
	IsRemote     bool      `gorm:"column:is_remote;not null;default:false"`
	TrackingNo   string    `gorm:"column:tracking_no;type:varchar(50);index"`
}

// TableName returns the table name for GORM
func (PostalInRow) TableName() string {
	return "kpost_in"
}

// PostalReturnRow is one returned parcel from the postal courier export.
type PostalReturnRow struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	RecipientName string    `gorm:"column:recipient_name;type:varchar(200);not null;index"`
	DeliveredDate time.Time `gorm:"column:delivered_date;type:date;not null;index"`
	VolumeCm      int       `gorm:"column:volume_cm;not null;default:0"`
}

// TableName returns the table name for GORM
func (PostalReturnRow) TableName() string {
	return "kpost_ret"
}

// WorkLogRow is one manually recorded extra-labor entry. Unit price and
// amount are captured at recording time, so invoice calculation passes them
// through instead of repricing.
type WorkLogRow struct {
	ID         uint64          `gorm:"primaryKey;autoIncrement"`
	VendorName string          `gorm:"column:vendor_name;type:varchar(200);not null;index"`
	WorkDate   time.Time       `gorm:"column:work_date;type:date;not null;index"`
	Category   string          `gorm:"type:varchar(200);not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:decimal(18,4);not null"`
	Quantity   int64           `gorm:"not null;default:0"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Memo       string          `gorm:"type:varchar(300)"`
}

// TableName returns the table name for GORM
func (WorkLogRow) TableName() string {
	return "work_log"
}

// DedupShippingStats removes repeated uploads of the same parcel, keyed by
// tracking number. Rows without a usable key are all kept, since distinct
// unkeyed rows are distinct shipments. First occurrence wins, and relative
// order is preserved for deterministic downstream counting.
func DedupShippingStats(rows []ShippingStatRow) []ShippingStatRow {
	out := make([]ShippingStatRow, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		key := NormalizeTrackingNo(r.TrackingNo)
		if key == "" {
			out = append(out, r)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// DedupPostalIn removes repeated postal export rows under the same dedup
// policy as DedupShippingStats.
func DedupPostalIn(rows []PostalInRow) []PostalInRow {
	out := make([]PostalInRow, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		key := NormalizeTrackingNo(r.TrackingNo)
		if key == "" {
			out = append(out, r)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// NormalizeTrackingNo canonicalizes a tracking number for dedup matching.
// Placeholder values that exporters emit for missing numbers count as blank.
func NormalizeTrackingNo(raw string) string {
	v := normalizeUpper(raw)
	switch v {
	case "", "0", "-", "NA", "N/A", "NONE", "NULL", "NAN":
		return ""
	}
	return v
}
