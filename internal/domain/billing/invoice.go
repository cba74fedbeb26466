package billing

import (
	"strings"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle status of an invoice. The stored values are
// the vendor-facing Korean labels and must stay bit-exact for compatibility
// with existing consumers.
type InvoiceStatus string

const (
	InvoiceStatusUnconfirmed InvoiceStatus = "미확정"
	InvoiceStatusConfirmed   InvoiceStatus = "확정"
)

// InvoiceItem is one billed line. Amount normally equals Quantity*UnitPrice;
// manual edits may override the amount directly, so the item keeps whatever
// was submitted and only the invoice total is recomputed.
type InvoiceItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID uuid.UUID       `gorm:"column:invoice_id;type:uuid;not null;index"`
	Position  int             `gorm:"not null"`
	Label     string          `gorm:"type:varchar(300);not null"`
	Quantity  int64           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(18,4);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Remark    string          `gorm:"type:varchar(300)"`
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// NewInvoiceItem creates a line with the amount derived from quantity and
// unit price. Calculation stages always produce consistent lines.
func NewInvoiceItem(label string, quantity int64, unitPrice decimal.Decimal) InvoiceItem {
	return InvoiceItem{
		ID:        uuid.New(),
		Label:     label,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    unitPrice.Mul(decimal.NewFromInt(quantity)),
	}
}

// Invoice is an itemized bill for one vendor over one period. The total is
// derived state: every mutation of the item list recomputes it in the same
// operation, so total == sum of item amounts holds at all times.
type Invoice struct {
	InvoiceID   uuid.UUID       `gorm:"column:invoice_id;type:uuid;primaryKey"`
	VendorID    string          `gorm:"column:vendor_id;type:varchar(100);not null;index"`
	PeriodFrom  time.Time       `gorm:"column:period_from;type:date;not null;index"`
	PeriodTo    time.Time       `gorm:"column:period_to;type:date;not null"`
	Items       []InvoiceItem   `gorm:"foreignKey:InvoiceID;references:InvoiceID"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:decimal(18,4);not null"`
	Status      InvoiceStatus   `gorm:"type:varchar(10);not null;default:'미확정'"`
	CreatedAt   time.Time
	ModifiedBy  *string    `gorm:"column:modified_by;type:varchar(100)"`
	ModifiedAt  *time.Time `gorm:"column:modified_at"`
	ConfirmedBy *string    `gorm:"column:confirmed_by;type:varchar(100)"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an unconfirmed invoice from computed items.
func NewInvoice(vendorID string, periodFrom, periodTo time.Time, items []InvoiceItem) (*Invoice, error) {
	if strings.TrimSpace(vendorID) == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_ID", "Vendor ID cannot be empty")
	}
	if periodTo.Before(periodFrom) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end cannot precede period start")
	}

	inv := &Invoice{
		InvoiceID:  uuid.New(),
		VendorID:   vendorID,
		PeriodFrom: periodFrom,
		PeriodTo:   periodTo,
		Status:     InvoiceStatusUnconfirmed,
		CreatedAt:  time.Now(),
	}
	inv.setItems(items)
	return inv, nil
}

func (i *Invoice) setItems(items []InvoiceItem) {
	total := decimal.Zero
	for idx := range items {
		if items[idx].ID == uuid.Nil {
			items[idx].ID = uuid.New()
		}
		items[idx].InvoiceID = i.InvoiceID
		items[idx].Position = idx
		total = total.Add(items[idx].Amount)
	}
	i.Items = items
	i.TotalAmount = total
}

// ReplaceItems swaps the item list for an edited one and recomputes the
// total from the submitted amounts. Editing is deliberately permitted on
// confirmed invoices as well; the modifier stamp records who changed what.
func (i *Invoice) ReplaceItems(items []InvoiceItem, actor string) {
	i.setItems(items)
	now := time.Now()
	i.ModifiedBy = &actor
	i.ModifiedAt = &now
}

// Confirm finalizes the invoice for accounting.
func (i *Invoice) Confirm(actor string) error {
	if i.Status == InvoiceStatusConfirmed {
		return shared.ErrInvalidState
	}
	now := time.Now()
	i.Status = InvoiceStatusConfirmed
	i.ConfirmedBy = &actor
	i.ConfirmedAt = &now
	return nil
}

// Unconfirm reverts a confirmed invoice to the editable state.
func (i *Invoice) Unconfirm(actor string) error {
	if i.Status != InvoiceStatusConfirmed {
		return shared.ErrInvalidState
	}
	now := time.Now()
	i.Status = InvoiceStatusUnconfirmed
	i.ConfirmedBy = nil
	i.ConfirmedAt = nil
	i.ModifiedBy = &actor
	i.ModifiedAt = &now
	return nil
}
