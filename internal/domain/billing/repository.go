package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	// FindByID finds a vendor by its ID. Fails with shared.ErrVendorNotFound
	// when the vendor does not exist.
	FindByID(ctx context.Context, vendorID string) (*Vendor, error)

	// FindAll finds all vendors, optionally limited to active ones
	FindAll(ctx context.Context, activeOnly bool) ([]Vendor, error)

	// Save creates or updates a vendor
	Save(ctx context.Context, vendor *Vendor) error

	// Delete removes a vendor and all of its aliases
	Delete(ctx context.Context, vendorID string) error
}

// AliasRepository defines the interface for the alias partition state
type AliasRepository interface {
	// FindByVendor returns every alias registered for the vendor, optionally
	// limited to one source type
	FindByVendor(ctx context.Context, vendorID string, sourceType SourceType) ([]Alias, error)

	// FindOwners returns every vendor currently owning the alias under the
	// source type. More than one owner is a data integrity violation that
	// callers surface rather than resolve.
	FindOwners(ctx context.Context, sourceType SourceType, alias string) ([]Alias, error)

	// MappedAliases returns the distinct alias strings registered under the
	// source type, excluding the given vendor when excludeVendorID is set
	MappedAliases(ctx context.Context, sourceType SourceType, excludeVendorID string) ([]string, error)

	// Save inserts an alias assignment. Implementations must fail with
	// shared.ErrAliasConflict when the (alias, source type) pair is already
	// owned by a different vendor.
	Save(ctx context.Context, alias *Alias) error

	// Delete removes one alias assignment
	Delete(ctx context.Context, vendorID string, sourceType SourceType, alias string) error

	// DeleteByVendor removes every alias of a vendor
	DeleteByVendor(ctx context.Context, vendorID string) error
}

// RateRepository defines the engine-facing and admin-facing contract over
// the four rate tables plus vendor charges and storage fees.
type RateRepository interface {
	// OutboundBasicPrice returns the basic outbound unit price for the band.
	// Fails with shared.ErrRateNotFound when the band is absent.
	OutboundBasicPrice(ctx context.Context, group SKUGroup) (decimal.Decimal, error)

	// OutboundExtraPrice returns the unit price for an ad-hoc task item.
	// Absence is reported through ok=false, not an error.
	OutboundExtraPrice(ctx context.Context, item string) (price decimal.Decimal, ok bool, err error)

	// ShippingZoneRates returns all bands of one rate plan
	ShippingZoneRates(ctx context.Context, plan RatePlan) ([]ShippingZoneRate, error)

	// MaterialRates returns the packaging material price list
	MaterialRates(ctx context.Context) ([]MaterialRate, error)

	// VendorCharges returns ad-hoc/recurring charges for the vendor
	VendorCharges(ctx context.Context, vendorID string, activeOnly bool) ([]VendorCharge, error)

	// StorageFees returns active storage fees for the vendor whose period
	// (YYYY-MM) falls inside the date range
	StorageFees(ctx context.Context, vendorID string, from, to time.Time) ([]StorageFee, error)

	// Admin CRUD
	OutboundBasicRates(ctx context.Context) ([]OutboundBasicRate, error)
	OutboundExtraRates(ctx context.Context) ([]OutboundExtraRate, error)
	SaveOutboundBasicRate(ctx context.Context, rate *OutboundBasicRate) error
	SaveOutboundExtraRate(ctx context.Context, rate *OutboundExtraRate) error
	ReplaceShippingZoneRates(ctx context.Context, plan RatePlan, rates []ShippingZoneRate) error
	SaveMaterialRate(ctx context.Context, rate *MaterialRate) error
	SaveVendorCharge(ctx context.Context, charge *VendorCharge) error
	DeleteVendorCharge(ctx context.Context, chargeID uint64) error
	SaveStorageFee(ctx context.Context, fee *StorageFee) error
	DeleteStorageFee(ctx context.Context, storageID uint64) error
}

// SourceRowRepository is the read-only query surface over the five uploaded
// row tables. Date ranges are inclusive on both ends and an empty result is
// never an error.
type SourceRowRepository interface {
	InboundSlips(ctx context.Context, names []string, from, to time.Time) ([]InboundSlipRow, error)
	ShippingStats(ctx context.Context, names []string, from, to time.Time) ([]ShippingStatRow, error)
	PostalIn(ctx context.Context, names []string, from, to time.Time) ([]PostalInRow, error)
	PostalReturns(ctx context.Context, names []string, from, to time.Time) ([]PostalReturnRow, error)
	WorkLogs(ctx context.Context, names []string, from, to time.Time) ([]WorkLogRow, error)

	// DistinctNames returns the distinct raw vendor-name strings present in
	// one source table, for unmatched-alias surfacing
	DistinctNames(ctx context.Context, sourceType SourceType) ([]string, error)
}

// InvoiceFilter restricts invoice listing.
type InvoiceFilter struct {
	Period   string // YYYY-MM of period_from
	VendorID string
	Status   InvoiceStatus
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID loads an invoice with its items in position order. Fails with
	// shared.ErrNotFound when the invoice does not exist.
	FindByID(ctx context.Context, invoiceID uuid.UUID) (*Invoice, error)

	// FindByVendorPeriod finds the invoice for an exact vendor+period.
	// Returns nil without error when none exists.
	FindByVendorPeriod(ctx context.Context, vendorID string, from, to time.Time) (*Invoice, error)

	// FindAll lists invoices matching the filter, newest first
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// Periods returns the distinct YYYY-MM values of stored invoices,
	// newest first
	Periods(ctx context.Context) ([]string, error)

	// Save persists the invoice header and items atomically. Item edits and
	// the recomputed total become visible in a single transaction.
	Save(ctx context.Context, invoice *Invoice) error

	// Delete removes the invoice and its items
	Delete(ctx context.Context, invoiceID uuid.UUID) error

	// DeleteBatch removes several invoices, returning the number removed
	DeleteBatch(ctx context.Context, invoiceIDs []uuid.UUID) (int64, error)
}
