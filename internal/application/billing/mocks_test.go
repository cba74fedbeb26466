package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockVendorRepository is a mock implementation of VendorRepository
type MockVendorRepository struct {
	mock.Mock
}

func (m *MockVendorRepository) FindByID(ctx context.Context, vendorID string) (*billing.Vendor, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Vendor), args.Error(1)
}

func (m *MockVendorRepository) FindAll(ctx context.Context, activeOnly bool) ([]billing.Vendor, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Vendor), args.Error(1)
}

func (m *MockVendorRepository) Save(ctx context.Context, vendor *billing.Vendor) error {
	args := m.Called(ctx, vendor)
	return args.Error(0)
}

func (m *MockVendorRepository) Delete(ctx context.Context, vendorID string) error {
	args := m.Called(ctx, vendorID)
	return args.Error(0)
}

// MockAliasRepository is a mock implementation of AliasRepository
type MockAliasRepository struct {
	mock.Mock
}

func (m *MockAliasRepository) FindByVendor(ctx context.Context, vendorID string, sourceType billing.SourceType) ([]billing.Alias, error) {
	args := m.Called(ctx, vendorID, sourceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Alias), args.Error(1)
}

func (m *MockAliasRepository) FindOwners(ctx context.Context, sourceType billing.SourceType, alias string) ([]billing.Alias, error) {
	args := m.Called(ctx, sourceType, alias)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Alias), args.Error(1)
}

func (m *MockAliasRepository) MappedAliases(ctx context.Context, sourceType billing.SourceType, excludeVendorID string) ([]string, error) {
	args := m.Called(ctx, sourceType, excludeVendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAliasRepository) Save(ctx context.Context, alias *billing.Alias) error {
	args := m.Called(ctx, alias)
	return args.Error(0)
}

func (m *MockAliasRepository) Delete(ctx context.Context, vendorID string, sourceType billing.SourceType, alias string) error {
	args := m.Called(ctx, vendorID, sourceType, alias)
	return args.Error(0)
}

func (m *MockAliasRepository) DeleteByVendor(ctx context.Context, vendorID string) error {
	args := m.Called(ctx, vendorID)
	return args.Error(0)
}

// MockRateRepository is a mock implementation of RateRepository
type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) OutboundBasicPrice(ctx context.Context, group billing.SKUGroup) (decimal.Decimal, error) {
	args := m.Called(ctx, group)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRateRepository) OutboundExtraPrice(ctx context.Context, item string) (decimal.Decimal, bool, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

func (m *MockRateRepository) ShippingZoneRates(ctx context.Context, plan billing.RatePlan) ([]billing.ShippingZoneRate, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.ShippingZoneRate), args.Error(1)
}

func (m *MockRateRepository) MaterialRates(ctx context.Context) ([]billing.MaterialRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.MaterialRate), args.Error(1)
}

func (m *MockRateRepository) VendorCharges(ctx context.Context, vendorID string, activeOnly bool) ([]billing.VendorCharge, error) {
	args := m.Called(ctx, vendorID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.VendorCharge), args.Error(1)
}

func (m *MockRateRepository) StorageFees(ctx context.Context, vendorID string, from, to time.Time) ([]billing.StorageFee, error) {
	args := m.Called(ctx, vendorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.StorageFee), args.Error(1)
}

func (m *MockRateRepository) OutboundBasicRates(ctx context.Context) ([]billing.OutboundBasicRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutboundBasicRate), args.Error(1)
}

func (m *MockRateRepository) OutboundExtraRates(ctx context.Context) ([]billing.OutboundExtraRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.OutboundExtraRate), args.Error(1)
}

func (m *MockRateRepository) SaveOutboundBasicRate(ctx context.Context, rate *billing.OutboundBasicRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockRateRepository) SaveOutboundExtraRate(ctx context.Context, rate *billing.OutboundExtraRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockRateRepository) ReplaceShippingZoneRates(ctx context.Context, plan billing.RatePlan, rates []billing.ShippingZoneRate) error {
	args := m.Called(ctx, plan, rates)
	return args.Error(0)
}

func (m *MockRateRepository) SaveMaterialRate(ctx context.Context, rate *billing.MaterialRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockRateRepository) SaveVendorCharge(ctx context.Context, charge *billing.VendorCharge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

func (m *MockRateRepository) DeleteVendorCharge(ctx context.Context, chargeID uint64) error {
	args := m.Called(ctx, chargeID)
	return args.Error(0)
}

func (m *MockRateRepository) SaveStorageFee(ctx context.Context, fee *billing.StorageFee) error {
	args := m.Called(ctx, fee)
	return args.Error(0)
}

func (m *MockRateRepository) DeleteStorageFee(ctx context.Context, storageID uint64) error {
	args := m.Called(ctx, storageID)
	return args.Error(0)
}

// MockSourceRowRepository is a mock implementation of SourceRowRepository
type MockSourceRowRepository struct {
	mock.Mock
}

func (m *MockSourceRowRepository) InboundSlips(ctx context.Context, names []string, from, to time.Time) ([]billing.InboundSlipRow, error) {
	args := m.Called(ctx, names, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.InboundSlipRow), args.Error(1)
}

func (m *MockSourceRowRepository) ShippingStats(ctx context.Context, names []string, from, to time.Time) ([]billing.ShippingStatRow, error) {
	args := m.Called(ctx, names, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.ShippingStatRow), args.Error(1)
}

func (m *MockSourceRowRepository) PostalIn(ctx context.Context, names []string, from, to time.Time) ([]billing.PostalInRow, error) {
	args := m.Called(ctx, names, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.PostalInRow), args.Error(1)
}

func (m *MockSourceRowRepository) PostalReturns(ctx context.Context, names []string, from, to time.Time) ([]billing.PostalReturnRow, error) {
	args := m.Called(ctx, names, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.PostalReturnRow), args.Error(1)
}

func (m *MockSourceRowRepository) WorkLogs(ctx context.Context, names []string, from, to time.Time) ([]billing.WorkLogRow, error) {
	args := m.Called(ctx, names, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.WorkLogRow), args.Error(1)
}

func (m *MockSourceRowRepository) DistinctNames(ctx context.Context, sourceType billing.SourceType) ([]string, error) {
	args := m.Called(ctx, sourceType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, invoiceID uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByVendorPeriod(ctx context.Context, vendorID string, from, to time.Time) (*billing.Invoice, error) {
	args := m.Called(ctx, vendorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Periods(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, invoiceID uuid.UUID) error {
	args := m.Called(ctx, invoiceID)
	return args.Error(0)
}

func (m *MockInvoiceRepository) DeleteBatch(ctx context.Context, invoiceIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, invoiceIDs)
	return args.Get(0).(int64), args.Error(1)
}
