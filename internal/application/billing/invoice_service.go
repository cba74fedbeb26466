package billing

import (
	"context"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService handles invoice persistence and lifecycle operations
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	vendorRepo  billing.VendorRepository
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	vendorRepo billing.VendorRepository,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		vendorRepo:  vendorRepo,
		logger:      logger,
	}
}

// SaveComputed persists a calculation result as a new unconfirmed invoice.
// An existing invoice for the same vendor and period is replaced so reruns
// do not pile up duplicates.
func (s *InvoiceService) SaveComputed(ctx context.Context, result *CalculationResult) (*billing.Invoice, error) {
	if _, err := s.vendorRepo.FindByID(ctx, result.VendorID); err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(result.VendorID, result.From, result.To, result.Items)
	if err != nil {
		return nil, err
	}

	existing, err := s.invoiceRepo.FindByVendorPeriod(ctx, result.VendorID, result.From, result.To)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.invoiceRepo.Delete(ctx, existing.InvoiceID); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("invoice saved",
		zap.String("invoice_id", invoice.InvoiceID.String()),
		zap.String("vendor_id", invoice.VendorID),
		zap.String("total", invoice.TotalAmount.String()))

	return invoice, nil
}

// GetInvoice loads one invoice with its items.
func (s *InvoiceService) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*billing.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, invoiceID)
}

// InvoiceListing bundles a filtered invoice list with its amount sum.
type InvoiceListing struct {
	Invoices    []billing.Invoice
	TotalAmount decimal.Decimal
}

// ListInvoices returns invoices matching the filter, newest first, with the
// summed total over the selection.
func (s *InvoiceService) ListInvoices(ctx context.Context, filter billing.InvoiceFilter) (*InvoiceListing, error) {
	invoices, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	sum := decimal.Zero
	for _, inv := range invoices {
		sum = sum.Add(inv.TotalAmount)
	}
	return &InvoiceListing{Invoices: invoices, TotalAmount: sum}, nil
}

// ListPeriods returns the distinct billing periods (YYYY-MM) with stored
// invoices, newest first.
func (s *InvoiceService) ListPeriods(ctx context.Context) ([]string, error) {
	return s.invoiceRepo.Periods(ctx)
}

// EditedItem is one submitted line of an invoice edit. The amount is taken
// as submitted so manual overrides survive.
type EditedItem struct {
	Label     string
	Quantity  int64
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
	Remark    string
}

// EditItems replaces an invoice's item list and recomputes the total in one
// transaction. Confirmed invoices stay editable; the modifier stamp records
// the change.
func (s *InvoiceService) EditItems(ctx context.Context, invoiceID uuid.UUID, items []EditedItem, actor string) (*billing.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	newItems := make([]billing.InvoiceItem, 0, len(items))
	for _, it := range items {
		newItems = append(newItems, billing.InvoiceItem{
			Label:     it.Label,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Amount:    it.Amount,
			Remark:    it.Remark,
		})
	}
	invoice.ReplaceItems(newItems, actor)

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("invoice edited",
		zap.String("invoice_id", invoice.InvoiceID.String()),
		zap.String("actor", actor),
		zap.Int("items", len(invoice.Items)))

	return invoice, nil
}

// Confirm finalizes an invoice for accounting.
func (s *InvoiceService) Confirm(ctx context.Context, invoiceID uuid.UUID, actor string) (*billing.Invoice, error) {
	return s.transition(ctx, invoiceID, actor, (*billing.Invoice).Confirm)
}

// Unconfirm reverts a confirmed invoice back to the editable state.
func (s *InvoiceService) Unconfirm(ctx context.Context, invoiceID uuid.UUID, actor string) (*billing.Invoice, error) {
	return s.transition(ctx, invoiceID, actor, (*billing.Invoice).Unconfirm)
}

func (s *InvoiceService) transition(ctx context.Context, invoiceID uuid.UUID, actor string, fn func(*billing.Invoice, string) error) (*billing.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := fn(invoice, actor); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("invoice status changed",
		zap.String("invoice_id", invoice.InvoiceID.String()),
		zap.String("status", string(invoice.Status)),
		zap.String("actor", actor))

	return invoice, nil
}

// DeleteInvoice removes one invoice and its items.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, invoiceID uuid.UUID) error {
	if _, err := s.GetInvoice(ctx, invoiceID); err != nil {
		return err
	}
	return s.invoiceRepo.Delete(ctx, invoiceID)
}

// DeleteInvoices removes several invoices, returning how many were removed.
func (s *InvoiceService) DeleteInvoices(ctx context.Context, invoiceIDs []uuid.UUID) (int64, error) {
	if len(invoiceIDs) == 0 {
		return 0, nil
	}
	deleted, err := s.invoiceRepo.DeleteBatch(ctx, invoiceIDs)
	if err != nil {
		return 0, err
	}
	s.logger.Info("invoices deleted",
		zap.Int("requested", len(invoiceIDs)),
		zap.Int64("deleted", deleted))
	return deleted, nil
}
