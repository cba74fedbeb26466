package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics helper is constructed without a meter.
var ErrMeterNil = errors.New("meter must not be nil")

// BillingMetrics tracks invoice calculation and lifecycle activity.
type BillingMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	calcTotal         *Counter
	calcWarningsTotal *Counter
	calcDuration      *Histogram

	batchEntriesTotal *Counter

	invoiceSavedTotal     *Counter
	invoiceConfirmedTotal *Counter
}

// BillingMetricsConfig holds configuration for billing metrics.
type BillingMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBillingMetrics creates a new BillingMetrics instance.
func NewBillingMetrics(cfg BillingMetricsConfig) (*BillingMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BillingMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	bm.calcTotal, err = NewCounter(
		cfg.Meter,
		"billing_calculation_total",
		"Total number of invoice calculation runs",
		"{runs}",
	)
	if err != nil {
		return nil, err
	}

	bm.calcWarningsTotal, err = NewCounter(
		cfg.Meter,
		"billing_calculation_warnings_total",
		"Total number of warnings emitted by invoice calculations",
		"{warnings}",
	)
	if err != nil {
		return nil, err
	}

	bm.calcDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "billing_calculation_duration_seconds",
		Description: "Duration of a single vendor invoice calculation",
		Unit:        "s",
		Boundaries:  CalcDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	bm.batchEntriesTotal, err = NewCounter(
		cfg.Meter,
		"billing_batch_entries_total",
		"Total number of vendors processed by batch calculations, by outcome",
		"{vendors}",
	)
	if err != nil {
		return nil, err
	}

	bm.invoiceSavedTotal, err = NewCounter(
		cfg.Meter,
		"billing_invoice_saved_total",
		"Total number of invoices saved",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.invoiceConfirmedTotal, err = NewCounter(
		cfg.Meter,
		"billing_invoice_confirmed_total",
		"Total number of invoice confirmations",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// RecordCalculation records one invoice calculation run for a vendor.
func (bm *BillingMetrics) RecordCalculation(ctx context.Context, vendorID, period string, warnings int, d time.Duration) {
	vendorAttr := AttrVendorID.String(vendorID)
	periodAttr := AttrPeriod.String(period)

	bm.calcTotal.Inc(ctx, vendorAttr, periodAttr)
	bm.calcDuration.RecordDuration(ctx, d, vendorAttr, periodAttr)
	if warnings > 0 {
		bm.calcWarningsTotal.Add(ctx, int64(warnings), vendorAttr, periodAttr)
	}
}

// RecordBatchEntry records the outcome of one vendor within a batch run.
func (bm *BillingMetrics) RecordBatchEntry(ctx context.Context, state string) {
	bm.batchEntriesTotal.Inc(ctx, AttrBatchState.String(state))
}

// RecordInvoiceSaved records a saved invoice.
func (bm *BillingMetrics) RecordInvoiceSaved(ctx context.Context, vendorID string) {
	bm.invoiceSavedTotal.Inc(ctx, AttrVendorID.String(vendorID))
}

// RecordInvoiceConfirmed records an invoice confirmation.
func (bm *BillingMetrics) RecordInvoiceConfirmed(ctx context.Context, vendorID string) {
	bm.invoiceConfirmedTotal.Inc(ctx, AttrVendorID.String(vendorID))
}
