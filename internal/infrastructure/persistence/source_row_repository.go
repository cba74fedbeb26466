package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"gorm.io/gorm"
)

// GormSourceRowRepository implements billing.SourceRowRepository using GORM.
// All queries are read-only; rows are written by the upload pipeline.
type GormSourceRowRepository struct {
	db *gorm.DB
}

// NewGormSourceRowRepository creates a new GormSourceRowRepository
func NewGormSourceRowRepository(db *gorm.DB) *GormSourceRowRepository {
	return &GormSourceRowRepository{db: db}
}

// InboundSlips returns receiving slip rows for the names in the date range
func (r *GormSourceRowRepository) InboundSlips(ctx context.Context, names []string, from, to time.Time) ([]billing.InboundSlipRow, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var rows []billing.InboundSlipRow
	err := r.db.WithContext(ctx).
		Where("vendor_name IN ?", names).
		Where("work_date BETWEEN ? AND ?", from, to).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ShippingStats returns shipping statistics rows for the names in the date range
func (r *GormSourceRowRepository) ShippingStats(ctx context.Context, names []string, from, to time.Time) ([]billing.ShippingStatRow, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var rows []billing.ShippingStatRow
	err := r.db.WithContext(ctx).
		Where("vendor_name IN ?", names).
		Where("ship_date BETWEEN ? AND ?", from, to).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// PostalIn returns postal outbound rows for the sender names in the date range
func (r *GormSourceRowRepository) PostalIn(ctx context.Context, names []string, from, to time.Time) ([]billing.PostalInRow, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var rows []billing.PostalInRow
	err := r.db.WithContext(ctx).
		Where("sender_name IN ?", names).
		Where("received_date BETWEEN ? AND ?", from, to).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// PostalReturns returns postal return rows for the recipient names in the date range
func (r *GormSourceRowRepository) PostalReturns(ctx context.Context, names []string, from, to time.Time) ([]billing.PostalReturnRow, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var rows []billing.PostalReturnRow
	err := r.db.WithContext(ctx).
		Where("recipient_name IN ?", names).
		Where("delivered_date BETWEEN ? AND ?", from, to).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// WorkLogs returns manual work log rows for the names in the date range
func (r *GormSourceRowRepository) WorkLogs(ctx context.Context, names []string, from, to time.Time) ([]billing.WorkLogRow, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var rows []billing.WorkLogRow
	err := r.db.WithContext(ctx).
		Where("vendor_name IN ?", names).
		Where("work_date BETWEEN ? AND ?", from, to).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// sourceNameColumns maps each source table onto its raw-name column.
var sourceNameColumns = map[billing.SourceType]struct {
	table  string
	column string
}{
	billing.SourceInboundSlip:   {table: billing.InboundSlipRow{}.TableName(), column: "vendor_name"},
	billing.SourceShippingStats: {table: billing.ShippingStatRow{}.TableName(), column: "vendor_name"},
	billing.SourcePostalIn:      {table: billing.PostalInRow{}.TableName(), column: "sender_name"},
	billing.SourcePostalReturn:  {table: billing.PostalReturnRow{}.TableName(), column: "recipient_name"},
	billing.SourceWorkLog:       {table: billing.WorkLogRow{}.TableName(), column: "vendor_name"},
}

// DistinctNames returns the distinct raw vendor-name strings present in one
// source table
func (r *GormSourceRowRepository) DistinctNames(ctx context.Context, sourceType billing.SourceType) ([]string, error) {
	target, ok := sourceNameColumns[sourceType]
	if !ok {
		return nil, fmt.Errorf("unknown source type: %s", sourceType)
	}

	var names []string
	err := r.db.WithContext(ctx).
		Table(target.table).
		Distinct(target.column).
		Order(target.column).
		Pluck(target.column, &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
