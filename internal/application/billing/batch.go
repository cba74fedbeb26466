package billing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Batch entry statuses.
const (
	BatchStatusSuccess  = "success"
	BatchStatusError    = "error"
	BatchStatusCanceled = "canceled"
)

// BatchEntry records the outcome of one vendor inside a batch run.
type BatchEntry struct {
	VendorID string
	Status   string
	Error    string
	Result   *CalculationResult
	Duration time.Duration
}

// BatchRequest drives a batch calculation over many vendors.
type BatchRequest struct {
	VendorIDs []string
	From      time.Time
	To        time.Time
	Options   CalculateOptions
	// Workers bounds the concurrent calculations; values below 1 run
	// sequentially.
	Workers int
}

// CalculateBatch runs independent calculations for each vendor on a bounded
// worker pool. One vendor's failure never stops the others. Cancellation is
// cooperative: it is checked between vendors, completed entries are kept and
// the remaining queue is marked canceled.
func (s *CalculationService) CalculateBatch(ctx context.Context, req BatchRequest) []BatchEntry {
	entries := make([]BatchEntry, len(req.VendorIDs))

	workers := req.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(req.VendorIDs) {
		workers = len(req.VendorIDs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				entries[idx] = s.runBatchEntry(ctx, req, req.VendorIDs[idx])
			}
		}()
	}

dispatch:
	for idx := range req.VendorIDs {
		select {
		case <-ctx.Done():
			for rest := idx; rest < len(req.VendorIDs); rest++ {
				entries[rest] = BatchEntry{
					VendorID: req.VendorIDs[rest],
					Status:   BatchStatusCanceled,
					Error:    ctx.Err().Error(),
				}
			}
			break dispatch
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	var ok, failed int
	for _, e := range entries {
		switch e.Status {
		case BatchStatusSuccess:
			ok++
		case BatchStatusError:
			failed++
		}
	}
	s.logger.Info("batch calculation finished",
		zap.Int("vendors", len(req.VendorIDs)),
		zap.Int("succeeded", ok),
		zap.Int("failed", failed))

	return entries
}

func (s *CalculationService) runBatchEntry(ctx context.Context, req BatchRequest, vendorID string) BatchEntry {
	if err := ctx.Err(); err != nil {
		return BatchEntry{VendorID: vendorID, Status: BatchStatusCanceled, Error: err.Error()}
	}

	start := time.Now()
	result, err := s.CalculateInvoice(ctx, CalculateRequest{
		VendorID: vendorID,
		From:     req.From,
		To:       req.To,
		Options:  req.Options,
	})
	duration := time.Since(start)

	if err != nil {
		s.logger.Warn("batch entry failed",
			zap.String("vendor_id", vendorID),
			zap.Error(err))
		return BatchEntry{
			VendorID: vendorID,
			Status:   BatchStatusError,
			Error:    err.Error(),
			Duration: duration,
		}
	}
	return BatchEntry{
		VendorID: vendorID,
		Status:   BatchStatusSuccess,
		Result:   result,
		Duration: duration,
	}
}
