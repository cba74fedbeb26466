package handler

import (
	"context"
	"net/http"
	"time"

	billingapp "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/infrastructure/telemetry"
	"github.com/billing/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// CalculationHandler exposes the invoice computation engine: the combined
// calculate endpoint, the single-stage fee previews and the batch runner.
type CalculationHandler struct {
	BaseHandler
	calcService  *billingapp.CalculationService
	metrics      *telemetry.BillingMetrics
	batchWorkers int
}

// NewCalculationHandler creates a new CalculationHandler. metrics may be nil.
func NewCalculationHandler(calcService *billingapp.CalculationService, metrics *telemetry.BillingMetrics, batchWorkers int) *CalculationHandler {
	return &CalculationHandler{
		calcService:  calcService,
		metrics:      metrics,
		batchWorkers: batchWorkers,
	}
}

// RegisterRoutes registers calculation routes
func (h *CalculationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/billing")
	{
		g.POST("/calculate", h.Calculate)
		g.POST("/calculate/batch", h.CalculateBatch)
		g.POST("/courier-fee", h.CourierFee)
		g.POST("/inbound-fee", h.InboundFee)
		g.POST("/remote-fee", h.RemoteFee)
		g.POST("/shipping-stats", h.ShippingStats)
	}
}

// CalculateHTTPRequest is the JSON body shared by the calculation endpoints.
type CalculateHTTPRequest struct {
	Vendor               string `json:"vendor" binding:"required"`
	DateFrom             string `json:"date_from" binding:"required,datetime=2006-01-02"`
	DateTo               string `json:"date_to" binding:"required,datetime=2006-01-02"`
	IncludeBasicShipping *bool  `json:"include_basic_shipping"`
	IncludeCourierFee    *bool  `json:"include_courier_fee"`
	IncludeInboundFee    *bool  `json:"include_inbound_fee"`
	IncludeRemoteFee     *bool  `json:"include_remote_fee"`
	IncludeWorklog       *bool  `json:"include_worklog"`
}

func (r *CalculateHTTPRequest) period() (time.Time, time.Time, error) {
	from, err := time.Parse(dateLayout, r.DateFrom)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse(dateLayout, r.DateTo)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func (r *CalculateHTTPRequest) options() billingapp.CalculateOptions {
	opts := billingapp.DefaultCalculateOptions()
	if r.IncludeBasicShipping != nil {
		opts.IncludeBasicShipping = *r.IncludeBasicShipping
	}
	if r.IncludeCourierFee != nil {
		opts.IncludeCourierFee = *r.IncludeCourierFee
	}
	if r.IncludeInboundFee != nil {
		opts.IncludeInboundFee = *r.IncludeInboundFee
	}
	if r.IncludeRemoteFee != nil {
		opts.IncludeRemoteFee = *r.IncludeRemoteFee
	}
	if r.IncludeWorklog != nil {
		opts.IncludeWorklog = *r.IncludeWorklog
	}
	return opts
}

// CalcItemDTO is one billed line on the wire. The labels are the
// vendor-facing Korean keys and are fixed for compatibility with existing
// consumers.
type CalcItemDTO struct {
	Label     string `json:"항목"`
	Quantity  int64  `json:"수량"`
	UnitPrice int64  `json:"단가"`
	Amount    int64  `json:"금액"`
	Remark    string `json:"비고,omitempty"`
}

// CalculateResponse is the combined calculation result on the wire.
type CalculateResponse struct {
	Success     bool             `json:"success"`
	Vendor      string           `json:"vendor"`
	DateFrom    string           `json:"date_from"`
	DateTo      string           `json:"date_to"`
	Items       []CalcItemDTO    `json:"items"`
	TotalAmount int64            `json:"total_amount"`
	ZoneCounts  map[string]int64 `json:"zone_counts,omitempty"`
	Warnings    []string         `json:"warnings"`
}

func toCalcItems(items []billing.InvoiceItem) []CalcItemDTO {
	out := make([]CalcItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, CalcItemDTO{
			Label:     it.Label,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.Round(0).IntPart(),
			Amount:    it.Amount.Round(0).IntPart(),
			Remark:    it.Remark,
		})
	}
	return out
}

func toCalculateResponse(result *billingapp.CalculationResult, withZoneCounts bool) CalculateResponse {
	resp := CalculateResponse{
		Success:     true,
		Vendor:      result.VendorID,
		DateFrom:    result.From.Format(dateLayout),
		DateTo:      result.To.Format(dateLayout),
		Items:       toCalcItems(result.Items),
		TotalAmount: result.TotalAmount.Round(0).IntPart(),
		Warnings:    result.Warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	if withZoneCounts {
		resp.ZoneCounts = result.ZoneCounts
	}
	return resp
}

// Calculate runs the full computation for one vendor and period.
//
// POST /api/v1/billing/calculate
func (h *CalculationHandler) Calculate(c *gin.Context) {
	var req CalculateHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	from, to, err := req.period()
	if err != nil {
		h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	result, err := h.calcService.CalculateInvoice(c.Request.Context(), billingapp.CalculateRequest{
		VendorID: req.Vendor,
		From:     from,
		To:       to,
		Options:  req.options(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.recordCalculation(c, result)

	c.JSON(http.StatusOK, toCalculateResponse(result, false))
}

// BatchCalculateHTTPRequest is the JSON body of the batch endpoint.
type BatchCalculateHTTPRequest struct {
	Vendors              []string `json:"vendors" binding:"required,min=1"`
	DateFrom             string   `json:"date_from" binding:"required,datetime=2006-01-02"`
	DateTo               string   `json:"date_to" binding:"required,datetime=2006-01-02"`
	IncludeBasicShipping *bool    `json:"include_basic_shipping"`
	IncludeCourierFee    *bool    `json:"include_courier_fee"`
	IncludeInboundFee    *bool    `json:"include_inbound_fee"`
	IncludeRemoteFee     *bool    `json:"include_remote_fee"`
	IncludeWorklog       *bool    `json:"include_worklog"`
}

// BatchEntryDTO is the per-vendor outcome of a batch run.
type BatchEntryDTO struct {
	VendorID    string `json:"vendor_id"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	TotalAmount int64  `json:"total_amount"`
	ItemCount   int    `json:"item_count"`
	Warnings    int    `json:"warnings"`
	DurationMS  int64  `json:"duration_ms"`
}

// CalculateBatch runs independent calculations for many vendors.
//
// POST /api/v1/billing/calculate/batch
func (h *CalculationHandler) CalculateBatch(c *gin.Context) {
	var req BatchCalculateHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	from, err := time.Parse(dateLayout, req.DateFrom)
	if err != nil {
		h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse(dateLayout, req.DateTo)
	if err != nil {
		h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	single := CalculateHTTPRequest{
		IncludeBasicShipping: req.IncludeBasicShipping,
		IncludeCourierFee:    req.IncludeCourierFee,
		IncludeInboundFee:    req.IncludeInboundFee,
		IncludeRemoteFee:     req.IncludeRemoteFee,
		IncludeWorklog:       req.IncludeWorklog,
	}

	entries := h.calcService.CalculateBatch(c.Request.Context(), billingapp.BatchRequest{
		VendorIDs: req.Vendors,
		From:      from,
		To:        to,
		Options:   single.options(),
		Workers:   h.batchWorkers,
	})

	out := make([]BatchEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtoEntry := BatchEntryDTO{
			VendorID:   e.VendorID,
			Status:     e.Status,
			Error:      e.Error,
			DurationMS: e.Duration.Milliseconds(),
		}
		if e.Result != nil {
			dtoEntry.TotalAmount = e.Result.TotalAmount.Round(0).IntPart()
			dtoEntry.ItemCount = len(e.Result.Items)
			dtoEntry.Warnings = len(e.Result.Warnings)
		}
		if h.metrics != nil {
			h.metrics.RecordBatchEntry(c.Request.Context(), e.Status)
		}
		out = append(out, dtoEntry)
	}

	h.Success(c, gin.H{"entries": out})
}

// CourierFee previews only the courier zone stage, with per-zone counts.
//
// POST /api/v1/billing/courier-fee
func (h *CalculationHandler) CourierFee(c *gin.Context) {
	h.singleStage(c, h.calcService.CourierFee, true)
}

// InboundFee previews only the inbound inspection stage.
//
// POST /api/v1/billing/inbound-fee
func (h *CalculationHandler) InboundFee(c *gin.Context) {
	h.singleStage(c, h.calcService.InboundFee, false)
}

// RemoteFee previews only the remote-area surcharge stage.
//
// POST /api/v1/billing/remote-fee
func (h *CalculationHandler) RemoteFee(c *gin.Context) {
	h.singleStage(c, h.calcService.RemoteFee, false)
}

// singleStage binds the shared request body, runs the given stage and writes
// the flat wire response.
func (h *CalculationHandler) singleStage(
	c *gin.Context,
	fn func(ctx context.Context, vendorID string, from, to time.Time) (*billingapp.CalculationResult, error),
	withZoneCounts bool,
) {
	var req CalculateHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	from, to, err := req.period()
	if err != nil {
		h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	result, err := fn(c.Request.Context(), req.Vendor, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCalculateResponse(result, withZoneCounts))
}

// ShippingStats reports the deduplicated shipping-stat row count in range.
//
// POST /api/v1/billing/shipping-stats
func (h *CalculationHandler) ShippingStats(c *gin.Context) {
	var req CalculateHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	from, to, err := req.period()
	if err != nil {
		h.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	count, err := h.calcService.ShippingStatsCount(c.Request.Context(), req.Vendor, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"vendor":    req.Vendor,
		"date_from": req.DateFrom,
		"date_to":   req.DateTo,
		"count":     count,
	})
}

func (h *CalculationHandler) recordCalculation(c *gin.Context, result *billingapp.CalculationResult) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordCalculation(
		c.Request.Context(),
		result.VendorID,
		result.From.Format("2006-01"),
		len(result.Warnings),
		result.Duration,
	)
}
