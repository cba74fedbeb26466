package handler

import (
	"strconv"
	"time"

	billingapp "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RateHandler handles rate table administration.
type RateHandler struct {
	BaseHandler
	rateService *billingapp.RateService
}

// NewRateHandler creates a new RateHandler
func NewRateHandler(rateService *billingapp.RateService) *RateHandler {
	return &RateHandler{rateService: rateService}
}

// RegisterRoutes registers rate table routes
func (h *RateHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rates := rg.Group("/rates")
	{
		rates.GET("/outbound-basic", h.ListOutboundBasic)
		rates.PUT("/outbound-basic", h.SaveOutboundBasic)
		rates.GET("/outbound-extra", h.ListOutboundExtra)
		rates.PUT("/outbound-extra", h.SaveOutboundExtra)
		rates.GET("/zones/:plan", h.ListZones)
		rates.PUT("/zones/:plan", h.ReplaceZones)
		rates.GET("/materials", h.ListMaterials)
		rates.PUT("/materials", h.SaveMaterial)
		rates.GET("/charges", h.ListCharges)
		rates.POST("/charges", h.SaveCharge)
		rates.DELETE("/charges/:id", h.DeleteCharge)
		rates.GET("/storage", h.ListStorageFees)
		rates.POST("/storage", h.SaveStorageFee)
		rates.DELETE("/storage/:id", h.DeleteStorageFee)
	}
}

// won renders a decimal price as integer won for the wire.
func won(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// OutboundBasicRateDTO prices one SKU band.
type OutboundBasicRateDTO struct {
	SKUGroup  string `json:"sku_group" binding:"required"`
	UnitPrice int64  `json:"unit_price" binding:"min=0"`
}

// ListOutboundBasic returns the outbound fee per SKU band.
//
// GET /api/v1/rates/outbound-basic
func (h *RateHandler) ListOutboundBasic(c *gin.Context) {
	rates, err := h.rateService.ListOutboundBasicRates(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]OutboundBasicRateDTO, 0, len(rates))
	for _, r := range rates {
		out = append(out, OutboundBasicRateDTO{SKUGroup: string(r.SKUGroup), UnitPrice: won(r.UnitPrice)})
	}
	h.Success(c, out)
}

// SaveOutboundBasic upserts one SKU band price.
//
// PUT /api/v1/rates/outbound-basic
func (h *RateHandler) SaveOutboundBasic(c *gin.Context) {
	var req OutboundBasicRateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	rate := &billing.OutboundBasicRate{
		SKUGroup:  billing.SKUGroup(req.SKUGroup),
		UnitPrice: decimal.NewFromInt(req.UnitPrice),
	}
	if err := h.rateService.SaveOutboundBasicRate(c.Request.Context(), rate); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, req)
}

// OutboundExtraRateDTO prices one ad-hoc handling task.
type OutboundExtraRateDTO struct {
	Item      string `json:"item" binding:"required,min=1,max=100"`
	UnitPrice int64  `json:"unit_price" binding:"min=0"`
}

// ListOutboundExtra returns the extra-task unit prices.
//
// GET /api/v1/rates/outbound-extra
func (h *RateHandler) ListOutboundExtra(c *gin.Context) {
	rates, err := h.rateService.ListOutboundExtraRates(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]OutboundExtraRateDTO, 0, len(rates))
	for _, r := range rates {
		out = append(out, OutboundExtraRateDTO{Item: r.Item, UnitPrice: won(r.UnitPrice)})
	}
	h.Success(c, out)
}

// SaveOutboundExtra upserts one extra-task price.
//
// PUT /api/v1/rates/outbound-extra
func (h *RateHandler) SaveOutboundExtra(c *gin.Context) {
	var req OutboundExtraRateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	rate := &billing.OutboundExtraRate{
		Item:      req.Item,
		UnitPrice: decimal.NewFromInt(req.UnitPrice),
	}
	if err := h.rateService.SaveOutboundExtraRate(c.Request.Context(), rate); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, req)
}

// ZoneRateDTO is one length band of a courier zone table.
type ZoneRateDTO struct {
	Zone     string `json:"zone" binding:"required,min=1,max=50"`
	LenMinCm int    `json:"len_min_cm" binding:"min=0"`
	LenMaxCm int    `json:"len_max_cm" binding:"min=0"`
	Price    int64  `json:"price" binding:"min=0"`
}

// ReplaceZonesHTTPRequest replaces a plan's whole zone table.
type ReplaceZonesHTTPRequest struct {
	Rates []ZoneRateDTO `json:"rates"`
}

// ListZones returns a rate plan's zone table.
//
// GET /api/v1/rates/zones/:plan
func (h *RateHandler) ListZones(c *gin.Context) {
	plan := billing.NormalizeRatePlan(c.Param("plan"))

	rates, err := h.rateService.ListShippingZoneRates(c.Request.Context(), plan)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]ZoneRateDTO, 0, len(rates))
	for _, r := range rates {
		out = append(out, ZoneRateDTO{
			Zone:     r.Zone,
			LenMinCm: r.LenMinCm,
			LenMaxCm: r.LenMaxCm,
			Price:    won(r.Price),
		})
	}
	h.Success(c, gin.H{"rate_plan": plan, "rates": out})
}

// ReplaceZones swaps a rate plan's zone table atomically. Overlapping bands
// are rejected before anything is written.
//
// PUT /api/v1/rates/zones/:plan
func (h *RateHandler) ReplaceZones(c *gin.Context) {
	plan := billing.NormalizeRatePlan(c.Param("plan"))

	var req ReplaceZonesHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	rates := make([]billing.ShippingZoneRate, 0, len(req.Rates))
	for _, r := range req.Rates {
		rates = append(rates, billing.ShippingZoneRate{
			RatePlan: plan,
			Zone:     r.Zone,
			LenMinCm: r.LenMinCm,
			LenMaxCm: r.LenMaxCm,
			Price:    decimal.NewFromInt(r.Price),
		})
	}

	if err := h.rateService.ReplaceShippingZoneRates(c.Request.Context(), plan, rates); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"rate_plan": plan, "count": len(rates)})
}

// MaterialRateDTO prices one packaging material.
type MaterialRateDTO struct {
	Item      string `json:"item" binding:"required,min=1,max=100"`
	UnitPrice int64  `json:"unit_price" binding:"min=0"`
	SizeCode  string `json:"size_code"`
}

// ListMaterials returns the packaging material prices.
//
// GET /api/v1/rates/materials
func (h *RateHandler) ListMaterials(c *gin.Context) {
	rates, err := h.rateService.ListMaterialRates(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]MaterialRateDTO, 0, len(rates))
	for _, r := range rates {
		out = append(out, MaterialRateDTO{Item: r.Item, UnitPrice: won(r.UnitPrice), SizeCode: r.SizeCode})
	}
	h.Success(c, out)
}

// SaveMaterial upserts one material price.
//
// PUT /api/v1/rates/materials
func (h *RateHandler) SaveMaterial(c *gin.Context) {
	var req MaterialRateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	rate := &billing.MaterialRate{
		Item:      req.Item,
		UnitPrice: decimal.NewFromInt(req.UnitPrice),
		SizeCode:  req.SizeCode,
	}
	if err := h.rateService.SaveMaterialRate(c.Request.Context(), rate); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, req)
}

// VendorChargeDTO is one ad-hoc or recurring vendor charge.
type VendorChargeDTO struct {
	ChargeID   uint64 `json:"charge_id,omitempty"`
	VendorID   string `json:"vendor_id" binding:"required"`
	Item       string `json:"item" binding:"required,min=1,max=200"`
	Qty        int64  `json:"qty" binding:"min=1"`
	UnitPrice  int64  `json:"unit_price" binding:"min=0"`
	Remark     string `json:"remark"`
	ChargeType string `json:"charge_type"`
	Active     bool   `json:"active"`
}

// ListCharges returns a vendor's charges.
//
// GET /api/v1/rates/charges?vendor_id=V1&active_only=true
func (h *RateHandler) ListCharges(c *gin.Context) {
	vendorID := c.Query("vendor_id")
	if vendorID == "" {
		h.BadRequest(c, "vendor_id is required")
		return
	}
	activeOnly := c.Query("active_only") == "true"

	charges, err := h.rateService.ListVendorCharges(c.Request.Context(), vendorID, activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]VendorChargeDTO, 0, len(charges))
	for _, ch := range charges {
		out = append(out, VendorChargeDTO{
			ChargeID:   ch.ChargeID,
			VendorID:   ch.VendorID,
			Item:       ch.Item,
			Qty:        ch.Qty,
			UnitPrice:  won(ch.UnitPrice),
			Remark:     ch.Remark,
			ChargeType: string(ch.ChargeType),
			Active:     ch.Active,
		})
	}
	h.Success(c, out)
}

// SaveCharge creates or updates one vendor charge. The stored amount is
// always qty * unit price.
//
// POST /api/v1/rates/charges
func (h *RateHandler) SaveCharge(c *gin.Context) {
	var req VendorChargeDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	unitPrice := decimal.NewFromInt(req.UnitPrice)
	charge := &billing.VendorCharge{
		ChargeID:   req.ChargeID,
		VendorID:   req.VendorID,
		Item:       req.Item,
		Qty:        req.Qty,
		UnitPrice:  unitPrice,
		Amount:     unitPrice.Mul(decimal.NewFromInt(req.Qty)),
		Remark:     req.Remark,
		ChargeType: billing.ChargeType(req.ChargeType),
		Active:     req.Active,
	}
	if err := h.rateService.SaveVendorCharge(c.Request.Context(), charge); err != nil {
		h.HandleError(c, err)
		return
	}
	req.ChargeID = charge.ChargeID
	h.Success(c, req)
}

// DeleteCharge removes one vendor charge.
//
// DELETE /api/v1/rates/charges/:id
func (h *RateHandler) DeleteCharge(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "Invalid charge ID")
		return
	}
	if err := h.rateService.DeleteVendorCharge(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// StorageFeeDTO is one monthly storage fee row.
type StorageFeeDTO struct {
	StorageID uint64 `json:"storage_id,omitempty"`
	VendorID  string `json:"vendor_id" binding:"required"`
	Item      string `json:"item" binding:"required,min=1,max=200"`
	Qty       int64  `json:"qty" binding:"min=1"`
	UnitPrice int64  `json:"unit_price" binding:"min=0"`
	Period    string `json:"period" binding:"required,datetime=2006-01"`
	Remark    string `json:"remark"`
	Active    bool   `json:"active"`
}

// ListStorageFees returns a vendor's storage fees over a month range.
//
// GET /api/v1/rates/storage?vendor_id=V1&from=2024-01&to=2024-03
func (h *RateHandler) ListStorageFees(c *gin.Context) {
	vendorID := c.Query("vendor_id")
	if vendorID == "" {
		h.BadRequest(c, "vendor_id is required")
		return
	}
	from, err := time.Parse("2006-01", c.DefaultQuery("from", "1970-01"))
	if err != nil {
		h.BadRequest(c, "Invalid from month, expected YYYY-MM")
		return
	}
	to, err := time.Parse("2006-01", c.DefaultQuery("to", "9999-12"))
	if err != nil {
		h.BadRequest(c, "Invalid to month, expected YYYY-MM")
		return
	}

	fees, err := h.rateService.ListStorageFees(c.Request.Context(), vendorID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]StorageFeeDTO, 0, len(fees))
	for _, f := range fees {
		out = append(out, StorageFeeDTO{
			StorageID: f.StorageID,
			VendorID:  f.VendorID,
			Item:      f.Item,
			Qty:       f.Qty,
			UnitPrice: won(f.UnitPrice),
			Period:    f.Period,
			Remark:    f.Remark,
			Active:    f.Active,
		})
	}
	h.Success(c, out)
}

// SaveStorageFee creates or updates one storage fee row.
//
// POST /api/v1/rates/storage
func (h *RateHandler) SaveStorageFee(c *gin.Context) {
	var req StorageFeeDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	unitPrice := decimal.NewFromInt(req.UnitPrice)
	fee := &billing.StorageFee{
		StorageID: req.StorageID,
		VendorID:  req.VendorID,
		Item:      req.Item,
		Qty:       req.Qty,
		UnitPrice: unitPrice,
		Amount:    unitPrice.Mul(decimal.NewFromInt(req.Qty)),
		Period:    req.Period,
		Remark:    req.Remark,
		Active:    req.Active,
	}
	if err := h.rateService.SaveStorageFee(c.Request.Context(), fee); err != nil {
		h.HandleError(c, err)
		return
	}
	req.StorageID = fee.StorageID
	h.Success(c, req)
}

// DeleteStorageFee removes one storage fee row.
//
// DELETE /api/v1/rates/storage/:id
func (h *RateHandler) DeleteStorageFee(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.BadRequest(c, "Invalid storage fee ID")
		return
	}
	if err := h.rateService.DeleteStorageFee(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
