package handler

import (
	"context"
	"time"

	billingapp "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/infrastructure/telemetry"
	"github.com/billing/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceHandler handles invoice lifecycle requests. Saving an invoice runs
// the computation engine first and persists the itemized result.
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
	calcService    *billingapp.CalculationService
	metrics        *telemetry.BillingMetrics
}

// NewInvoiceHandler creates a new InvoiceHandler. metrics may be nil.
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService, calcService *billingapp.CalculationService, metrics *telemetry.BillingMetrics) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		calcService:    calcService,
		metrics:        metrics,
	}
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.List)
		invoices.GET("/periods", h.Periods)
		invoices.POST("", h.Save)
		invoices.POST("/batch-delete", h.DeleteBatch)
		invoices.GET("/:id", h.Get)
		invoices.PUT("/:id/items", h.EditItems)
		invoices.POST("/:id/confirm", h.Confirm)
		invoices.POST("/:id/unconfirm", h.Unconfirm)
		invoices.DELETE("/:id", h.Delete)
	}
}

// InvoiceDTO is one stored invoice on the wire. Items keep the Korean line
// keys used by the calculation response.
type InvoiceDTO struct {
	InvoiceID   string        `json:"invoice_id"`
	VendorID    string        `json:"vendor_id"`
	PeriodFrom  string        `json:"period_from"`
	PeriodTo    string        `json:"period_to"`
	Items       []CalcItemDTO `json:"items,omitempty"`
	TotalAmount int64         `json:"total_amount"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	ModifiedBy  *string       `json:"modified_by,omitempty"`
	ModifiedAt  *time.Time    `json:"modified_at,omitempty"`
	ConfirmedBy *string       `json:"confirmed_by,omitempty"`
	ConfirmedAt *time.Time    `json:"confirmed_at,omitempty"`
}

func toInvoiceDTO(inv *billing.Invoice, withItems bool) InvoiceDTO {
	out := InvoiceDTO{
		InvoiceID:   inv.InvoiceID.String(),
		VendorID:    inv.VendorID,
		PeriodFrom:  inv.PeriodFrom.Format(dateLayout),
		PeriodTo:    inv.PeriodTo.Format(dateLayout),
		TotalAmount: inv.TotalAmount.Round(0).IntPart(),
		Status:      string(inv.Status),
		CreatedAt:   inv.CreatedAt,
		ModifiedBy:  inv.ModifiedBy,
		ModifiedAt:  inv.ModifiedAt,
		ConfirmedBy: inv.ConfirmedBy,
		ConfirmedAt: inv.ConfirmedAt,
	}
	if withItems {
		out.Items = toCalcItems(inv.Items)
	}
	return out
}

// List returns invoices matching the filters, newest first, with the summed
// total over the selection.
//
// GET /api/v1/invoices?period=2024-01&vendor_id=V1&status=확정
func (h *InvoiceHandler) List(c *gin.Context) {
	status := billing.InvoiceStatus(c.Query("status"))
	if status != "" && status != billing.InvoiceStatusConfirmed && status != billing.InvoiceStatusUnconfirmed {
		h.BadRequest(c, "Unknown invoice status")
		return
	}

	listing, err := h.invoiceService.ListInvoices(c.Request.Context(), billing.InvoiceFilter{
		Period:   c.Query("period"),
		VendorID: c.Query("vendor_id"),
		Status:   status,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]InvoiceDTO, 0, len(listing.Invoices))
	for i := range listing.Invoices {
		out = append(out, toInvoiceDTO(&listing.Invoices[i], false))
	}
	h.Success(c, gin.H{
		"invoices":     out,
		"total_amount": listing.TotalAmount.Round(0).IntPart(),
	})
}

// Periods returns the distinct billing periods with stored invoices.
//
// GET /api/v1/invoices/periods
func (h *InvoiceHandler) Periods(c *gin.Context) {
	periods, err := h.invoiceService.ListPeriods(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if periods == nil {
		periods = []string{}
	}
	h.Success(c, periods)
}

// Get returns one invoice with its items.
//
// GET /api/v1/invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceDTO(invoice, true))
}

// Save computes an invoice and persists it unconfirmed. Saving again for the
// same vendor and period replaces the stored items.
//
// POST /api/v1/invoices
func (h *InvoiceHandler) Save(c *gin.Context) {
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

	invoice, err := h.invoiceService.SaveComputed(c.Request.Context(), result)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordInvoiceSaved(c.Request.Context(), invoice.VendorID)
	}

	resp := toInvoiceDTO(invoice, true)
	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	h.Created(c, gin.H{"invoice": resp, "warnings": warnings})
}

// EditItemDTO is one submitted line of an invoice edit. The amount is taken
// as submitted so manual overrides survive.
type EditItemDTO struct {
	Label     string `json:"항목" binding:"required,min=1,max=300"`
	Quantity  int64  `json:"수량"`
	UnitPrice int64  `json:"단가"`
	Amount    int64  `json:"금액"`
	Remark    string `json:"비고"`
}

// EditItemsHTTPRequest replaces an invoice's item list.
type EditItemsHTTPRequest struct {
	Items []EditItemDTO `json:"items" binding:"required"`
}

// EditItems replaces the item list and recomputes the total atomically.
//
// PUT /api/v1/invoices/:id/items
func (h *InvoiceHandler) EditItems(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req EditItemsHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	items := make([]billingapp.EditedItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, billingapp.EditedItem{
			Label:     it.Label,
			Quantity:  it.Quantity,
			UnitPrice: decimal.NewFromInt(it.UnitPrice),
			Amount:    decimal.NewFromInt(it.Amount),
			Remark:    it.Remark,
		})
	}

	invoice, err := h.invoiceService.EditItems(c.Request.Context(), id, items, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toInvoiceDTO(invoice, true))
}

// Confirm marks an invoice confirmed, stamping the actor.
//
// POST /api/v1/invoices/:id/confirm
func (h *InvoiceHandler) Confirm(c *gin.Context) {
	h.transition(c, h.invoiceService.Confirm, true)
}

// Unconfirm returns an invoice to the unconfirmed state.
//
// POST /api/v1/invoices/:id/unconfirm
func (h *InvoiceHandler) Unconfirm(c *gin.Context) {
	h.transition(c, h.invoiceService.Unconfirm, false)
}

func (h *InvoiceHandler) transition(
	c *gin.Context,
	fn func(ctx context.Context, id uuid.UUID, actor string) (*billing.Invoice, error),
	confirmed bool,
) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := fn(c.Request.Context(), id, getActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if confirmed && h.metrics != nil {
		h.metrics.RecordInvoiceConfirmed(c.Request.Context(), invoice.VendorID)
	}
	h.Success(c, toInvoiceDTO(invoice, false))
}

// Delete removes one invoice.
//
// DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}
	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DeleteBatchHTTPRequest lists invoice IDs to delete together.
type DeleteBatchHTTPRequest struct {
	InvoiceIDs []string `json:"invoice_ids" binding:"required,min=1,dive,uuid"`
}

// DeleteBatch removes many invoices in one transaction.
//
// POST /api/v1/invoices/batch-delete
func (h *InvoiceHandler) DeleteBatch(c *gin.Context) {
	var req DeleteBatchHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	ids := make([]uuid.UUID, 0, len(req.InvoiceIDs))
	for _, raw := range req.InvoiceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid invoice ID: "+raw)
			return
		}
		ids = append(ids, id)
	}

	deleted, err := h.invoiceService.DeleteInvoices(c.Request.Context(), ids)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"deleted": deleted})
}
