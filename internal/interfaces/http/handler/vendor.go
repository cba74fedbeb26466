package handler

import (
	"time"

	billingapp "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// VendorHandler handles vendor and alias registry requests.
type VendorHandler struct {
	BaseHandler
	vendorService *billingapp.VendorService
}

// NewVendorHandler creates a new VendorHandler
func NewVendorHandler(vendorService *billingapp.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

// RegisterRoutes registers vendor routes
func (h *VendorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	vendors := rg.Group("/vendors")
	{
		vendors.GET("", h.List)
		vendors.POST("", h.Create)
		vendors.GET("/:id", h.Get)
		vendors.PUT("/:id", h.Update)
		vendors.DELETE("/:id", h.Delete)

		vendors.GET("/:id/aliases", h.ListAliases)
		vendors.POST("/:id/aliases", h.AssignAlias)
		vendors.DELETE("/:id/aliases", h.RemoveAlias)
	}

	aliases := rg.Group("/aliases")
	{
		aliases.GET("/unmatched", h.UnmatchedAliases)
		aliases.GET("/available", h.AvailableAliases)
		aliases.GET("/owners", h.AliasOwners)
	}
}

// ServiceFlagsDTO mirrors the vendor's flag-gated services on the wire.
type ServiceFlagsDTO struct {
	Barcode       bool `json:"barcode"`
	CustomBox     bool `json:"custom_box"`
	VoidFill      bool `json:"void_fill"`
	PPBag         bool `json:"pp_bag"`
	Mailer        bool `json:"mailer"`
	VideoOutbound bool `json:"video_outbound"`
	VideoReturn   bool `json:"video_return"`
}

func (d ServiceFlagsDTO) toDomain() billing.ServiceFlags {
	return billing.ServiceFlags{
		Barcode:       d.Barcode,
		CustomBox:     d.CustomBox,
		VoidFill:      d.VoidFill,
		PPBag:         d.PPBag,
		Mailer:        d.Mailer,
		VideoOutbound: d.VideoOutbound,
		VideoReturn:   d.VideoReturn,
	}
}

func toFlagsDTO(f billing.ServiceFlags) ServiceFlagsDTO {
	return ServiceFlagsDTO{
		Barcode:       f.Barcode,
		CustomBox:     f.CustomBox,
		VoidFill:      f.VoidFill,
		PPBag:         f.PPBag,
		Mailer:        f.Mailer,
		VideoOutbound: f.VideoOutbound,
		VideoReturn:   f.VideoReturn,
	}
}

// VendorDTO is one vendor on the wire.
type VendorDTO struct {
	VendorID  string          `json:"vendor_id"`
	Name      string          `json:"name"`
	RatePlan  string          `json:"rate_plan"`
	SKUGroup  string          `json:"sku_group"`
	Active    bool            `json:"active"`
	Flags     ServiceFlagsDTO `json:"flags"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toVendorDTO(v *billing.Vendor) VendorDTO {
	return VendorDTO{
		VendorID:  v.VendorID,
		Name:      v.Name,
		RatePlan:  string(v.RatePlan),
		SKUGroup:  string(v.SKUGroup),
		Active:    v.Active,
		Flags:     toFlagsDTO(v.Flags),
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

// CreateVendorHTTPRequest is the JSON body for vendor creation.
type CreateVendorHTTPRequest struct {
	VendorID string          `json:"vendor_id" binding:"required,min=1,max=100"`
	Name     string          `json:"name" binding:"required,min=1,max=200"`
	RatePlan string          `json:"rate_plan"`
	SKUGroup string          `json:"sku_group" binding:"required"`
	Flags    ServiceFlagsDTO `json:"flags"`
}

// UpdateVendorHTTPRequest is the JSON body for vendor updates.
type UpdateVendorHTTPRequest struct {
	Name     string          `json:"name" binding:"required,min=1,max=200"`
	RatePlan string          `json:"rate_plan"`
	SKUGroup string          `json:"sku_group" binding:"required"`
	Active   bool            `json:"active"`
	Flags    ServiceFlagsDTO `json:"flags"`
}

// List returns all vendors, optionally only active ones.
//
// GET /api/v1/vendors?active_only=true
func (h *VendorHandler) List(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"

	vendors, err := h.vendorService.ListVendors(c.Request.Context(), activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]VendorDTO, 0, len(vendors))
	for i := range vendors {
		out = append(out, toVendorDTO(&vendors[i]))
	}
	h.Success(c, out)
}

// Get returns one vendor.
//
// GET /api/v1/vendors/:id
func (h *VendorHandler) Get(c *gin.Context) {
	vendor, err := h.vendorService.GetVendor(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toVendorDTO(vendor))
}

// Create registers a new canonical vendor.
//
// POST /api/v1/vendors
func (h *VendorHandler) Create(c *gin.Context) {
	var req CreateVendorHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	vendor, err := h.vendorService.CreateVendor(c.Request.Context(), billingapp.CreateVendorRequest{
		VendorID: req.VendorID,
		Name:     req.Name,
		RatePlan: req.RatePlan,
		SKUGroup: billing.SKUGroup(req.SKUGroup),
		Flags:    req.Flags.toDomain(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toVendorDTO(vendor))
}

// Update changes a vendor's billing attributes, flags and active state.
//
// PUT /api/v1/vendors/:id
func (h *VendorHandler) Update(c *gin.Context) {
	var req UpdateVendorHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	vendor, err := h.vendorService.UpdateVendor(c.Request.Context(), c.Param("id"), billingapp.UpdateVendorRequest{
		Name:     req.Name,
		RatePlan: req.RatePlan,
		SKUGroup: billing.SKUGroup(req.SKUGroup),
		Flags:    req.Flags.toDomain(),
		Active:   req.Active,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toVendorDTO(vendor))
}

// Delete removes a vendor and its aliases.
//
// DELETE /api/v1/vendors/:id
func (h *VendorHandler) Delete(c *gin.Context) {
	if err := h.vendorService.DeleteVendor(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AliasDTO is one alias mapping on the wire.
type AliasDTO struct {
	Alias      string `json:"alias"`
	SourceType string `json:"source_type"`
	VendorID   string `json:"vendor_id"`
}

func toAliasDTOs(aliases []billing.Alias) []AliasDTO {
	out := make([]AliasDTO, 0, len(aliases))
	for _, a := range aliases {
		out = append(out, AliasDTO{
			Alias:      a.Alias,
			SourceType: string(a.SourceType),
			VendorID:   a.VendorID,
		})
	}
	return out
}

// AliasHTTPRequest is the JSON body for alias assignment and removal.
type AliasHTTPRequest struct {
	Alias      string `json:"alias" binding:"required,min=1,max=200"`
	SourceType string `json:"source_type" binding:"required"`
}

// ListAliases returns a vendor's aliases, optionally for one source type.
//
// GET /api/v1/vendors/:id/aliases?source_type=shipping_stats
func (h *VendorHandler) ListAliases(c *gin.Context) {
	sourceType := billing.SourceType(c.Query("source_type"))
	if sourceType != "" && !sourceType.IsValid() {
		h.BadRequest(c, "Unknown source type")
		return
	}

	aliases, err := h.vendorService.ListAliases(c.Request.Context(), c.Param("id"), sourceType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAliasDTOs(aliases))
}

// AssignAlias maps one raw source spelling to the vendor.
//
// POST /api/v1/vendors/:id/aliases
func (h *VendorHandler) AssignAlias(c *gin.Context) {
	var req AliasHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	alias, err := h.vendorService.AssignAlias(c.Request.Context(), c.Param("id"), billing.SourceType(req.SourceType), req.Alias)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, AliasDTO{
		Alias:      alias.Alias,
		SourceType: string(alias.SourceType),
		VendorID:   alias.VendorID,
	})
}

// RemoveAlias unmaps one alias from the vendor.
//
// DELETE /api/v1/vendors/:id/aliases
func (h *VendorHandler) RemoveAlias(c *gin.Context) {
	var req AliasHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if err := h.vendorService.RemoveAlias(c.Request.Context(), c.Param("id"), billing.SourceType(req.SourceType), req.Alias); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UnmatchedAliases lists raw names seen in a source that map to no vendor.
//
// GET /api/v1/aliases/unmatched?source_type=shipping_stats
func (h *VendorHandler) UnmatchedAliases(c *gin.Context) {
	sourceType := billing.SourceType(c.Query("source_type"))
	if !sourceType.IsValid() {
		h.BadRequest(c, "Unknown source type")
		return
	}

	names, err := h.vendorService.UnmatchedAliases(c.Request.Context(), sourceType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	h.Success(c, gin.H{"source_type": sourceType, "aliases": names})
}

// AvailableAliases lists raw names a vendor could still claim for a source.
//
// GET /api/v1/aliases/available?source_type=shipping_stats&vendor_id=V1
func (h *VendorHandler) AvailableAliases(c *gin.Context) {
	sourceType := billing.SourceType(c.Query("source_type"))
	if !sourceType.IsValid() {
		h.BadRequest(c, "Unknown source type")
		return
	}
	vendorID := c.Query("vendor_id")
	if vendorID == "" {
		h.BadRequest(c, "vendor_id is required")
		return
	}

	names, err := h.vendorService.AvailableAliases(c.Request.Context(), sourceType, vendorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	h.Success(c, gin.H{"source_type": sourceType, "vendor_id": vendorID, "aliases": names})
}

// AliasOwners reports every vendor currently claiming an alias.
//
// GET /api/v1/aliases/owners?source_type=shipping_stats&alias=foo
func (h *VendorHandler) AliasOwners(c *gin.Context) {
	sourceType := billing.SourceType(c.Query("source_type"))
	if !sourceType.IsValid() {
		h.BadRequest(c, "Unknown source type")
		return
	}
	alias := c.Query("alias")
	if alias == "" {
		h.BadRequest(c, "alias is required")
		return
	}

	owners, err := h.vendorService.AliasOwners(c.Request.Context(), sourceType, alias)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAliasDTOs(owners))
}
