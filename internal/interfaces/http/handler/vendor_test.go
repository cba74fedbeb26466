package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	billingapp "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type vendorTestMocks struct {
	vendorRepo *MockVendorRepository
	aliasRepo  *MockAliasRepository
	sourceRepo *MockSourceRowRepository
}

func setupVendorTestRouter() (*gin.Engine, *vendorTestMocks) {
	gin.SetMode(gin.TestMode)

	mocks := &vendorTestMocks{
		vendorRepo: new(MockVendorRepository),
		aliasRepo:  new(MockAliasRepository),
		sourceRepo: new(MockSourceRowRepository),
	}
	service := billingapp.NewVendorService(mocks.vendorRepo, mocks.aliasRepo, mocks.sourceRepo, nil)
	h := NewVendorHandler(service)

	router := gin.New()
	h.RegisterRoutes(router.Group("/api/v1"))
	return router, mocks
}

func TestVendorHandler_Create(t *testing.T) {
	t.Run("should create vendor with normalized rate plan", func(t *testing.T) {
		router, mocks := setupVendorTestRouter()

		mocks.vendorRepo.On("FindByID", mock.Anything, "V1").
			Return(nil, shared.ErrVendorNotFound)
		mocks.vendorRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Vendor")).
			Return(nil)

		w := postJSON(router, "/api/v1/vendors", CreateVendorHTTPRequest{
			VendorID: "V1",
			Name:     "에이스상사",
			RatePlan: "a",
			SKUGroup: "≤300",
			Flags:    ServiceFlagsDTO{Mailer: true},
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Data VendorDTO `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "V1", resp.Data.VendorID)
		assert.Equal(t, "A", resp.Data.RatePlan)
		assert.Equal(t, "≤300", resp.Data.SKUGroup)
		assert.True(t, resp.Data.Active)
		assert.True(t, resp.Data.Flags.Mailer)

		mocks.vendorRepo.AssertExpectations(t)
	})

	t.Run("should return 409 for duplicate vendor ID", func(t *testing.T) {
		router, mocks := setupVendorTestRouter()

		mocks.vendorRepo.On("FindByID", mock.Anything, "V1").
			Return(testVendor("V1"), nil)

		w := postJSON(router, "/api/v1/vendors", CreateVendorHTTPRequest{
			VendorID: "V1",
			Name:     "에이스상사",
			SKUGroup: "≤100",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("should return 400 for unknown SKU group", func(t *testing.T) {
		router, mocks := setupVendorTestRouter()

		mocks.vendorRepo.On("FindByID", mock.Anything, "V1").
			Return(nil, shared.ErrVendorNotFound)

		w := postJSON(router, "/api/v1/vendors", CreateVendorHTTPRequest{
			VendorID: "V1",
			Name:     "에이스상사",
			SKUGroup: "huge",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should return 400 for missing name", func(t *testing.T) {
		router, _ := setupVendorTestRouter()

		w := postJSON(router, "/api/v1/vendors", map[string]any{
			"vendor_id": "V1",
			"sku_group": "≤100",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVendorHandler_Update(t *testing.T) {
	t.Run("should update attributes and deactivate", func(t *testing.T) {
		router, mocks := setupVendorTestRouter()

		mocks.vendorRepo.On("FindByID", mock.Anything, "V1").Return(testVendor("V1"), nil)
		mocks.vendorRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Vendor")).
			Return(nil)

		body, _ := json.Marshal(UpdateVendorHTTPRequest{
			Name:     "에이스상사 (신)",
			RatePlan: "A",
			SKUGroup: "≤500",
			Active:   false,
		})
		req, _ := http.NewRequest(http.MethodPut, "/api/v1/vendors/V1", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data VendorDTO `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "에이스상사 (신)", resp.Data.Name)
		assert.Equal(t, "A", resp.Data.RatePlan)
		assert.False(t, resp.Data.Active)
	})
}

func TestVendorHandler_List(t *testing.T) {
	t.Run("should pass through active_only", func(t *testing.T) {
		router, mocks := setupVendorTestRouter()

		mocks.vendorRepo.On("FindAll", mock.Anything, true).
			Return([]billing.Vendor{*testVendor("V1")}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/vendors?active_only=true", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data []VendorDTO `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 1)
		mocks.vendorRepo.AssertExpectations(t)
	})
}

func TestVendorHandler_Delete(t *testing.T) {
	t.Run("should drop aliases with the vendor", func(t *testing.T) {
		router, mocks := setupVendorTestRouter()

		mocks.vendorRepo.On("FindByID", mock.Anything, "V1").Return(testVendor("V1"), nil)
		mocks.aliasRepo.On("DeleteByVendor", mock.Anything, "V1").Return(nil)
		mocks.vendorRepo.On("Delete", mock.Anything, "V1").Return(nil)

		req, _ := http.NewRequest(http.MethodDelete, "/api/v1/vendors/V1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mocks.aliasRepo.AssertExpectations(t)
	})
}

func TestVendorHandler_AssignAlias(t *testing.T) {
	t.Run("should normalize and assign", func(t *testing.T) {
		router, mocks := setupVendorTestRouter()

		mocks.vendorRepo.On("FindByID", mock.Anything, "V1").Return(testVendor("V1"), nil)
		mocks.aliasRepo.On("FindOwners", mock.Anything, billing.SourceShippingStats, "에이스 상사").
			Return([]billing.Alias{}, nil)
		mocks.aliasRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Alias")).
			Return(nil)

		w := postJSON(router, "/api/v1/vendors/V1/aliases", AliasHTTPRequest{
			Alias:      "  에이스 상사  ",
			SourceType: "shipping_stats",
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Data AliasDTO `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "에이스 상사", resp.Data.Alias)
		assert.Equal(t, "shipping_stats", resp.Data.SourceType)
		assert.Equal(t, "V1", resp.Data.VendorID)
	})

	t.Run("should return 409 when another vendor owns it", func(t *testing.T) {
		router, mocks := setupVendorTestRouter()

		mocks.vendorRepo.On("FindByID", mock.Anything, "V1").Return(testVendor("V1"), nil)
		mocks.aliasRepo.On("FindOwners", mock.Anything, billing.SourceShippingStats, "에이스 상사").
			Return([]billing.Alias{{VendorID: "V2", SourceType: billing.SourceShippingStats, Alias: "에이스 상사"}}, nil)

		w := postJSON(router, "/api/v1/vendors/V1/aliases", AliasHTTPRequest{
			Alias:      "에이스 상사",
			SourceType: "shipping_stats",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("should be idempotent for the same vendor", func(t *testing.T) {
		router, mocks := setupVendorTestRouter()

		mocks.vendorRepo.On("FindByID", mock.Anything, "V1").Return(testVendor("V1"), nil)
		mocks.aliasRepo.On("FindOwners", mock.Anything, billing.SourceShippingStats, "에이스 상사").
			Return([]billing.Alias{{VendorID: "V1", SourceType: billing.SourceShippingStats, Alias: "에이스 상사"}}, nil)

		w := postJSON(router, "/api/v1/vendors/V1/aliases", AliasHTTPRequest{
			Alias:      "에이스 상사",
			SourceType: "shipping_stats",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		mocks.aliasRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("should return 400 for unknown source type", func(t *testing.T) {
		router, mocks := setupVendorTestRouter()

		mocks.vendorRepo.On("FindByID", mock.Anything, "V1").Return(testVendor("V1"), nil)

		w := postJSON(router, "/api/v1/vendors/V1/aliases", AliasHTTPRequest{
			Alias:      "에이스 상사",
			SourceType: "mystery_feed",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVendorHandler_UnmatchedAliases(t *testing.T) {
	t.Run("should list names no vendor owns", func(t *testing.T) {
		router, mocks := setupVendorTestRouter()

		mocks.sourceRepo.On("DistinctNames", mock.Anything, billing.SourceShippingStats).
			Return([]string{"에이스 상사", "미지의상회"}, nil)
		mocks.aliasRepo.On("MappedAliases", mock.Anything, billing.SourceShippingStats, "").
			Return([]string{"에이스 상사"}, nil)
		mocks.vendorRepo.On("FindAll", mock.Anything, false).
			Return([]billing.Vendor{}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/aliases/unmatched?source_type=shipping_stats", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data struct {
				Aliases []string `json:"aliases"`
			} `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"미지의상회"}, resp.Data.Aliases)
	})

	t.Run("should reject missing source type", func(t *testing.T) {
		router, _ := setupVendorTestRouter()

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/aliases/unmatched", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVendorHandler_AvailableAliases(t *testing.T) {
	t.Run("should exclude names taken by other vendors", func(t *testing.T) {
		router, mocks := setupVendorTestRouter()

		mocks.vendorRepo.On("FindByID", mock.Anything, "V1").Return(testVendor("V1"), nil)
		mocks.sourceRepo.On("DistinctNames", mock.Anything, billing.SourceInboundSlip).
			Return([]string{"에이스 상사", "타사명의"}, nil)
		mocks.aliasRepo.On("MappedAliases", mock.Anything, billing.SourceInboundSlip, "V1").
			Return([]string{"타사명의"}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/aliases/available?source_type=inbound_slip&vendor_id=V1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data struct {
				Aliases []string `json:"aliases"`
			} `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"에이스 상사"}, resp.Data.Aliases)
	})

	t.Run("should require vendor_id", func(t *testing.T) {
		router, _ := setupVendorTestRouter()

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/aliases/available?source_type=inbound_slip", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
