package handlers

import (
	"context"
	"errors"
	"net/http"

	"repairhub/models"
	"repairhub/services/catalog"
	"repairhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogService is the read side used by the public catalogue endpoints.
type CatalogService interface {
	Cities(ctx context.Context) ([]models.CitySummary, error)
	LookupPostcode(ctx context.Context, raw string) (*models.ServiceCity, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Brands(ctx context.Context, categoryID string) ([]models.Brand, error)
	Devices(ctx context.Context, brandID string) ([]models.Device, error)
	Faults(ctx context.Context, deviceID string) ([]models.Fault, error)
	ServiceTypes(ctx context.Context) ([]models.ServiceType, error)
	DurationTypes(ctx context.Context) ([]models.DurationType, error)
}

type CatalogHandler struct {
	Service CatalogService
}

func NewCatalogHandler(svc CatalogService) *CatalogHandler {
	return &CatalogHandler{Service: svc}
}

// GetCitiesHandler lists service cities.
func (h *CatalogHandler) GetCitiesHandler(c *gin.Context) {
	cities, err := h.Service.Cities(c.Request.Context())
	if err != nil {
		getLogger(c).Error("Failed to list cities", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cities"})
		return
	}
	c.JSON(http.StatusOK, cities)
}

// LookupPostcodeHandler resolves ?pincode= to its service city.
func (h *CatalogHandler) LookupPostcodeHandler(c *gin.Context) {
	raw := c.Query("pincode")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pincode is required"})
		return
	}
	city, err := h.Service.LookupPostcode(c.Request.Context(), raw)
	if errors.Is(err, catalog.ErrNotServiced) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not available in this area."})
		return
	}
	if err != nil {
		getLogger(c).Error("Postcode lookup failed", zap.String("pincode", raw), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": utils.TryAgainMessage})
		return
	}
	c.JSON(http.StatusOK, city)
}

// respondList writes a catalogue listing or a 500.
func respondList[T any](c *gin.Context, what string, list []T, err error) {
	if err != nil {
		getLogger(c).Error("Failed to list "+what, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch " + what})
		return
	}
	if list == nil {
		list = []T{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *CatalogHandler) GetCategoriesHandler(c *gin.Context) {
	list, err := h.Service.Categories(c.Request.Context())
	respondList(c, "categories", list, err)
}

func (h *CatalogHandler) GetBrandsHandler(c *gin.Context) {
	categoryID := c.Query("category_id")
	if categoryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_id is required"})
		return
	}
	list, err := h.Service.Brands(c.Request.Context(), categoryID)
	respondList(c, "brands", list, err)
}

func (h *CatalogHandler) GetDevicesHandler(c *gin.Context) {
	brandID := c.Query("brand_id")
	if brandID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "brand_id is required"})
		return
	}
	list, err := h.Service.Devices(c.Request.Context(), brandID)
	respondList(c, "devices", list, err)
}

func (h *CatalogHandler) GetFaultsHandler(c *gin.Context) {
	deviceID := c.Query("device_id")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device_id is required"})
		return
	}
	list, err := h.Service.Faults(c.Request.Context(), deviceID)
	respondList(c, "faults", list, err)
}

func (h *CatalogHandler) GetServiceTypesHandler(c *gin.Context) {
	list, err := h.Service.ServiceTypes(c.Request.Context())
	respondList(c, "service types", list, err)
}

func (h *CatalogHandler) GetDurationTypesHandler(c *gin.Context) {
	list, err := h.Service.DurationTypes(c.Request.Context())
	respondList(c, "duration types", list, err)
}
