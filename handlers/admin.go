package handlers

import (
	"errors"
	"net/http"

	agentRepo "repairhub/database/repository/agent"
	catalogRepo "repairhub/database/repository/catalog"
	cityRepo "repairhub/database/repository/city"
	"repairhub/services/admin"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	Service admin.AdminService
}

func NewAdminHandler(svc admin.AdminService) *AdminHandler {
	return &AdminHandler{Service: svc}
}

func writeAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, admin.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, admin.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, cityRepo.ErrNotFound), errors.Is(err, catalogRepo.ErrNotFound), errors.Is(err, agentRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		zap.L().Error("Admin request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *AdminHandler) CreateCity(c *gin.Context) {
	var in admin.CityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	city, err := h.Service.CreateCity(c.Request.Context(), in)
	if err != nil {
		writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, city)
}

func (h *AdminHandler) UpdatePincodes(c *gin.Context) {
	var req struct {
		Pincodes []string `json:"pincodes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	codes, err := h.Service.UpdatePincodes(c.Request.Context(), c.Param("id"), req.Pincodes)
	if err != nil {
		writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pincodes": codes})
}

func (h *AdminHandler) SetCityActive(c *gin.Context) {
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active is required"})
		return
	}
	if err := h.Service.SetCityActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "City updated"})
}

func (h *AdminHandler) DeleteCity(c *gin.Context) {
	if err := h.Service.DeleteCity(c.Request.Context(), c.Param("id")); err != nil {
		writeAdminError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type nameRequest struct {
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
	BrandID    string `json:"brand_id"`
	Model      string `json:"model"`
}

func (h *AdminHandler) CreateCategory(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat, err := h.Service.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *AdminHandler) CreateBrand(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	brand, err := h.Service.CreateBrand(c.Request.Context(), req.CategoryID, req.Name)
	if err != nil {
		writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, brand)
}

func (h *AdminHandler) CreateDevice(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dev, err := h.Service.CreateDevice(c.Request.Context(), req.CategoryID, req.BrandID, req.Model)
	if err != nil {
		writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dev)
}

func (h *AdminHandler) CreateFault(c *gin.Context) {
	var in admin.FaultInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fault, err := h.Service.CreateFault(c.Request.Context(), in)
	if err != nil {
		writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fault)
}

// deleteBy adapts a delete-style service call into a handler.
func (h *AdminHandler) deleteBy(fn func(c *gin.Context, id string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fn(c, c.Param("id")); err != nil {
			writeAdminError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *AdminHandler) DeleteCategory() gin.HandlerFunc {
	return h.deleteBy(func(c *gin.Context, id string) error { return h.Service.DeleteCategory(c.Request.Context(), id) })
}

func (h *AdminHandler) DeleteBrand() gin.HandlerFunc {
	return h.deleteBy(func(c *gin.Context, id string) error { return h.Service.DeleteBrand(c.Request.Context(), id) })
}

func (h *AdminHandler) DeleteDevice() gin.HandlerFunc {
	return h.deleteBy(func(c *gin.Context, id string) error { return h.Service.DeleteDevice(c.Request.Context(), id) })
}

func (h *AdminHandler) DeactivateFault() gin.HandlerFunc {
	return h.deleteBy(func(c *gin.Context, id string) error { return h.Service.DeactivateFault(c.Request.Context(), id) })
}

func (h *AdminHandler) UpdateDurationCharge(c *gin.Context) {
	var req struct {
		ExtraCharge *float64 `json:"extra_charge" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "extra_charge is required"})
		return
	}
	if err := h.Service.UpdateDurationCharge(c.Request.Context(), c.Param("id"), *req.ExtraCharge); err != nil {
		writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Duration charge updated"})
}

func (h *AdminHandler) PendingApplications(c *gin.Context) {
	apps, err := h.Service.PendingApplications(c.Request.Context())
	if err != nil {
		writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, apps)
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

func (h *AdminHandler) ApproveApplication(c *gin.Context) {
	var req reviewRequest
	_ = c.ShouldBindJSON(&req)
	agent, err := h.Service.ApproveApplication(c.Request.Context(), c.Param("id"), req.Notes)
	if err != nil {
		writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *AdminHandler) RejectApplication(c *gin.Context) {
	var req reviewRequest
	_ = c.ShouldBindJSON(&req)
	if err := h.Service.RejectApplication(c.Request.Context(), c.Param("id"), req.Notes); err != nil {
		writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application rejected"})
}

func (h *AdminHandler) SetAgentOnline(c *gin.Context) {
	var req struct {
		Online *bool `json:"is_online" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_online is required"})
		return
	}
	if err := h.Service.SetAgentOnline(c.Request.Context(), c.Param("id"), *req.Online); err != nil {
		writeAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Agent updated"})
}
