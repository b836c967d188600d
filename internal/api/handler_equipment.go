package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharma-elog-backend/internal/model"
	"pharma-elog-backend/internal/mutation"
	"pharma-elog-backend/internal/mw"
)

type createEquipmentRequest struct {
	EquipmentID         string `json:"equipmentId" binding:"required"`
	Name                string `json:"name" binding:"required"`
	Type                string `json:"type" binding:"required"`
	Location            string `json:"location" binding:"required"`
	Status              string `json:"status"`
	Manufacturer        string `json:"manufacturer"`
	Model               string `json:"model"`
	SerialNumber        string `json:"serialNumber"`
	QualificationStatus string `json:"qualificationStatus"`
	PMFrequency         string `json:"pmFrequency"`
	Description         string `json:"description"`
}

type updateEquipmentRequest struct {
	Name                *string `json:"name"`
	Type                *string `json:"type"`
	Location            *string `json:"location"`
	Status              *string `json:"status"`
	Manufacturer        *string `json:"manufacturer"`
	Model               *string `json:"model"`
	SerialNumber        *string `json:"serialNumber"`
	QualificationStatus *string `json:"qualificationStatus"`
	PMFrequency         *string `json:"pmFrequency"`
	Description         *string `json:"description"`
}

// ListEquipment handles GET /api/equipment.
func (h *Handler) ListEquipment(c *gin.Context) {
	list, err := h.store.ListEquipment(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetEquipment handles GET /api/equipment/:id.
func (h *Handler) GetEquipment(c *gin.Context) {
	equip, err := h.store.GetEquipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, equip)
}

// CreateEquipment handles POST /api/equipment.
func (h *Handler) CreateEquipment(c *gin.Context) {
	actor, _ := mw.ActingUser(c)

	var req createEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	equip, err := h.interceptor.CreateEquipment(c.Request.Context(), actor, mutation.EquipmentInput{
		EquipmentID:         req.EquipmentID,
		Name:                req.Name,
		Type:                req.Type,
		Location:            req.Location,
		Status:              model.EquipmentStatus(req.Status),
		Manufacturer:        req.Manufacturer,
		Model:               req.Model,
		SerialNumber:        req.SerialNumber,
		QualificationStatus: req.QualificationStatus,
		PMFrequency:         req.PMFrequency,
		Description:         req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, equip)
}

// UpdateEquipment handles PATCH /api/equipment/:id.
func (h *Handler) UpdateEquipment(c *gin.Context) {
	actor, _ := mw.ActingUser(c)

	var req updateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := mutation.EquipmentPatch{
		Name:                req.Name,
		Type:                req.Type,
		Location:            req.Location,
		Manufacturer:        req.Manufacturer,
		Model:               req.Model,
		SerialNumber:        req.SerialNumber,
		QualificationStatus: req.QualificationStatus,
		PMFrequency:         req.PMFrequency,
		Description:         req.Description,
	}
	if req.Status != nil {
		status := model.EquipmentStatus(*req.Status)
		patch.Status = &status
	}

	equip, err := h.interceptor.UpdateEquipment(c.Request.Context(), actor, c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, equip)
}

// DeleteEquipment handles DELETE /api/equipment/:id. Assets referenced by
// log entries are marked Offline instead of removed; the response states
// which branch was taken.
func (h *Handler) DeleteEquipment(c *gin.Context) {
	actor, _ := mw.ActingUser(c)

	outcome, err := h.interceptor.DeleteEquipment(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	switch outcome {
	case mutation.MarkedOffline:
		c.JSON(http.StatusOK, gin.H{"outcome": outcome, "message": "Equipment has log entries; marked Offline instead of deleted"})
	default:
		c.JSON(http.StatusOK, gin.H{"outcome": outcome, "message": "Equipment deleted"})
	}
}
