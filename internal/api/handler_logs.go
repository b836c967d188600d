package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pharma-elog-backend/internal/lifecycle"
	"pharma-elog-backend/internal/model"
	"pharma-elog-backend/internal/mutation"
	"pharma-elog-backend/internal/mw"
)

type createLogRequest struct {
	EquipmentID  string     `json:"equipmentId" binding:"required"`
	ActivityType string     `json:"activityType" binding:"required"`
	StartTime    time.Time  `json:"startTime" binding:"required"`
	EndTime      *time.Time `json:"endTime"`
	Description  string     `json:"description" binding:"required"`
	BatchNumber  string     `json:"batchNumber"`
	Readings     string     `json:"readings"`
}

type updateLogRequest struct {
	EquipmentID  *string    `json:"equipmentId"`
	ActivityType *string    `json:"activityType"`
	StartTime    *time.Time `json:"startTime"`
	EndTime      *time.Time `json:"endTime"`
	Description  *string    `json:"description"`
	BatchNumber  *string    `json:"batchNumber"`
	Readings     *string    `json:"readings"`
}

// signatureRequest carries an electronic signature: the declared signer's
// credentials plus the reason for the transition.
type signatureRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

// ListLogs handles GET /api/logs.
func (h *Handler) ListLogs(c *gin.Context) {
	logs, err := h.store.ListLogEntries(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// GetLog handles GET /api/logs/:id.
func (h *Handler) GetLog(c *gin.Context) {
	entry, err := h.store.GetLogEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// CreateLog handles POST /api/logs. New entries start in Draft.
func (h *Handler) CreateLog(c *gin.Context) {
	actor, _ := mw.ActingUser(c)

	var req createLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.engine.Create(c.Request.Context(), actor, lifecycle.CreateInput{
		EquipmentID:  req.EquipmentID,
		ActivityType: model.ActivityType(req.ActivityType),
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Description:  req.Description,
		BatchNumber:  req.BatchNumber,
		Readings:     req.Readings,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateLog handles PATCH /api/logs/:id. Only Draft entries are editable.
func (h *Handler) UpdateLog(c *gin.Context) {
	actor, _ := mw.ActingUser(c)

	var req updateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := mutation.LogEntryPatch{
		EquipmentID: req.EquipmentID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
		BatchNumber: req.BatchNumber,
		Readings:    req.Readings,
	}
	if req.ActivityType != nil {
		at := model.ActivityType(*req.ActivityType)
		patch.ActivityType = &at
	}

	entry, err := h.interceptor.UpdateLogEntry(c.Request.Context(), actor, c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// SubmitLog handles POST /api/logs/:id/submit.
func (h *Handler) SubmitLog(c *gin.Context) {
	var req signatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, password, and reason required for submission"})
		return
	}

	entry, err := h.engine.Submit(c.Request.Context(), c.Param("id"), req.Username, req.Password, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ApproveLog handles POST /api/logs/:id/approve. The signer must hold the
// QA or Admin role.
func (h *Handler) ApproveLog(c *gin.Context) {
	var req signatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, password, and reason required for approval"})
		return
	}

	entry, err := h.engine.Approve(c.Request.Context(), c.Param("id"), req.Username, req.Password, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}
