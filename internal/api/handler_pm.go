package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pharma-elog-backend/internal/model"
	"pharma-elog-backend/internal/mutation"
	"pharma-elog-backend/internal/mw"
)

type createPMScheduleRequest struct {
	EquipmentID   string     `json:"equipmentId" binding:"required"`
	TaskName      string     `json:"taskName" binding:"required"`
	Frequency     string     `json:"frequency" binding:"required"`
	LastCompleted *time.Time `json:"lastCompleted"`
	NextDue       time.Time  `json:"nextDue" binding:"required"`
	Status        string     `json:"status"`
}

type updatePMScheduleRequest struct {
	TaskName      *string    `json:"taskName"`
	Frequency     *string    `json:"frequency"`
	LastCompleted *time.Time `json:"lastCompleted"`
	NextDue       *time.Time `json:"nextDue"`
	Status        *string    `json:"status"`
}

// pmScheduleResponse decorates a schedule with its derived due status. The
// due status is display-only and recomputed per request.
type pmScheduleResponse struct {
	model.PMSchedule
	DerivedStatus string `json:"derivedStatus"`
}

// ListPMSchedules handles GET /api/pm-schedules.
func (h *Handler) ListPMSchedules(c *gin.Context) {
	schedules, err := h.store.ListPMSchedules(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	now := time.Now().UTC()
	out := make([]pmScheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, pmScheduleResponse{PMSchedule: s, DerivedStatus: s.DerivedStatus(now)})
	}
	c.JSON(http.StatusOK, out)
}

// CreatePMSchedule handles POST /api/pm-schedules.
func (h *Handler) CreatePMSchedule(c *gin.Context) {
	actor, _ := mw.ActingUser(c)

	var req createPMScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sched, err := h.interceptor.CreatePMSchedule(c.Request.Context(), actor, mutation.PMScheduleInput{
		EquipmentID:   req.EquipmentID,
		TaskName:      req.TaskName,
		Frequency:     req.Frequency,
		LastCompleted: req.LastCompleted,
		NextDue:       req.NextDue,
		Status:        req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pmScheduleResponse{PMSchedule: *sched, DerivedStatus: sched.DerivedStatus(time.Now().UTC())})
}

// UpdatePMSchedule handles PATCH /api/pm-schedules/:id.
func (h *Handler) UpdatePMSchedule(c *gin.Context) {
	actor, _ := mw.ActingUser(c)

	var req updatePMScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sched, err := h.interceptor.UpdatePMSchedule(c.Request.Context(), actor, c.Param("id"), mutation.PMSchedulePatch{
		TaskName:      req.TaskName,
		Frequency:     req.Frequency,
		LastCompleted: req.LastCompleted,
		NextDue:       req.NextDue,
		Status:        req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pmScheduleResponse{PMSchedule: *sched, DerivedStatus: sched.DerivedStatus(time.Now().UTC())})
}
