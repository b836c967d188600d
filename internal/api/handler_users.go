package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharma-elog-backend/internal/model"
	"pharma-elog-backend/internal/mutation"
	"pharma-elog-backend/internal/mw"
)

type createUserRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	FullName   string `json:"fullName" binding:"required"`
	Role       string `json:"role" binding:"required"`
	Department string `json:"department"`
	IsActive   *bool  `json:"isActive"`
}

type updateUserRequest struct {
	Password   *string `json:"password"`
	FullName   *string `json:"fullName"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"isActive"`
}

// ListUsers handles GET /api/users. Responses never carry password hashes.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	c.JSON(http.StatusOK, out)
}

// CreateUser handles POST /api/users. Admin only; enforced in the
// interceptor.
func (h *Handler) CreateUser(c *gin.Context) {
	actor, _ := mw.ActingUser(c)

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	user, err := h.interceptor.CreateUser(c.Request.Context(), actor, mutation.UserInput{
		Username:   req.Username,
		Password:   req.Password,
		FullName:   req.FullName,
		Role:       model.Role(req.Role),
		Department: req.Department,
		IsActive:   active,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user.Summary())
}

// UpdateUser handles PATCH /api/users/:id. Admin only; accounts are
// deactivated via isActive, never deleted.
func (h *Handler) UpdateUser(c *gin.Context) {
	actor, _ := mw.ActingUser(c)

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := mutation.UserPatch{
		Password:   req.Password,
		FullName:   req.FullName,
		Department: req.Department,
		IsActive:   req.IsActive,
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		patch.Role = &role
	}

	user, err := h.interceptor.UpdateUser(c.Request.Context(), actor, c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Summary())
}
