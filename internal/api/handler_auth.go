package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pharma-elog-backend/internal/apperr"
	"pharma-elog-backend/internal/auth"
	"pharma-elog-backend/internal/metrics"
	"pharma-elog-backend/internal/model"
	"pharma-elog-backend/internal/mw"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login. A successful login issues a session
// token and appends a LOGIN audit record; if the record cannot be written
// the login fails.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
		return
	}

	user, err := h.store.FindUserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		var notFound *apperr.NotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		writeError(c, err)
		return
	}

	if !user.IsActive {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is inactive"})
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	err = h.store.DB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		_, err := h.recorder.Record(tx, user.ID, model.AuditLogin, "Session", "", nil, nil, "")
		return err
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		writeError(c, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		writeError(c, &apperr.PersistenceError{Op: "issue session token", Err: err})
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	c.SetCookie(mw.SessionCookie, token, h.cookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, user.Summary())
}

// Logout handles POST /api/auth/logout. The session token is stateless, so
// logout clears the cookie and records the LOGOUT event.
func (h *Handler) Logout(c *gin.Context) {
	actor, ok := mw.ActingUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.store.DB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		_, err := h.recorder.Record(tx, actor.ID, model.AuditLogout, "Session", "", nil, nil, "")
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.SetCookie(mw.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// CurrentUser handles GET /api/auth/me.
func (h *Handler) CurrentUser(c *gin.Context) {
	actor, ok := mw.ActingUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.store.FindUserByID(c.Request.Context(), actor.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Summary())
}
