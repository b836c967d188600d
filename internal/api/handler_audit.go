package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pharma-elog-backend/internal/store"
)

// GetAuditTrail handles GET /api/audit?limit=N, newest records first.
func GetAuditTrail(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 100
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}

		records, err := s.ListAuditRecords(c.Request.Context(), limit)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

// GetDashboardStats handles GET /api/dashboard/stats.
func GetDashboardStats(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := s.GetDashboardStats(c.Request.Context(), time.Now().UTC())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
