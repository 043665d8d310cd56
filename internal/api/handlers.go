// Package api exposes a small operational HTTP surface alongside the bot:
// liveness/readiness probes and read-only admin endpoints.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hawaesanda/BotFTM-master/internal/db"
	"github.com/hawaesanda/BotFTM-master/internal/registry"
)

// Handler holds dependencies for the ops endpoints.
type Handler struct {
	db  *db.Database
	reg *registry.Registry
}

// NewHandler creates an ops handler.
func NewHandler(database *db.Database, reg *registry.Registry) *Handler {
	return &Handler{db: database, reg: reg}
}

// Health reports database reachability.
func (h *Handler) Health(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database not initialized"})
		return
	}
	if err := h.db.Health(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ListUsers returns the registered users from the access registry.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.reg.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read registry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}
