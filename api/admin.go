package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rimjeddah/consulate-api/internal/auth"
	"github.com/rimjeddah/consulate-api/internal/domain"
	"github.com/rimjeddah/consulate-api/internal/repository"
	"github.com/rimjeddah/consulate-api/internal/service/allocation"
	"github.com/rimjeddah/consulate-api/internal/service/tracking"
)

// BroadcastStore holds the single news-ticker message.
type BroadcastStore interface {
	GetBroadcast(ctx context.Context) (string, error)
	SetBroadcast(ctx context.Context, msg string) error
}

type AdminHandler struct {
	tracking      tracking.TrackingUseCase
	alloc         allocation.AllocationUseCase
	broadcast     BroadcastStore
	manager       auth.Manager
	password      string
	occupancyDays int
}

func NewAdminHandler(
	trackingSvc tracking.TrackingUseCase,
	alloc allocation.AllocationUseCase,
	broadcast BroadcastStore,
	manager auth.Manager,
	password string,
	occupancyDays int,
) *AdminHandler {
	return &AdminHandler{
		tracking:      trackingSvc,
		alloc:         alloc,
		broadcast:     broadcast,
		manager:       manager,
		password:      password,
		occupancyDays: occupancyDays,
	}
}

// Register mounts the login route openly and everything else behind the
// bearer-token gate.
func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.POST("/login", h.login)

	gated := router.Group("", RequireAdmin(h.manager))
	gated.GET("/appointments", h.list)
	gated.PUT("/appointments/:ref/status", h.updateStatus)
	gated.GET("/occupancy", h.occupancy)
	gated.PUT("/ticker", h.setTicker)
}

type adminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) login(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.password == "" || len(h.manager.Secret) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin auth not configured"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.manager.NewToken("admin")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AdminHandler) list(c *gin.Context) {
	appts, err := h.tracking.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	out := make([]appointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i], false))
	}
	c.JSON(http.StatusOK, out)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AdminHandler) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.tracking.UpdateStatus(c.Request.Context(), c.Param("ref"), domain.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, tracking.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		}
		return
	}

	c.JSON(http.StatusOK, toAppointmentResponse(updated, true))
}

func (h *AdminHandler) occupancy(c *gin.Context) {
	start := c.Query("start")
	if start == "" {
		start = time.Now().Format("2006-01-02")
	}

	grid, err := h.alloc.OccupancyGrid(c.Request.Context(), start, h.occupancyDays)
	if err != nil {
		if errors.Is(err, allocation.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "occupancy error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": grid})
}

type setTickerRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *AdminHandler) setTicker(c *gin.Context) {
	var req setTickerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.broadcast.SetBroadcast(c.Request.Context(), req.Message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ticker update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// TickerHandler serves the public news ticker.
type TickerHandler struct {
	broadcast BroadcastStore
}

func NewTickerHandler(broadcast BroadcastStore) *TickerHandler {
	return &TickerHandler{broadcast: broadcast}
}

func (h *TickerHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.get)
}

func (h *TickerHandler) get(c *gin.Context) {
	msg, err := h.broadcast.GetBroadcast(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "ticker unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
