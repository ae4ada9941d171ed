package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rimjeddah/consulate-api/internal/service/allocation"
)

type SlotHandler struct {
	alloc allocation.AllocationUseCase
}

func NewSlotHandler(alloc allocation.AllocationUseCase) *SlotHandler {
	return &SlotHandler{alloc: alloc}
}

func (h *SlotHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.availability)
}

// availability powers the booking form: per-slot full/open flags plus
// up to three open alternatives.
func (h *SlotHandler) availability(c *gin.Context) {
	date := c.Query("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	slots, err := h.alloc.SlotAvailability(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "availability error"})
		return
	}

	suggestions, err := h.alloc.SuggestAlternatives(c.Request.Context(), date, c.Query("exclude"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "availability error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":        date,
		"slots":       slots,
		"suggestions": suggestions,
	})
}
