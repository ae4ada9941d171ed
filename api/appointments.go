package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rimjeddah/consulate-api/internal/domain"
	"github.com/rimjeddah/consulate-api/internal/repository"
	"github.com/rimjeddah/consulate-api/internal/service/allocation"
	"github.com/rimjeddah/consulate-api/internal/service/tracking"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("slotdate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("2006-01-02", fl.Field().String())
			return err == nil
		})
	}
}

type AppointmentHandler struct {
	alloc    allocation.AllocationUseCase
	tracking tracking.TrackingUseCase
}

type createAppointmentRequest struct {
	ServiceID           string `json:"serviceId" binding:"required"`
	Name                string `json:"name" binding:"required"`
	PassportNumber      string `json:"passportNumber" binding:"required"`
	Phone               string `json:"phone" binding:"required"`
	Email               string `json:"email" binding:"required,email"`
	Date                string `json:"date" binding:"required,slotdate"`
	Time                string `json:"time" binding:"required"`
	PassportServiceType string `json:"passportServiceType" binding:"omitempty,oneof=new renewal lost"`
	PassportPhoto       string `json:"passportPhoto"`
}

type appointmentResponse struct {
	ID                  string         `json:"id"`
	ServiceID           string         `json:"serviceId"`
	Name                string         `json:"name"`
	Date                string         `json:"date"`
	Time                string         `json:"time"`
	Status              string         `json:"status"`
	CreatedAt           string         `json:"createdAt"`
	PassportServiceType string         `json:"passportServiceType,omitempty"`
	Stages              *domain.Stages `json:"stages,omitempty"`
}

func toAppointmentResponse(a *domain.Appointment, withStages bool) appointmentResponse {
	resp := appointmentResponse{
		ID:                  a.ID,
		ServiceID:           a.ServiceID,
		Name:                a.Name,
		Date:                a.Date,
		Time:                a.TimeSlot,
		Status:              string(a.Status),
		CreatedAt:           a.CreatedAt.Format(time.RFC3339),
		PassportServiceType: string(a.PassportServiceType),
	}
	if withStages {
		stages := domain.ProjectStage(a.Status)
		resp.Stages = &stages
	}
	return resp
}

func NewAppointmentHandler(alloc allocation.AllocationUseCase, trackingSvc tracking.TrackingUseCase) *AppointmentHandler {
	return &AppointmentHandler{alloc: alloc, tracking: trackingSvc}
}

func (h *AppointmentHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:ref", h.track)
}

func (h *AppointmentHandler) create(c *gin.Context) {
	var req createAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	appt, err := h.alloc.CreateAppointment(c.Request.Context(), allocation.CreateAppointmentInput{
		ServiceID:           req.ServiceID,
		Name:                req.Name,
		PassportNumber:      req.PassportNumber,
		Phone:               req.Phone,
		Email:               req.Email,
		Date:                req.Date,
		Time:                req.Time,
		PassportServiceType: req.PassportServiceType,
		PassportPhoto:       req.PassportPhoto,
	})
	if err != nil {
		h.writeCreateError(c, req, err)
		return
	}

	c.JSON(http.StatusCreated, toAppointmentResponse(appt, false))
}

func (h *AppointmentHandler) writeCreateError(c *gin.Context, req createAppointmentRequest, err error) {
	switch {
	case errors.Is(err, repository.ErrSlotFull):
		// Offer open slots on the same date alongside the rejection.
		suggestions, sErr := h.alloc.SuggestAlternatives(c.Request.Context(), req.Date, req.Time)
		if sErr != nil {
			suggestions = []string{}
		}
		c.JSON(http.StatusConflict, gin.H{
			"error":       "slot_full",
			"message":     "the selected time slot is fully booked",
			"suggestions": suggestions,
		})
	case errors.Is(err, allocation.ErrUnknownService),
		errors.Is(err, allocation.ErrUnknownSlot),
		errors.Is(err, allocation.ErrInvalidDate),
		errors.Is(err, allocation.ErrInvalidPassportType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "booking failed"})
	}
}

func (h *AppointmentHandler) track(c *gin.Context) {
	ref := c.Param("ref")
	appt, err := h.tracking.FindByRef(c.Request.Context(), ref)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	c.JSON(http.StatusOK, toAppointmentResponse(appt, true))
}
