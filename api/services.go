package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rimjeddah/consulate-api/config"
)

// ServicesHandler exposes the consular service catalog: fixed
// configuration, read-only for every caller.
type ServicesHandler struct {
	catalog config.CatalogConfig
}

func NewServicesHandler(catalog config.CatalogConfig) *ServicesHandler {
	return &ServicesHandler{catalog: catalog}
}

func (h *ServicesHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id/requirements", h.requirements)
}

func (h *ServicesHandler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Services)
}

func (h *ServicesHandler) requirements(c *gin.Context) {
	svc, ok := h.catalog.Service(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown service"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id": svc.ID,
		"ar": svc.RequirementsAr,
		"en": svc.RequirementsEn,
	})
}
