package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rimjeddah/consulate-api/api"
	"github.com/rimjeddah/consulate-api/config"
	"github.com/rimjeddah/consulate-api/internal/auth"
	"github.com/rimjeddah/consulate-api/internal/service/allocation"
	"github.com/rimjeddah/consulate-api/internal/service/tracking"
	"github.com/rs/zerolog"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Allocation allocation.AllocationUseCase
	Tracking   tracking.TrackingUseCase
	Broadcast  api.BroadcastStore
	Auth       auth.Manager
	Log        zerolog.Logger
}

// NewRouter assembles the gin engine: public portal routes, the
// tracking lookup shared with the AI assistant, and the gated admin
// surface.
func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestID(), api.Logger(deps.Log), api.CORS())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	root := router.Group("/api")
	api.NewServicesHandler(cfg.Catalog).Register(root.Group("/services"))
	api.NewSlotHandler(deps.Allocation).Register(root.Group("/slots"))
	api.NewAppointmentHandler(deps.Allocation, deps.Tracking).Register(root.Group("/appointments"))
	api.NewTickerHandler(deps.Broadcast).Register(root.Group("/ticker"))
	api.NewAdminHandler(deps.Tracking, deps.Allocation, deps.Broadcast, deps.Auth, cfg.Admin.Password, cfg.Worker.OccupancyDays).
		Register(root.Group("/admin"))

	return router
}

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	httpServer := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: NewRouter(cfg, deps),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
