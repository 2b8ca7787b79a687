package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	telemetrydomain "github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"go.uber.org/zap"
)

func (s *Server) RegisterTelemetryRoutes() {
	group := s.engine.Group("/telemetry")
	group.GET("", s.GetTelemetry)
	group.POST("/collect", s.CollectTelemetry)
}

// GetTelemetry serves the cached snapshot, or a fresh one on a miss.
func (s *Server) GetTelemetry(c *gin.Context) {
	snap, err := s.telemetrySvc.Get(c.Request.Context())
	if err != nil {
		s.respondTelemetryError(c, err)
		return
	}
	respondData(c, snap)
}

func (s *Server) CollectTelemetry(c *gin.Context) {
	snap, err := s.telemetrySvc.Collect(c.Request.Context())
	if err != nil {
		s.respondTelemetryError(c, err)
		return
	}
	respondData(c, snap)
}

func (s *Server) respondTelemetryError(c *gin.Context, err error) {
	s.log.Error("telemetry request failed", zap.String("path", c.FullPath()), zap.Error(err))
	if errors.Is(err, telemetrydomain.ErrCollectFailed) {
		respondError(c, http.StatusServiceUnavailable, telemetrydomain.ErrCollectFailed.Error())
		return
	}
	respondError(c, http.StatusInternalServerError, "internal_error")
}
