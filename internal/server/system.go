package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func (s *Server) RegisterSystemRoutes() {
	s.engine.GET("/healthz", s.GetHealth)
	s.engine.GET("/ready", s.GetReadiness)

	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer}
	if s.gatherer != nil {
		gatherers = append(gatherers, s.gatherer)
	}
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})))
}

func (s *Server) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetReadiness reports whether the store database answers.
func (s *Server) GetReadiness(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		s.log.Warn("store database not ready", zap.Error(err))
		respondError(c, http.StatusServiceUnavailable, "database_unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
