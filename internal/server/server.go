package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/railzwaylabs/subtelemetry/internal/config"
	telemetrydomain "github.com/railzwaylabs/subtelemetry/internal/telemetry/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(Run),
)

type Server struct {
	cfg      config.Config
	log      *zap.Logger
	db       *gorm.DB
	gatherer prometheus.Gatherer
	engine   *gin.Engine

	telemetrySvc telemetrydomain.Service
}

type ServerParams struct {
	fx.In

	Config       config.Config
	Log          *zap.Logger
	DB           *gorm.DB
	Gatherer     prometheus.Gatherer
	TelemetrySvc telemetrydomain.Service
}

func NewServer(p ServerParams) *Server {
	if !p.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:          p.Config,
		log:          p.Log.Named("server"),
		db:           p.DB,
		gatherer:     p.Gatherer,
		telemetrySvc: p.TelemetrySvc,
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.RequestLogger())
	s.RegisterSystemRoutes()
	s.RegisterTelemetryRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// RequestLogger logs one line per request.
func (s *Server) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Run serves HTTP for the lifetime of the application.
func Run(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.HTTP.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			s.log.Info("http server listening", zap.String("addr", srv.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
