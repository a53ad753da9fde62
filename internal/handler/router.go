package handler

import (
	"slices"

	"github.com/Popolzen/shortlink/internal/config"
	"github.com/Popolzen/shortlink/internal/logger"
	"github.com/Popolzen/shortlink/internal/middleware/compressor"
	"github.com/Popolzen/shortlink/internal/middleware/metrics"
	"github.com/Popolzen/shortlink/internal/middleware/ratelimit"
	"github.com/Popolzen/shortlink/internal/service/shortener"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// NewRouter настраивает роуты и middleware локального API.
// reg может быть nil, тогда создаётся свой реестр метрик.
func NewRouter(svc *shortener.LinkService, cfg *config.ServerConfig, log *zap.Logger, reg *prometheus.Registry) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.New(reg).Middleware())
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	}
	if cfg.RateLimit > 0 {
		r.Use(ratelimit.New(cfg.RateLimit, cfg.RateBurst).Middleware())
	}
	r.Use(compressor.Compresser())

	r.POST("/shorten", ShortenHandler(svc, log))
	r.GET("/analytics", AnalyticsHandler(svc, log))
	r.GET("/qr", QRHandler(svc, log))
	r.GET("/metrics", metrics.Handler(reg))
	r.GET("/:code", RedirectHandler(svc, log))
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = append(cfg.AllowHeaders, "X-Request-ID")
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
