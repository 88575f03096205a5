// Package server exposes timelines over HTTP for chart front-ends.
package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/h0rv/ghgantt/internal/auth"
	"github.com/h0rv/ghgantt/internal/domain"
	"github.com/h0rv/ghgantt/internal/report"
	"github.com/rs/zerolog"
)

type reportBuilder interface {
	Build(ctx context.Context, repo domain.Repo, cred auth.Credential) (*report.Report, error)
}

// Config configures the router.
type Config struct {
	// Credential used when a request carries no Authorization header
	DefaultCredential auth.Credential
	Release           bool
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(cfg Config, log zerolog.Logger, builder reportBuilder) *gin.Engine {
	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	h := NewHandlers(cfg, log, builder)

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/repos/:owner/:repo/timeline", h.Timeline)
	}

	return r
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(started)).
			Msg("http")
	}
}
