package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h0rv/ghgantt/internal/auth"
	"github.com/h0rv/ghgantt/internal/domain"
	"github.com/h0rv/ghgantt/internal/export"
	"github.com/h0rv/ghgantt/internal/gh"
	"github.com/rs/zerolog"
)

// Handlers serves the HTTP API.
type Handlers struct {
	cfg     Config
	log     zerolog.Logger
	builder reportBuilder
}

// NewHandlers creates the handlers.
func NewHandlers(cfg Config, log zerolog.Logger, builder reportBuilder) *Handlers {
	return &Handlers{cfg: cfg, log: log, builder: builder}
}

// Healthz reports liveness.
func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Timeline builds and renders a repository timeline.
// The format query parameter selects json (default), csv or png.
func (h *Handlers) Timeline(c *gin.Context) {
	ctx := c.Request.Context()

	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatJSON)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	repo, err := domain.ParseRepo(c.Param("owner") + "/" + c.Param("repo"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.builder.Build(ctx, repo, h.credential(c))
	if err != nil {
		status := statusFor(err)
		h.log.Warn().Err(err).Str("repo", repo.String()).Int("status", status).Msg("timeline build failed")
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	data, err := export.Render(format, export.Input{
		Repo:        r.Repo,
		GeneratedAt: r.GeneratedAt,
		Today:       r.Result.Today,
		Result:      r.Result,
	})
	if errors.Is(err, export.ErrNoEntries) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if format != export.FormatJSON {
		c.Header("Content-Disposition", `attachment; filename="`+export.FileName(repo, format)+`"`)
	}
	c.Data(http.StatusOK, format.ContentType(), data)
}

// credential prefers a bearer token on the request over the server default.
func (h *Handlers) credential(c *gin.Context) auth.Credential {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && strings.TrimSpace(token) != "" {
		return auth.Credential(strings.TrimSpace(token))
	}
	return h.cfg.DefaultCredential
}

// statusFor maps a build failure onto an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, gh.ErrUnauthenticated) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, domain.ErrInvalidRepo) {
		return http.StatusBadRequest
	}

	var apiErr *gh.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.RateLimited():
			return http.StatusTooManyRequests
		case apiErr.StatusCode == http.StatusUnauthorized,
			apiErr.StatusCode == http.StatusForbidden,
			apiErr.StatusCode == http.StatusNotFound:
			return apiErr.StatusCode
		default:
			return http.StatusBadGateway
		}
	}

	return http.StatusInternalServerError
}
