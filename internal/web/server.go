// Package web serves the single-page UI and the JSON API over the summary
// service.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/service"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
	multipartOverhead = 1 << 20
)

//go:embed templates/*.html
var templatesFS embed.FS

type Service interface {
	Summarize(ctx context.Context, req service.Request) (*domain.SummaryResult, error)
	Models() []domain.ModelConfig
	Model(id domain.ModelID) (domain.ModelConfig, error)
	DefaultModel() domain.ModelID
	History(ctx context.Context, limit int) ([]domain.SummaryResult, error)
	Get(ctx context.Context, id string) (*domain.SummaryResult, error)
}

type Options struct {
	MaxUploadBytes int64
	CORSOrigins    []string
}

type Server struct {
	engine         *gin.Engine
	svc            Service
	maxUploadBytes int64
	log            *slog.Logger
}

func New(log *slog.Logger, svc Service, opts Options) *Server {
	s := &Server{
		engine:         gin.New(),
		svc:            svc,
		maxUploadBytes: opts.MaxUploadBytes,
		log:            log,
	}

	s.engine.HandleMethodNotAllowed = true
	s.engine.MaxMultipartMemory = opts.MaxUploadBytes + multipartOverhead
	s.engine.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestLogger(log))

	if len(opts.CORSOrigins) > 0 {
		s.engine.Use(cors.New(cors.Config{
			AllowOrigins: opts.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{"Origin", "Content-Type"},
			ExposeHeaders: []string{
				"Content-Disposition",
				"Content-Length",
			},
		}))
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.index)
	s.engine.GET("/healthz", s.healthz)

	api := s.engine.Group("/api")
	api.GET("/models", s.listModels)
	api.POST("/summaries", s.createSummary)
	api.GET("/summaries", s.listSummaries)
	api.GET("/summaries/:id", s.getSummary)
	api.GET("/summaries/:id/download", s.downloadSummary)
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.InfoContext(ctx, "HTTP server is started",
		"addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("listen and serve: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		s.log.InfoContext(ctx, "HTTP server is stopped")

		return nil
	}
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		log.Log(c.Request.Context(), level, "Request is handled",
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"ip", c.ClientIP())
	}
}
