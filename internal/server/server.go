// Package server serves the salary prediction form over HTTP.
package server

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/salary-predictor/internal/predictor"
	"github.com/YuminosukeSato/salary-predictor/pkg/errors"
	"github.com/YuminosukeSato/salary-predictor/pkg/log"
)

//go:embed templates/*.html
var templateFS embed.FS

// Banners shown instead of the form when no model is available.
const (
	BannerNotFound   = "Model not found. Please train the model first."
	bannerLoadPrefix = "Error loading model: "
)

// ModelHandle is what the handlers need from a loaded model.
type ModelHandle interface {
	Available() bool
	NotFound() bool
	Err() error
	Predict(r predictor.Request) (float64, error)
}

// Server is the form server.
type Server struct {
	handle          ModelHandle
	logger          zerolog.Logger
	engine          *gin.Engine
	addr            string
	shutdownTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithShutdownTimeout bounds how long Run waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// WithLogger sets the access logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New builds the server and its routes.
func New(h ModelHandle, opts ...Option) *Server {
	s := &Server{
		handle:          h,
		logger:          zerolog.Nop(),
		addr:            ":8501",
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"field": newSelectField,
	}).ParseFS(templateFS, "templates/*.html"))

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(accessLog(s.logger))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", s.index)
	r.POST("/predict", s.predictForm)
	r.GET("/healthz", s.healthz)

	api := r.Group("/api/v1")
	{
		api.POST("/predict", s.predictJSON)
	}

	s.engine = r
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	logger := log.GetLoggerWithName("server")
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("form server listening",
			"addr", s.addr,
			"model_available", s.handle.Available(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrap(err, "listen")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down form server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

// Banner returns the text shown instead of the form, or "" when the model
// is available.
func Banner(h ModelHandle) string {
	if h.Available() {
		return ""
	}
	if h.NotFound() {
		return BannerNotFound
	}
	if err := h.Err(); err != nil {
		return bannerLoadPrefix + err.Error()
	}
	return bannerLoadPrefix + "unknown error"
}
