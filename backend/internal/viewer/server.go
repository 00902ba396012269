package viewer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"issue-insights/backend/internal/render"
	apperrors "issue-insights/backend/pkg/errors"
	"issue-insights/backend/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

// Server shows the figures of one run in a browser. It only binds to
// loopback addresses.
type Server struct {
	addr    string
	title   string
	figures []render.Figure
	router  *gin.Engine
	logger  *zap.Logger
}

// NewServer builds the viewer for figures. addr must be a loopback host:port.
func NewServer(addr, title string, figures []render.Figure) (*Server, error) {
	if err := checkLoopback(addr); err != nil {
		return nil, err
	}

	s := &Server{
		addr:    addr,
		title:   title,
		figures: figures,
		logger:  logger.Named("viewer"),
	}

	router := gin.New()
	router.Use(ginLogger(s.logger))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/figures", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"title": s.title, "figures": s.figures})
	})
	router.GET("/", s.handlePage)

	s.router = router
	return s, nil
}

func checkLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return apperrors.NewConfigValidationFailed("VIEWER_ADDR", err.Error())
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return apperrors.NewConfigValidationFailed("VIEWER_ADDR", fmt.Sprintf("%q is not a loopback address", host))
	}
	return nil
}

func (s *Server) handlePage(c *gin.Context) {
	var buf bytes.Buffer
	if err := render.WritePage(&buf, s.title, s.figures...); err != nil {
		s.logger.Error("Failed to render page", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render page"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Handler returns the HTTP handler of the viewer
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe binds the configured address and serves until ctx is done
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Viewer started", zap.String("url", "http://"+ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("viewer stopped: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Shutting down viewer...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Viewer forced to shutdown", zap.Error(err))
			return err
		}
		return nil
	})

	err := g.Wait()
	s.logger.Info("Viewer exited")
	return err
}

// ginLogger logs each request through zap
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Debug("HTTP Request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
