package statusapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/spacelift-io/scalemonitor/internal"
)

// ScaleStatusProvider is the narrow contract the API needs from the scale
// manager.
type ScaleStatusProvider interface {
	GetScaleStatus(ctx context.Context, status internal.ScaleStatusContext) (internal.ScaleVote, error)
}

// Server exposes the scale vote of this host over HTTP.
type Server struct {
	addr      string
	status    ScaleStatusProvider
	logger    *slog.Logger
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

func NewServer(addr string, status ScaleStatusProvider, logger *slog.Logger) *Server {
	if addr == "" {
		addr = ":8080"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		status:    status,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

// Handler returns the routes of the API.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.handleHealth)
	r.GET("/scale/status", s.handleScaleStatus)

	return otelhttp.NewHandler(r, "statusapi")
}

// Start begins serving HTTP requests. Serve errors are reported on the
// returned channel.
func (s *Server) Start() (<-chan error, error) {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, err
	}

	s.addr = listener.Addr().String()
	s.startTime = time.Now()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("status API listening", "address", listener.Addr().String())
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	return serveErr, nil
}

// Addr is the address the server listens on, resolved once Start succeeds.
func (s *Server) Addr() string {
	return s.addr
}

// Stop gracefully shuts down the HTTP server. Requests in flight keep their
// context until they finish or ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	defer s.cancel()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) handleScaleStatus(c *gin.Context) {
	workerCount, err := strconv.Atoi(c.DefaultQuery("workerCount", "0"))
	if err != nil || workerCount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workerCount must be a non-negative integer"})
		return
	}

	vote, err := s.status.GetScaleStatus(c.Request.Context(), internal.ScaleStatusContext{WorkerCount: workerCount})
	if err != nil {
		s.logger.Error("could not compute scale status", "error", err, "worker_count", workerCount)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute scale status"})
		return
	}

	c.JSON(http.StatusOK, internal.ScaleStatusResult{Vote: vote})
}
