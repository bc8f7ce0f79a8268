package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"sensor-dashboard/src/interfaces"
	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/metrics"
	"sensor-dashboard/src/models"
	"sensor-dashboard/src/render"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config     *models.MConfig
	Logger     *logger.Logger
	Controller interfaces.IDashboardController
	Charts     map[string]*render.Chart
	Metrics    *metrics.Metrics
	engine     *gin.Engine
	httpServer *http.Server

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan *models.MDashboardUpdate
	register   chan *Client
	unregister chan *Client
	direct     chan clientMessage
	done       chan struct{}
	hubOnce    sync.Once
	stopOnce   sync.Once

	// Local cache
	latestState *models.MDashboardUpdate
	stateMutex  sync.RWMutex
	connections atomic.Int64
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, controller interfaces.IDashboardController,
	charts map[string]*render.Chart, m *metrics.Metrics, logger *logger.Logger) *DashboardServer {

	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:     cfg,
		Logger:     logger,
		Controller: controller,
		Charts:     charts,
		Metrics:    m,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		// Queue size of 256 absorbs bursts of redraws
		broadcast:  make(chan *models.MDashboardUpdate, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan clientMessage, 16),
		done:       make(chan struct{}),
	}

	s.engine.Use(gin.Recovery())
	if cfg.LogLevel == "DEBUG" {
		s.engine.Use(gin.Logger())
	}
	s.engine.Use(s.countRequests)

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	// Page and chart surfaces
	s.engine.GET("/", s.getPage)
	s.engine.GET("/charts/:channel/svg", s.getChart("svg"))
	s.engine.GET("/charts/:channel/png", s.getChart("png"))
	s.engine.GET("/charts/:channel/interactive", s.getChart("interactive"))

	// REST API endpoints
	s.engine.GET("/api/frames", s.getFrames)
	s.engine.GET("/api/intervals", s.getIntervals)
	s.engine.POST("/api/interval", s.postInterval)
	s.engine.GET("/api/health", s.getHealth)
	if s.Metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// Routes exposes the router so other packages can mount their endpoints.
func (s *DashboardServer) Routes() gin.IRoutes {
	return s.engine
}

// Handler returns the HTTP handler serving every route.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Listen binds the configured address. Port 0 picks a free port.
func (s *DashboardServer) Listen() (net.Listener, error) {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ln, nil
}

// Serve runs the hub and serves HTTP on ln until Stop is called.
func (s *DashboardServer) Serve(ln net.Listener) error {
	s.startHub()

	s.stateMutex.Lock()
	s.httpServer = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.stateMutex.Unlock()

	s.Logger.Info("Dashboard listening on http://%s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Start listens on the configured address and serves until Stop.
func (s *DashboardServer) Start() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// -----------------------------------------------------------------------------

// Stop shuts the HTTP server down and disconnects every websocket client.
func (s *DashboardServer) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)

		s.stateMutex.RLock()
		srv := s.httpServer
		s.stateMutex.RUnlock()
		if srv == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = srv.Shutdown(ctx)
	})
	return err
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *DashboardServer) countRequests(c *gin.Context) {
	c.Next()
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	s.Metrics.Request(route, c.Writer.Status())
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getChart(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		chart, ok := s.Charts[c.Param("channel")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown channel '%s'", c.Param("channel"))})
			return
		}

		var (
			buf         bytes.Buffer
			contentType string
			write       func(io.Writer) error
		)
		switch format {
		case "svg":
			contentType, write = "image/svg+xml", chart.WriteSVG
		case "png":
			contentType, write = "image/png", chart.WritePNG
		default:
			contentType, write = "text/html; charset=utf-8", chart.WriteInteractive
		}

		if err := write(&buf); err != nil {
			s.Logger.Error("Chart render failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "chart render failed"})
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, contentType, buf.Bytes())
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getFrames(c *gin.Context) {
	c.JSON(http.StatusOK, s.Controller.Frames())
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getIntervals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"intervals": s.Controller.ListIntervals(),
		"selected":  s.Controller.Selected().Name,
	})
}

// -----------------------------------------------------------------------------

type intervalRequest struct {
	Interval string `json:"interval" binding:"required"`
}

func (s *DashboardServer) postInterval(c *gin.Context) {
	var req intervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"interval\": name}"})
		return
	}
	if err := s.Controller.Select(req.Interval); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"selected": req.Interval})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	var timestamp int64
	if s.latestState != nil {
		timestamp = s.latestState.Timestamp
	}
	s.stateMutex.RUnlock()

	pollStatus := s.Controller.Status()
	state := "ok"
	if pollStatus.LastError != "" {
		state = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        state,
		"connections":   s.connections.Load(),
		"latest_update": timestamp,
		"poller":        pollStatus,
	})
}

var _ interfaces.IDataExchanger = (*DashboardServer)(nil)
