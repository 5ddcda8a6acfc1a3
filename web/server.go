// Package web is the control panel: a small gin server that starts and stops
// the bot and edits its settings, plus an embedded single-page dashboard.
package web

import (
	"context"
	"embed"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nehilsa2/twitter_automation/bot"
	"github.com/Nehilsa2/twitter_automation/settings"
)

//go:embed static
var staticFS embed.FS

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
)

// Server serves the control panel HTTP API.
type Server struct {
	controller *bot.Controller
	store      *settings.Store
	log        *zap.Logger
	httpServer *http.Server
}

// NewServer builds the gin router and wires it to the controller and store.
func NewServer(addr string, controller *bot.Controller, store *settings.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		controller: controller,
		store:      store,
		log:        log,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
	}
	s.routes(router)
	return s
}

func (s *Server) routes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/", s.handleIndex)

	api := router.Group("/api")
	api.GET("/config", s.handleGetConfig)
	api.POST("/config", s.handleUpdateConfig)
	api.GET("/bot/status", s.handleStatus)
	api.POST("/bot/start", s.handleStart)
	api.POST("/bot/stop", s.handleStop)
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.log.Info("control panel listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(c *gin.Context) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		c.String(http.StatusInternalServerError, "dashboard unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
