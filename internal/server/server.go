package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inspectoradf/internal/config"
	"inspectoradf/internal/handler"
)

type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	log        *zap.Logger
}

// New builds the liveness server. When webhook is non-nil Telegram updates are
// accepted on config.WebhookPath as well.
func New(cfg *config.Config, webhook http.Handler, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	h := handler.NewHandler(webhook, log)

	server := &Server{
		httpServer: &http.Server{
			Addr:           cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:        newRouter(h, webhook != nil),
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			MaxHeaderBytes: 1 << 20,          // 1 MB
		},
		cfg: cfg,
		log: log,
	}

	log.Info("Server created successfully",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.Bool("webhook", webhook != nil))

	return server
}

func newRouter(h *handler.Handler, withWebhook bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", h.HealthCheck)
	router.HEAD("/", h.HealthCheck)
	router.GET("/health", h.HealthCheck)
	router.HEAD("/health", h.HealthCheck)

	if withWebhook {
		router.POST(config.WebhookPath, h.Webhook)
	}

	return router
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Run() error {
	s.log.Info("Server is running",
		zap.String("host", s.cfg.Server.Host),
		zap.String("port", s.cfg.Server.Port),
		zap.String("address", s.httpServer.Addr))

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
