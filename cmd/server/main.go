package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/techzoneai/revive-voice-service/internal/config"
	"github.com/techzoneai/revive-voice-service/internal/handler"
	"github.com/techzoneai/revive-voice-service/pkg/logger"
	"go.uber.org/zap"
)

// Server is the lead-reactivation voice service.
type Server struct {
	config         *config.Config
	router         *mux.Router
	handlerManager *handler.HandlerManager
}

// NewServer wires the router and all handlers.
func NewServer(cfg *config.Config) (*Server, error) {
	router := mux.NewRouter()

	handlerManager, err := handler.NewHandlerManager(cfg)
	if err != nil {
		return nil, err
	}
	handlerManager.SetupAllRoutes(router)

	return &Server{
		config:         cfg,
		router:         router,
		handlerManager: handlerManager,
	}, nil
}

// Start runs the HTTP server until it fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.config.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Base().Info("starting server", zap.String("addr", addr))
	return server.ListenAndServe()
}

func main() {
	// Load .env for local development; production environments inject
	// variables directly and will not have the file.
	if err := godotenv.Load(); err != nil {
		log.Printf("info: .env file not found or skipped: %v", err)
	}

	if _, err := logger.Init(os.Getenv("LOG_ENV")); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.LoadFromEnv()

	server, err := NewServer(cfg)
	if err != nil {
		logger.Base().Fatal("failed to create server", zap.Error(err))
	}
	logger.Base().Info("server initialized",
		zap.String("port", cfg.Port),
		zap.String("provider", cfg.Provider),
		zap.String("lead_store", cfg.LeadStore))

	if err := server.Start(); err != nil {
		logger.Base().Fatal("server failed", zap.Error(err))
	}
}
