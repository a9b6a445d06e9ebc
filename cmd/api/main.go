package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmcamacho/auth-portal/internal/auth"
	"github.com/jmcamacho/auth-portal/internal/config"
	"github.com/jmcamacho/auth-portal/internal/handler"
	"github.com/jmcamacho/auth-portal/internal/integrations/soapdir"
	"github.com/jmcamacho/auth-portal/internal/middleware"
	"github.com/jmcamacho/auth-portal/internal/repository"
	"github.com/jmcamacho/auth-portal/internal/service"
	"github.com/jmcamacho/auth-portal/internal/txlog"
	"github.com/jmcamacho/auth-portal/internal/utils/email"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize transaction logging
	tx, err := txlog.New(logger, cfg.LogDir)
	if err != nil {
		logger.Fatalf("Failed to initialize transaction log: %v", err)
	}
	defer tx.Close()
	alerts := email.NewSender(cfg, logger)
	if alerts.Enabled() {
		tx.SetAlertSender(alerts)
	}

	// Initialize layers
	repo := repository.NewRepository(cfg.UsersFile, logger)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	var soap *soapdir.Client
	if cfg.SOAPAuthURL != "" {
		soap = soapdir.NewClient(cfg, logger)
	}
	svc := service.NewService(repo, tokens, soap, tx, logger, cfg)
	h := handler.NewHandler(svc, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.Transaction(tx))
	r.HandleFunc("/", h.Root).Methods("GET")
	// Public routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", h.Login).Methods("POST")
	api.HandleFunc("/public", h.Public).Methods("GET")
	// Protected routes
	authRouter := api.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.BearerAuth(tokens))
	authRouter.HandleFunc("/protected", h.Protected).Methods("GET")
	authRouter.HandleFunc("/users", h.Users).Methods("GET")
	// Static assets (profile photos)
	r.PathPrefix("/resources/").Handler(
		http.StripPrefix("/resources/", http.FileServer(http.Dir(cfg.ResourcesDir))))

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
