package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spendtrack/expense-forecast/internal/config"
	"github.com/spendtrack/expense-forecast/internal/forecast"
	"github.com/spendtrack/expense-forecast/internal/handler"
	"github.com/spendtrack/expense-forecast/internal/repository"
	"github.com/spendtrack/expense-forecast/internal/service"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	forecaster := forecast.NewForecaster(repo, logger, cfg.SearchTimeout)
	svc := service.NewService(repo, forecaster, logger)
	h := handler.NewHandler(svc, db)

	// Schedule the stale-data sweep
	c := cron.New()
	if _, err := c.AddFunc(cfg.SweepSchedule, func() {
		svc.SweepStaleData(context.Background())
	}); err != nil {
		logger.Fatalf("Failed to schedule stale-data sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	// Setup router
	r := mux.NewRouter()
	r.HandleFunc("/analytics/forecast", h.Forecast).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.SearchTimeout + 20*time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
