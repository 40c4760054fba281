package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/splitnest/debt-service/internal/config"
	"github.com/splitnest/debt-service/internal/handler"
	"github.com/splitnest/debt-service/internal/integrations/cbr"
	"github.com/splitnest/debt-service/internal/middleware"
	"github.com/splitnest/debt-service/internal/repository"
	"github.com/splitnest/debt-service/internal/scheduler"
	"github.com/splitnest/debt-service/internal/service"
	"github.com/splitnest/debt-service/internal/utils/email"
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
	if err := repo.Migrate(context.Background()); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}
	mailer := email.NewSender(cfg, logger)
	svc := service.NewService(repo, mailer, logger)
	h := handler.NewHandler(svc, logger)
	cbrClient := cbr.NewCBRClient(cfg, logger)

	// Start the due-date reminder sweep
	sched := scheduler.NewScheduler(svc, cbrClient, logger)
	if err := sched.Start(cfg.ReminderCron); err != nil {
		logger.Fatalf("Failed to start reminder scheduler: %v", err)
	}
	defer sched.Stop()

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg))
	api.HandleFunc("/debts/owed-to-me", h.ListOwedToMe).Methods("GET")
	api.HandleFunc("/debts/owed-by-me", h.ListOwedByMe).Methods("GET")
	api.HandleFunc("/debts/overview", h.Overview).Methods("GET")
	api.HandleFunc("/debts", h.CreateDebt).Methods("POST")
	api.HandleFunc("/debts/{id}/mark-paid", h.SettleDebt).Methods("PATCH")
	api.HandleFunc("/debts/{id}/remind", h.Remind).Methods("POST")
	api.HandleFunc("/debts/{id}", h.DeleteDebt).Methods("DELETE")
	api.HandleFunc("/expenses", h.CreateExpense).Methods("POST")
	api.HandleFunc("/expenses", h.ListExpenses).Methods("GET")
	api.HandleFunc("/notifications/send", h.SendNotification).Methods("POST")
	api.HandleFunc("/notifications", h.ListNotifications).Methods("GET")
	api.HandleFunc("/notifications/read-all", h.MarkAllNotificationsRead).Methods("PUT")
	api.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods("PUT")

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
