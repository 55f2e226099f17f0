package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Terrence-morris-dev/cag-portal-astro/internal/config"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/interview"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/logger"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/messaging"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/notify"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/policy"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/queue"
	"github.com/Terrence-morris-dev/cag-portal-astro/internal/store"
	v1 "github.com/Terrence-morris-dev/cag-portal-astro/internal/transport/http/v1"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	log.Info("starting portal", logger.Fields{
		"http_port":        cfg.HTTPPort,
		"store":            cfg.StoreDriver,
		"messaging_policy": cfg.MessagingPolicy,
		"receipt_queue":    cfg.ReceiptQueue,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize store
	db, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal("failed to initialize store", logger.Fields{"error": err.Error()})
	}
	defer db.Close()

	// Initialize policy engine
	policyEngine, err := policy.ForName(ctx, cfg.MessagingPolicy)
	if err != nil {
		log.Fatal("failed to initialize policy engine", logger.Fields{"error": err.Error()})
	}

	// Render-trigger hub
	hub := notify.NewHub(log)
	go hub.Run(ctx)

	// Read receipts run on in-process timers unless a queue is configured
	var receipts messaging.ReceiptScheduler
	if cfg.ReceiptQueue == "asynq" {
		scheduler, err := queue.NewScheduler(cfg.RedisURL, queue.DefaultQueue, log)
		if err != nil {
			log.Fatal("failed to initialize receipt queue", logger.Fields{"error": err.Error()})
		}
		receipts = scheduler
	}

	conversations := messaging.NewConversations(ctx, db, log)
	messagingCtl := messaging.NewController(conversations, db, messaging.Options{
		Policy:       policyEngine,
		Notifier:     hub,
		Receipts:     receipts,
		ReceiptDelay: cfg.ReadReceiptDelay,
		Logger:       log,
	})
	defer messagingCtl.Close()

	if cfg.ReceiptQueue == "asynq" {
		worker, err := queue.NewWorker(cfg.RedisURL, queue.DefaultQueue, messagingCtl.ApplyPeerRead, log)
		if err != nil {
			log.Fatal("failed to initialize receipt worker", logger.Fields{"error": err.Error()})
		}
		go func() {
			if err := worker.Run(ctx); err != nil {
				log.Error("receipt worker stopped", logger.Fields{"error": err.Error()})
			}
		}()
	}

	var bank interview.QuestionBank = interview.EmbeddedBank{}
	if cfg.QuestionBankURL != "" {
		bank = interview.NewHTTPBank(cfg.QuestionBankURL, cfg.QuestionBankTimeout)
	}
	interviewCtl := interview.NewController(db, interview.Options{
		Bank:      bank,
		TimeLimit: cfg.QuestionTimeLimit,
		Logger:    log,
	})
	defer interviewCtl.Close()

	stream := notify.NewServer(notify.StreamConfig{
		PingInterval:   cfg.PingInterval,
		WriteTimeout:   cfg.WriteTimeout,
		ReadTimeout:    cfg.ReadTimeout,
		MaxMessageSize: cfg.MaxMessageSize,
	}, hub, func(id string) bool {
		_, ok := conversations.Participant(id)
		return ok
	}, log)

	h := v1.NewHandler(messagingCtl, interviewCtl, stream)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{Output: log.Writer()}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", logger.Fields{"error": err.Error()})
		}
	}()

	log.Info("portal API started", logger.Fields{"port": cfg.HTTPPort})

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down portal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("failed to shutdown server gracefully", logger.Fields{"error": err.Error()})
	}
	cancel()

	log.Info("portal stopped")
}
