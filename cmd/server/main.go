package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/undarez/camper-splatchs-sub001/config"
	"github.com/undarez/camper-splatchs-sub001/internal/api/handler"
	"github.com/undarez/camper-splatchs-sub001/internal/api/router"
	"github.com/undarez/camper-splatchs-sub001/internal/repository"
	"github.com/undarez/camper-splatchs-sub001/internal/service"
	"github.com/undarez/camper-splatchs-sub001/pkg/crypto"
	"github.com/undarez/camper-splatchs-sub001/pkg/database"
	"github.com/undarez/camper-splatchs-sub001/pkg/geocode"
	"github.com/undarez/camper-splatchs-sub001/pkg/jwt"
	applogger "github.com/undarez/camper-splatchs-sub001/pkg/logger"
	"github.com/undarez/camper-splatchs-sub001/pkg/mail"
	"github.com/undarez/camper-splatchs-sub001/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	// 1. configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting splashcamper",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. database
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("database connected")

	// 3.1 migrations
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	// 4. Redis is optional: without it the blacklist and cache are off and
	// rate limiting is per process
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, running degraded", zap.Error(err))
		rdb = nil
	}

	// 5. collaborators
	jwtMgr := jwt.NewManager(&cfg.Auth)

	cipher, err := crypto.New(cfg.Crypto.Secret)
	if err != nil {
		logger.Fatal("init field encryption failed", zap.Error(err))
	}

	var mailer service.Mailer
	if cfg.Mail.Enabled() {
		mailer = mail.NewSMTPSender(cfg.Mail, logger)
	} else {
		logger.Warn("smtp not configured, notifications are only logged")
		mailer = mail.NewLogSender(logger)
	}

	geocoder := geocode.NewClient(&cfg.Geocoding)

	// 6. Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, cipher, mailer, geocoder, logger)
	h := handler.NewHandler(cfg, svc)

	// 7. routes
	engine := router.Setup(cfg, h, svc.Policy, jwtMgr, rdb, db, logger)

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Error("close database failed", zap.Error(err))
	}

	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("server stopped")
}
