package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"shiftdesk/backend/config"
	"shiftdesk/backend/internal/api/handler"
	"shiftdesk/backend/internal/api/router"
	"shiftdesk/backend/internal/repository"
	"shiftdesk/backend/internal/service"
	"shiftdesk/backend/pkg/database"
	"shiftdesk/backend/pkg/jwt"
	"shiftdesk/backend/pkg/logger"
	"shiftdesk/backend/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := database.NewDB(&cfg.Database, log)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("unwrap sql.DB failed", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, log); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	// Redis is optional: without it notifications go to the log only.
	var notifier service.Notifier
	redisClient, err := redis.NewClient(&cfg.Redis, log)
	if err != nil {
		log.Warn("redis unavailable, notifications degrade to log only", zap.Error(err))
		notifier = service.NewLogNotifier(log)
	} else {
		defer redisClient.Close()
		notifier = service.NewRedisNotifier(redisClient, log)
	}

	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, notifier, log)
	jwtManager := jwt.NewManager(&cfg.Auth)
	h := handler.NewHandler(svc, log)
	engine := router.New(cfg, h, jwtManager, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown incomplete", zap.Error(err))
	}
	log.Info("server stopped")
}
