package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/todo_service/internal/config"
	"github.com/Skotchmaster/todo_service/internal/db"
	"github.com/Skotchmaster/todo_service/internal/es"
	"github.com/Skotchmaster/todo_service/internal/httpserver"
	"github.com/Skotchmaster/todo_service/internal/logging"
	"github.com/Skotchmaster/todo_service/internal/middleware"
	"github.com/Skotchmaster/todo_service/internal/mykafka"
	"github.com/Skotchmaster/todo_service/internal/repo"
	"github.com/Skotchmaster/todo_service/internal/service"
	"github.com/Skotchmaster/todo_service/internal/tokens"
)

const todoIndex = "todo"

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gormDB, err := db.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	tokenManager, err := tokens.NewManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.Algorithm, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Fatalf("token manager error: %v", err)
	}

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers)
	} else {
		logger.Warn("KAFKA_BROKERS not set, events disabled")
	}

	var esClient *elasticsearch.Client
	if cfg.ESURL != "" {
		esClient, err = es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
	} else {
		logger.Warn("ES_URL not set, todo search disabled")
	}

	gormRepo := repo.GormRepo{DB: gormDB}

	deps := httpserver.Deps{
		Auth: &httpserver.AuthHTTP{
			Svc:      &service.AuthService{Repo: gormRepo, Tokens: tokenManager},
			Producer: producer,
		},
		Todos: &httpserver.TodoHTTP{
			Svc:      &service.TodoService{Repo: gormRepo},
			Producer: producer,
			ES:       esClient,
			Index:    todoIndex,
		},
		Guard: middleware.NewSessionGuard(tokenManager, gormRepo),
	}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), echomw.CORS())
	e.Use(middleware.RequestLogger(logger))

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	logger.Info("shutdown complete")
}
