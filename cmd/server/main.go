package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/codepilot/coursehub/internal/config"
	"github.com/codepilot/coursehub/internal/es"
	"github.com/codepilot/coursehub/internal/handlers"
	"github.com/codepilot/coursehub/internal/handlers/cart"
	"github.com/codepilot/coursehub/internal/logging"
	"github.com/codepilot/coursehub/internal/middleware/loggingmw"
	"github.com/codepilot/coursehub/internal/mykafka"
	"github.com/codepilot/coursehub/internal/service/search"
	"github.com/codepilot/coursehub/internal/session"
	httpserver "github.com/codepilot/coursehub/internal/transport/http"
	"github.com/codepilot/coursehub/internal/web"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}
	if err := config.SeedAdmin(db, configuration); err != nil {
		log.Fatalf("admin seed error: %v", err)
	}

	sessions := session.NewManager([]byte(configuration.SESSION_SECRET))

	var prod *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	searchService := &search.Service{Index: "courses"}
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		searchService.ES = esClient
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("template init error: %v", err)
	}

	e := echo.New()
	e.Renderer = renderer
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:              db,
		Sessions:        sessions,
		AuthHandler:     &handlers.AuthHandler{DB: db, Sessions: sessions, Producer: prod},
		CatalogHandler:  &handlers.CatalogHandler{DB: db, Sessions: sessions, Search: searchService},
		CartHandler:     &cart.CartHandler{DB: db, Sessions: sessions, Producer: prod, Renderer: renderer},
		CheckoutHandler: &handlers.CheckoutHandler{DB: db, Sessions: sessions, Producer: prod},
		FavoriteHandler: &handlers.FavoriteHandler{DB: db, Sessions: sessions, Producer: prod},
		AdminHandler:    &handlers.AdminHandler{DB: db, Producer: prod, Search: searchService},
		SiteHandler:     &handlers.SiteHandler{DB: db, Sessions: sessions},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("server started", "addr", configuration.HTTP_ADDR)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
