package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/bigdrops/admin-portal/internal/config"
	"github.com/bigdrops/admin-portal/internal/database"
	"github.com/bigdrops/admin-portal/internal/everflow"
	"github.com/bigdrops/admin-portal/internal/handler"
	"github.com/bigdrops/admin-portal/internal/middleware"
	"github.com/bigdrops/admin-portal/internal/queue"
	"github.com/bigdrops/admin-portal/internal/repository"
	"github.com/bigdrops/admin-portal/internal/router"
	queuepublisher "github.com/bigdrops/admin-portal/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	requests := repository.NewRequestRepo(db)
	advertisers := repository.NewAdvertiserRepo(db)
	metrics := repository.NewMetricsRepo(db)
	audit := repository.NewAuditRepo(db)

	// The Everflow client is nil when no API key is configured; keep the
	// handler interfaces nil in that case rather than wrapping a typed nil.
	var offers handler.OfferNamer
	var platform handler.AdvertiserFinder
	if ef := everflow.NewClient(cfg.EverflowBaseURL, cfg.EverflowAPIKey); ef != nil {
		offers = ef
		platform = ef
	}

	authH := handler.NewAuthHandler(cfg, users, tokens)
	dashH := handler.NewDashboardHandler(requests, audit, offers, queuepublisher.PublishDecisionAudit)
	metricsH := handler.NewMetricsHandler(metrics)
	onboardH := handler.NewOnboardHandler(requests, cfg.PublisherAPIToken)
	advH := handler.NewAdvertiserHandler(advertisers, platform, audit)
	usersH := handler.NewUserAdminHandler(cfg, users)
	pubsH := handler.NewPublisherHandler(requests, offers)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	var limiter echo.MiddlewareFunc
	if rlCfg := config.LoadRateLimitConfig(); rlCfg.Enabled {
		limiter = middleware.NewFixedWindow(rlCfg, rdb)
	}
	var cache echo.MiddlewareFunc
	if cCfg := config.LoadCacheConfig(); cCfg.Enabled && rdb != nil {
		cache = middleware.NewResponseCache(cCfg, rdb)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, limiter)
	router.RegisterDashboard(e, dashH, metricsH, cfg.JWTSecret, cache)
	router.RegisterAdvertisers(e, advH, cfg.JWTSecret)
	router.RegisterUsers(e, usersH, cfg.JWTSecret)
	router.RegisterPublishers(e, pubsH, cfg.JWTSecret)
	router.RegisterPublic(e, onboardH, limiter)

	go func() {
		if err := queue.StartDecisionConsumer(); err != nil {
			log.Printf("decision consumer disabled: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
