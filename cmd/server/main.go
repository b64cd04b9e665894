package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/summitops/guest-transport/internal/config"
	"github.com/summitops/guest-transport/internal/database"
	"github.com/summitops/guest-transport/internal/flight"
	"github.com/summitops/guest-transport/internal/handler"
	"github.com/summitops/guest-transport/internal/middleware"
	"github.com/summitops/guest-transport/internal/queue"
	"github.com/summitops/guest-transport/internal/refdata"
	"github.com/summitops/guest-transport/internal/repository"
	"github.com/summitops/guest-transport/internal/router"
	queue_publisher "github.com/summitops/guest-transport/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; deployments set the environment directly

	cfg := config.Load()

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	schemaCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.EnsureSchema(schemaCtx, db)
	cancel()
	if err != nil {
		log.Fatalf("schema: %v", err)
	}

	// The upload limiter degrades gracefully without redis, but
	// import sessions live there, so a missing redis is fatal.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis is required for import sessions; set REDIS_ADDR or REDIS_HOST")
	}

	var provider *refdata.Provider
	if cfg.PlanPath != "" {
		provider, err = refdata.Load(cfg.PlanPath)
		if err != nil {
			log.Fatalf("transport plan: %v", err)
		}
		log.Printf("transport plan loaded from %s", cfg.PlanPath)
	} else {
		provider = refdata.NewStatic(nil, nil, nil)
		log.Println("no transport plan configured; codeshares, corrections and groups are empty")
	}
	matcher := flight.NewMatcher(provider)

	guestRepo := repository.NewGuestRepo(db)
	scheduleRepo := repository.NewScheduleRepo(db)
	assignmentRepo := repository.NewAssignmentRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	sessionRepo := repository.NewSessionRepo(rdb, cfg.SessionTTL)

	consumer := queue.NewFlightStatusConsumer(matcher, assignmentRepo, scheduleRepo, provider.Windows(), queue_publisher.PublishTransportSuggestion)
	go func() {
		if err := consumer.Start(); err != nil {
			log.Printf("flight-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	uploadLimit := middleware.NewUploadLimiter(config.LoadUploadLimitConfig(), rdb)
	planCache := middleware.NewPlanCache(config.LoadPlanCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterImports(e, handler.NewImportHandler(sessionRepo, guestRepo, auditRepo), cfg.JWTSecret, uploadLimit)
	router.RegisterGuests(e, handler.NewGuestHandler(guestRepo, auditRepo, assignmentRepo, scheduleRepo, matcher, provider.Windows()), cfg.JWTSecret)
	router.RegisterTransport(e, handler.NewTransportHandler(scheduleRepo, matcher), cfg.JWTSecret, planCache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
