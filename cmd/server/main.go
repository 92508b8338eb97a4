package main // Entry point package

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/infonest/campus-backend/internal/config"
	"github.com/infonest/campus-backend/internal/database"
	"github.com/infonest/campus-backend/internal/handler"
	"github.com/infonest/campus-backend/internal/mailer"
	"github.com/infonest/campus-backend/internal/middleware"
	"github.com/infonest/campus-backend/internal/queue"
	"github.com/infonest/campus-backend/internal/repository"
	"github.com/infonest/campus-backend/internal/router"
	"github.com/infonest/campus-backend/internal/sweeper"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	// Redis is optional infrastructure: rate limiting, response caching
	// and the signup OTP store all degrade gracefully when it is down.
	rdb := config.NewRedisClient()

	venues := repository.NewVenueRepo(db)
	bookings := repository.NewBookingRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	schedules := repository.NewScheduleRepo(db)

	var otp *repository.OTPStore
	if rdb != nil {
		otp = repository.NewOTPStore(rdb, cfg.OTPTTL)
	}

	mail := mailer.NewFromEnv()

	authH := handler.NewAuthHandler(cfg, users, tokens, otp, mail)
	venueH := handler.NewVenueHandler(venues, bookings)
	bookingH := handler.NewBookingHandler(venues, bookings, users)
	scheduleH := handler.NewScheduleHandler(schedules, users)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterVenues(e, venueH, cfg.JWTSecret,
		middleware.ResponseCache(config.LoadCacheConfig(), rdb))
	router.RegisterBookings(e, bookingH, cfg.JWTSecret)
	router.RegisterSchedules(e, scheduleH, cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background workers: the sweeper removes bookings whose slot has
	// elapsed, the consumer drains booking events into the audit log.
	go sweeper.New(bookings, cfg.SweepInterval).Run(ctx)
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	go func() {
		<-ctx.Done()
		_ = e.Shutdown(context.Background())
	}()
	if err := e.Start(addr); err != nil {
		log.Printf("server stopped: %v", err)
	}
}
