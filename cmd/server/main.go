package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/rihlago/tourism-booking/internal/booking"
	"github.com/rihlago/tourism-booking/internal/config"
	"github.com/rihlago/tourism-booking/internal/database"
	"github.com/rihlago/tourism-booking/internal/handler"
	"github.com/rihlago/tourism-booking/internal/logger"
	"github.com/rihlago/tourism-booking/internal/payment"
	"github.com/rihlago/tourism-booking/internal/queue"
	"github.com/rihlago/tourism-booking/internal/repository"
	"github.com/rihlago/tourism-booking/internal/router"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("booking-api")
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, database.Pool{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	store := repository.NewStore(db)

	payments, err := payment.NewStripeProvider(cfg.StripeKey, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("payment provider setup failed")
	}

	events := queue.NewPublisher(log)
	engine := booking.NewEngine(store, payments, events, log)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, caching and rate limiting disabled")
	}

	go queue.StartPaidConsumer(log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, router.Deps{
		Bookings:  handler.NewBookingHandler(engine, store),
		Browse:    handler.NewBrowseHandler(store),
		Admin:     handler.NewAdminHandler(store),
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
