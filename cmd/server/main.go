package main // Entry point package

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/SwaraChokshi/The-Wheel-Deal/internal/config"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/database"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/handler"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/payment"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/queue"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/repository"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is absent; middleware degrades to pass-through

	bookings := repository.NewBookingRepo(db)
	cars := repository.NewCarRepo(db)
	users := repository.NewUserRepo(db)

	gateway := payment.NewClient(cfg.StripeSecretKey, cfg.PaymentTimeout)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users),
		Cars:     handler.NewCarHandler(cars),
		Bookings: handler.NewBookingHandler(bookings, cars, users),
		Payments: handler.NewPaymentHandler(cfg, bookings, gateway),
		Webhooks: handler.NewWebhookHandler(bookings, cfg.StripeWebhookSecret),
		Admin:    handler.NewAdminBookingHandler(bookings),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.CORS())

	router.Register(e, cfg, h, rdb)

	// Settlement events land on the broker; the consumer writes the
	// booking log.  It reconnects forever on its own.
	go func() {
		if err := queue.StartPaidConsumer(); err != nil {
			log.Printf("paid-consumer stopped: %v", err)
		}
	}()

	go func() {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}
