package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ecommerce-platform/checkout-service/internal/auth"
	"github.com/ecommerce-platform/checkout-service/internal/cart"
	"github.com/ecommerce-platform/checkout-service/internal/config"
	"github.com/ecommerce-platform/checkout-service/internal/coupon"
	"github.com/ecommerce-platform/checkout-service/internal/db"
	"github.com/ecommerce-platform/checkout-service/internal/events"
	"github.com/ecommerce-platform/checkout-service/internal/handler"
	"github.com/ecommerce-platform/checkout-service/internal/inventory"
	"github.com/ecommerce-platform/checkout-service/internal/notification"
	"github.com/ecommerce-platform/checkout-service/internal/order"
	"github.com/ecommerce-platform/checkout-service/internal/transport"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "checkout-service").Logger()

	log.Info().Msg("Checkout service starting...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	if err := db.Migrate(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	ctx := context.Background()

	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	bus := events.NewBus()
	defer bus.Close()

	var pusher events.Pusher
	if cfg.Push.WebhookURL != "" {
		pusher = events.NewWebhookPusher(cfg.Push.WebhookURL, cfg.Push.Timeout)
	}
	broadcaster := events.NewBroadcaster(bus, pusher, "orders", cfg.Push.Timeout)

	sender := notification.NewSMTPSender(notification.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	dispatcher := notification.NewDispatcher(sender, cfg.Checkout.AdminEmail, cfg.Checkout.NotifyTimeout)

	orderRepo := order.NewPostgresRepository(pg.Pool)
	addressStore := order.NewPostgresAddressStore(pg.Pool)
	cartStore := cart.NewPostgresStore(pg.Pool)
	ledger := coupon.NewLedger(coupon.NewPostgresStore(pg.Pool))
	reconciler := inventory.NewReconciler(inventory.NewPostgresStore(pg.Pool), cfg.Checkout.LowStockThreshold)

	checkoutSvc := order.NewService(orderRepo, addressStore, cartStore, ledger, reconciler, dispatcher, broadcaster)

	verifier := auth.NewPostgresVerifier(pg.Pool)

	router := transport.NewRouter(
		verifier,
		handler.NewOrderHandler(checkoutSvc),
		handler.NewCouponHandler(ledger),
		handler.NewStreamHandler(bus),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second, // стрим событий сам снимает свой дедлайн записи
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}

	// Даём фоновым уведомлениям дослать письма перед выходом.
	dispatcher.Wait()

	log.Info().Msg("Server stopped")
}
