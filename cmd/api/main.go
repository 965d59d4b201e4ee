package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/granada-os/credits-api/internal/config"
	"github.com/granada-os/credits-api/internal/domain/admin"
	"github.com/granada-os/credits-api/internal/domain/credit"
	"github.com/granada-os/credits-api/internal/domain/payment"
	"github.com/granada-os/credits-api/internal/domain/processor"
	"github.com/granada-os/credits-api/internal/middleware"
	"github.com/granada-os/credits-api/internal/pkg/database"
	"github.com/granada-os/credits-api/internal/pkg/jwt"
	"github.com/granada-os/credits-api/internal/pkg/logger"
	pkgresponse "github.com/granada-os/credits-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Bool("strict_callbacks", cfg.StrictCallbacks).
		Msg("Starting Granada credits API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, analytics cache disabled")
		redis = nil
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.AdminJWTTTL)

	// ---------- Services ----------
	defaultPolicy := payment.NewDefaultPolicy(cfg.StrictCallbacks, cfg.DefaultUserID)
	paymentService := payment.NewService(db, defaultPolicy)
	creditService := credit.NewService(db, redis)
	adminService := admin.NewService(admin.NewRepository(db), jwtService)

	// ---------- Handlers ----------
	paymentHandler := payment.NewHandler(paymentService)
	processorHandler := processor.NewHandler(paymentService)
	creditHandler := credit.NewHandler(creditService)
	adminHandler := admin.NewHandler(adminService)

	adminAuthMiddleware := middleware.AdminAuth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]interface{}{
			"success": true,
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Mount("/payment-flow", paymentHandler.Routes())
	r.Mount("/stripe-flow", processorHandler.StripeRoutes())
	r.Mount("/paypal-flow", processorHandler.PayPalRoutes())
	r.Mount("/pesapal-flow", processorHandler.PesaPalRoutes())
	r.Mount("/credits", creditHandler.Routes(adminAuthMiddleware))
	r.Mount("/admin", adminHandler.Routes())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
