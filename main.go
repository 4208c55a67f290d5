package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dmarceta/meet-accounts-be/internal/api"
	"github.com/dmarceta/meet-accounts-be/internal/auth"
	"github.com/dmarceta/meet-accounts-be/internal/config"
	"github.com/dmarceta/meet-accounts-be/internal/database"
	"github.com/dmarceta/meet-accounts-be/internal/logger"
	"github.com/dmarceta/meet-accounts-be/internal/mail"
	"github.com/dmarceta/meet-accounts-be/internal/maintenance"
	"github.com/dmarceta/meet-accounts-be/internal/services"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the email backend
	mailer, err := mail.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize email backend")
	}

	// Set up token machinery
	issuer := auth.NewIssuer([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	resetGen := auth.NewResetTokenGenerator([]byte(cfg.JWTSecret), cfg.ResetTokenTTL)

	// Set up services
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db, eventService)
	tokenService := services.NewTokenService(db, issuer, eventService)
	resetService := services.NewResetService(userService, resetGen, mailer, cfg.ResetURLBase, int(cfg.ResetTokenTTL.Hours()), eventService)

	// Set up and run the background token sweeper
	sweeper, err := maintenance.NewSweeper(tokenService, cfg.SweepSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token sweeper")
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(issuer, userService, tokenService, resetService, eventService, cfg.AllowedOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
