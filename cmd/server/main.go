package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/teachcreate/internal/common/clock"
	"github.com/KirkDiggler/teachcreate/internal/config"
	"github.com/KirkDiggler/teachcreate/internal/handlers/discord"
	"github.com/KirkDiggler/teachcreate/internal/handlers/rest"
	"github.com/KirkDiggler/teachcreate/internal/joincode"
	sessionRepo "github.com/KirkDiggler/teachcreate/internal/repositories/game_session"
	"github.com/KirkDiggler/teachcreate/internal/services/announcer"
	gameSessionService "github.com/KirkDiggler/teachcreate/internal/services/game_session"
	"github.com/KirkDiggler/teachcreate/internal/services/messaging"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := cfg.NewLogger()

	// Initialize the session store
	repo, closer, err := newSessionRepository(cfg)
	if err != nil {
		logger.Fatalf("Failed to create session repository: %v", err)
	}
	defer closer.Close()

	// Initialize messaging service
	messagingSvc, err := messaging.NewService(&messaging.ServiceConfig{
		DefaultTone: messaging.MessageTone(cfg.AnnounceTone),
	})
	if err != nil {
		logger.Fatalf("Failed to create messaging service: %v", err)
	}

	// Announcements are optional
	var sessionAnnouncer announcer.Announcer
	if cfg.AnnouncementsEnabled() {
		discordAnnouncer, err := discord.New(&discord.Config{
			WebhookID:        cfg.DiscordWebhookID,
			WebhookToken:     cfg.DiscordWebhookToken,
			Username:         "TeachCreate",
			MessagingService: messagingSvc,
			Logger:           logger,
		})
		if err != nil {
			logger.Fatalf("Failed to create Discord announcer: %v", err)
		}
		sessionAnnouncer = discordAnnouncer
		logger.Info("Discord announcements enabled")
	}

	policy, err := gameSessionService.ParseTransitionPolicy(cfg.TransitionPolicy)
	if err != nil {
		logger.Fatalf("Invalid transition policy: %v", err)
	}

	// Initialize game session service
	sessionSvc, err := gameSessionService.New(&gameSessionService.Config{
		SessionRepo:       repo,
		JoinCodeGenerator: joincode.New(nil),
		Clock:             clock.New(),
		Announcer:         sessionAnnouncer,
		MessagingService:  messagingSvc,
		TransitionPolicy:  policy,
		JoinCodeAttempts:  cfg.JoinCodeAttempts,
		Logger:            logger,
	})
	if err != nil {
		logger.Fatalf("Failed to create game session service: %v", err)
	}

	auth, err := rest.NewAuthenticator(cfg.JWTSecret)
	if err != nil {
		logger.Fatalf("Failed to create authenticator: %v", err)
	}

	router, err := rest.NewRouter(&rest.Config{
		GameSessionService: sessionSvc,
		Authenticator:      auth,
		Production:         cfg.IsProduction(),
		AllowedOrigin:      cfg.CORSAllowedOrigin,
		Logger:             logger,
	})
	if err != nil {
		logger.Fatalf("Failed to create router: %v", err)
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":   server.Addr,
			"env":    cfg.AppEnv,
			"store":  cfg.SessionStore,
			"policy": policy,
		}).Info("TeachCreate server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error shutting down server: %v", err)
	}

	logger.Info("Server has been shut down")
}

// newSessionRepository opens the configured session store
func newSessionRepository(cfg *config.Config) (sessionRepo.Repository, io.Closer, error) {
	switch cfg.SessionStore {
	case config.StoreSQLite:
		repo, err := sessionRepo.NewSQLite(&sessionRepo.SQLiteConfig{
			Path: cfg.SQLitePath,
		})
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil

	default:
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		repo, err := sessionRepo.NewRedis(&sessionRepo.Config{
			RedisClient: redisClient,
		})
		if err != nil {
			redisClient.Close()
			return nil, nil, err
		}
		return repo, redisClient, nil
	}
}
