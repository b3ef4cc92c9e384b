// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/discleague/leaguekeeper/internal/api/auth"
	"github.com/discleague/leaguekeeper/internal/config"
	"github.com/discleague/leaguekeeper/internal/db"
	"github.com/discleague/leaguekeeper/internal/email"
	"github.com/discleague/leaguekeeper/internal/events"
	"github.com/discleague/leaguekeeper/internal/ratelimit"
	"github.com/discleague/leaguekeeper/internal/scheduler"
)

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func newPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.Events.NATSURL == "" {
		log.Info().Msg("NATS not configured; events are logged only")
		return events.NewLogPublisher(log.Logger, cfg.Events.SubjectPrefix), nil
	}
	publisher, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := auth.EnsureAdmin(ctx, database.Queries, cfg); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	sender, err := email.NewSender(ctx, cfg.Email)
	if err != nil {
		return fmt.Errorf("create email sender: %w", err)
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close event publisher")
		}
	}()

	limiter := ratelimit.New(ratelimit.DefaultConfig())
	defer limiter.Close()

	loc := cfg.Location()
	if err := scheduler.Init(gocron.WithLocation(loc)); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	if err := scheduler.RegisterStandingsJob(database, publisher, cfg.Jobs.StandingsCron); err != nil {
		return err
	}
	if err := scheduler.RegisterReminderJobs(database, scheduler.ReminderConfig{
		Sender:   sender,
		BaseURL:  cfg.App.BaseURL,
		Location: loc,
	}, cfg.Jobs.RemindersCron); err != nil {
		return err
	}
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	server := newServer(cfg, serverDeps{
		database:  database,
		sender:    sender,
		publisher: publisher,
		limiter:   limiter,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}
