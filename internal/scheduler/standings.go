package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/discleague/leaguekeeper/internal/db"
	"github.com/discleague/leaguekeeper/internal/events"
	"github.com/discleague/leaguekeeper/internal/leagues"
)

const standingsJobTimeout = 2 * time.Minute

// RegisterStandingsJob recomputes standings for every league whose scores
// changed since the last run.
func RegisterStandingsJob(database *db.DB, publisher events.Publisher, cronExpr string) error {
	if database == nil {
		return fmt.Errorf("standings job requires database")
	}

	jobName := "standings_refresh"
	jobLogger := log.With().
		Str("component", "standings_refresh_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), standingsJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		refreshed, err := RefreshStandings(ctx, database, publisher)
		if err != nil {
			jobLogger.Error().Err(err).Msg("Standings refresh failed")
			return
		}
		if refreshed > 0 {
			jobLogger.Info().Int("leagues", refreshed).Msg("Standings refreshed")
		}
	}, gocron.WithSingletonMode(gocron.LimitModeReschedule))
	if err != nil {
		return fmt.Errorf("add standings job: %w", err)
	}
	return nil
}

// RefreshStandings updates every flagged league and reports how many were
// refreshed. A league with a tied game stays flagged and is skipped.
func RefreshStandings(ctx context.Context, database *db.DB, publisher events.Publisher) (int, error) {
	logger := log.Ctx(ctx)

	flagged, err := database.Queries.ListLeaguesNeedingStandingsUpdate(ctx)
	if err != nil {
		return 0, fmt.Errorf("list leagues needing standings: %w", err)
	}

	refreshed := 0
	for _, league := range flagged {
		standings, err := leagues.UpdateStandings(ctx, database, league.ID)
		if err != nil {
			if errors.Is(err, leagues.ErrTiedGame) {
				logger.Warn().Err(err).Int64("league_id", league.ID).Msg("Skipping standings with tied game")
				continue
			}
			logger.Error().Err(err).Int64("league_id", league.ID).Msg("Failed to update standings")
			continue
		}
		refreshed++

		if publisher == nil {
			continue
		}
		if err := publisher.Publish(ctx, league.ID, events.TypeStandingsUpdated, events.StandingsUpdated{Teams: len(standings)}); err != nil {
			logger.Error().Err(err).Int64("league_id", league.ID).Msg("Failed to publish standings event")
		}
	}
	return refreshed, nil
}
