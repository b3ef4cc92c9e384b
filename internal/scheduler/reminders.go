package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/discleague/leaguekeeper/internal/db"
	"github.com/discleague/leaguekeeper/internal/email"
	"github.com/discleague/leaguekeeper/internal/leagues"
)

const reminderJobTimeout = 2 * time.Minute

// ReminderConfig carries what the reminder job needs beyond the database.
type ReminderConfig struct {
	Sender   email.EmailSender
	BaseURL  string
	Location *time.Location
	Clock    clockwork.Clock
}

// RegisterReminderJobs registers the day-before league start reminders.
func RegisterReminderJobs(database *db.DB, cfg ReminderConfig, cronExpr string) error {
	if database == nil {
		return fmt.Errorf("reminder jobs require database")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	jobName := "league_start_reminders"
	jobLogger := log.With().
		Str("component", "league_start_reminders_job").
		Str("job_name", jobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(jobName, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), reminderJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		if cfg.Sender == nil {
			jobLogger.Debug().Msg("Reminder job skipped: email sender not configured")
			return
		}

		today := leagues.Today(cfg.Clock.Now(), cfg.Location)
		sent, err := SendLeagueStartReminders(ctx, database, cfg.Sender, cfg.BaseURL, today)
		if err != nil {
			jobLogger.Error().Err(err).Msg("League start reminders failed")
			return
		}
		jobLogger.Info().Int("sent", sent).Msg("League start reminders sent")
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add league start reminder job: %w", err)
	}

	jobLogger.Info().Msg("League start reminder job registered")
	return nil
}

// SendLeagueStartReminders emails every pending or active registrant of the
// leagues starting the day after today. It returns the number of emails sent.
func SendLeagueStartReminders(ctx context.Context, database *db.DB, sender email.EmailSender, baseURL string, today time.Time) (int, error) {
	logger := log.Ctx(ctx)
	tomorrow := today.AddDate(0, 0, 1)

	starting, err := database.Queries.ListLeaguesStartingOn(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("list leagues starting %s: %w", tomorrow.Format(time.DateOnly), err)
	}

	sent := 0
	for _, league := range starting {
		leagueLogger := logger.With().Int64("league_id", league.ID).Logger()

		registrants, err := database.Queries.ListLeagueRegistrants(ctx, league.ID)
		if err != nil {
			leagueLogger.Error().Err(err).Msg("Failed to load registrants for reminders")
			continue
		}

		leagueURL := ""
		if baseURL != "" {
			leagueURL = fmt.Sprintf("%s/leagues/%d", strings.TrimRight(baseURL, "/"), league.ID)
		}
		for _, registrant := range registrants {
			msg := email.BuildLeagueStartReminder(email.ReminderDetails{
				FirstName:  registrant.FirstName,
				LeagueName: league.Name,
				StartDate:  league.StartDate,
				LeagueURL:  leagueURL,
			})
			if err := sender.Send(ctx, registrant.Email, msg.Subject, msg.Body); err != nil {
				leagueLogger.Error().Err(err).Int64("user_id", registrant.UserID).Msg("Failed to send league start reminder")
				continue
			}
			sent++
		}
	}
	return sent, nil
}
