package leagues

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/discleague/leaguekeeper/internal/api/apiutil"
	"github.com/discleague/leaguekeeper/internal/api/authz"
	appdb "github.com/discleague/leaguekeeper/internal/db"
	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
	leaguesvc "github.com/discleague/leaguekeeper/internal/leagues"
)

type scheduleRequest struct {
	GameDay string `json:"gameDay"`
	Replace bool   `json:"replace"`
}

// POST /api/v1/leagues/{id}/schedule
//
// Generates a round-robin schedule over the league's season. An existing
// schedule is only replaced when replace is set and no game has a score yet.
func HandleGenerateSchedule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid league ID")
		return
	}

	var req scheduleRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	gameDay, err := leaguesvc.ParseGameDay(req.GameDay)
	if err != nil {
		apiutil.WriteValidationError(w, leaguesvc.ValidationErrors{{Field: "game_day", Reason: "must be a weekday name"}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	league, ok := loadLeague(ctx, w, r, leagueID)
	if !ok {
		return
	}
	if apiutil.WriteHandlerError(w, r, authz.RequireLeagueManager(ctx, queries, leagueID)) {
		return
	}

	var created []dbgen.Game
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		existing, err := qtx.ListLeagueGames(ctx, leagueID)
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to check existing schedule", Err: err}
		}
		if len(existing) > 0 {
			if !req.Replace {
				return apiutil.HandlerError{Status: http.StatusConflict, Message: "schedule already exists for this league"}
			}
			for _, game := range existing {
				if game.HomeScore.Valid || game.AwayScore.Valid {
					return apiutil.HandlerError{Status: http.StatusConflict, Message: "cannot replace a schedule with played games"}
				}
			}
			if _, err := qtx.DeleteUnplayedLeagueGames(ctx, leagueID); err != nil {
				return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to clear schedule", Err: err}
			}
		}

		teams, err := qtx.ListLeagueTeams(ctx, leagueID)
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to load league teams", Err: err}
		}

		schedule, err := leaguesvc.GenerateRoundRobinSchedule(leagueID, teams, league.StartDate, league.EndDate, gameDay)
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error(), Err: err}
		}

		created = make([]dbgen.Game, 0, len(schedule))
		for _, scheduled := range schedule {
			game, err := qtx.CreateGame(ctx, dbgen.CreateGameParams{
				LeagueID:   leagueID,
				Round:      int64(scheduled.Round),
				HomeTeamID: scheduled.HomeTeam.ID,
				AwayTeamID: scheduled.AwayTeam.ID,
				GameDate:   scheduled.GameDate,
			})
			if err != nil {
				return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to create game", Err: err}
			}
			created = append(created, game)
		}
		return nil
	})
	if apiutil.WriteHandlerError(w, r, err) {
		return
	}
	logger.Info().
		Int64("league_id", leagueID).
		Int("games", len(created)).
		Str("game_day", gameDay.String()).
		Msg("Schedule generated")

	responses := make([]gameResponse, 0, len(created))
	for _, game := range created {
		responses = append(responses, newGameResponse(game))
	}
	if err := apiutil.WriteJSON(w, http.StatusCreated, map[string]any{"games": responses}); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write schedule response")
	}
}
