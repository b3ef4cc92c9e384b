package leagues

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/discleague/leaguekeeper/internal/api/apiutil"
	"github.com/discleague/leaguekeeper/internal/api/authz"
	"github.com/discleague/leaguekeeper/internal/api/htmx"
	appdb "github.com/discleague/leaguekeeper/internal/db"
	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
	"github.com/discleague/leaguekeeper/internal/events"
	leaguesvc "github.com/discleague/leaguekeeper/internal/leagues"
)

const maxTeamNameLength = 100

type teamRequest struct {
	Name string `json:"name"`
}

type gameRequest struct {
	HomeTeamID int64       `json:"homeTeamId"`
	AwayTeamID int64       `json:"awayTeamId"`
	GameDate   string      `json:"gameDate"`
	Round      int64       `json:"round"`
	HomeScore  json.Number `json:"homeScore"`
	AwayScore  json.Number `json:"awayScore"`
}

type scoreRequest struct {
	HomeScore json.Number `json:"homeScore"`
	AwayScore json.Number `json:"awayScore"`
}

type teamResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	LeagueRank    *int64 `json:"leagueRank"`
	Wins          int64  `json:"wins"`
	Losses        int64  `json:"losses"`
	PointsFor     int64  `json:"pointsFor"`
	PointsAgainst int64  `json:"pointsAgainst"`
}

type gameResponse struct {
	ID         int64  `json:"id"`
	LeagueID   int64  `json:"leagueId"`
	Round      int64  `json:"round"`
	HomeTeamID int64  `json:"homeTeamId"`
	AwayTeamID int64  `json:"awayTeamId"`
	GameDate   string `json:"gameDate"`
	HomeScore  *int64 `json:"homeScore"`
	AwayScore  *int64 `json:"awayScore"`
}

// GET /api/v1/leagues/{id}/teams
func HandleTeamsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid league ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	if _, ok := loadLeague(ctx, w, r, leagueID); !ok {
		return
	}

	teams, err := queries.ListLeagueTeams(ctx, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to list teams")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to list teams")
		return
	}

	responses := make([]teamResponse, 0, len(teams))
	for _, team := range teams {
		responses = append(responses, newTeamResponse(team))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"teams": responses}); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write teams response")
	}
}

// POST /api/v1/leagues/{id}/teams
func HandleTeamCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid league ID")
		return
	}

	var req teamRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > maxTeamNameLength {
		apiutil.WriteValidationError(w, leaguesvc.ValidationErrors{{Field: "name", Reason: "must be 1 to 100 characters"}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	if _, ok := loadLeague(ctx, w, r, leagueID); !ok {
		return
	}
	if apiutil.WriteHandlerError(w, r, authz.RequireLeagueManager(ctx, queries, leagueID)) {
		return
	}

	// A new team needs a standings row before any of its games are scored.
	var team dbgen.Team
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries
		created, err := qtx.CreateTeam(ctx, dbgen.CreateTeamParams{LeagueID: leagueID, Name: name})
		if err != nil {
			if apiutil.IsUniqueViolation(err) {
				return apiutil.HandlerError{Status: http.StatusConflict, Message: "a team with that name already exists", Err: err}
			}
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to create team", Err: err}
		}
		if err := qtx.SetLeagueNeedsStandingsUpdate(ctx, dbgen.SetLeagueNeedsStandingsUpdateParams{
			NeedsStandingsUpdate: true,
			ID:                   leagueID,
		}); err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to flag standings", Err: err}
		}
		team = created
		return nil
	})
	if apiutil.WriteHandlerError(w, r, err) {
		return
	}
	logger.Info().Int64("league_id", leagueID).Int64("team_id", team.ID).Msg("Team created")

	if err := apiutil.WriteJSON(w, http.StatusCreated, newTeamResponse(team)); err != nil {
		logger.Error().Err(err).Int64("team_id", team.ID).Msg("Failed to write team response")
	}
}

// POST /api/v1/leagues/{id}/games
func HandleGameCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid league ID")
		return
	}

	var req gameRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var errs leaguesvc.ValidationErrors
	if req.HomeTeamID <= 0 {
		errs = append(errs, leaguesvc.ValidationError{Field: "home_team_id", Reason: "is required"})
	}
	if req.AwayTeamID <= 0 {
		errs = append(errs, leaguesvc.ValidationError{Field: "away_team_id", Reason: "is required"})
	}
	if req.HomeTeamID > 0 && req.HomeTeamID == req.AwayTeamID {
		errs = append(errs, leaguesvc.ValidationError{Field: "away_team_id", Reason: "must differ from home_team_id"})
	}
	if req.Round < 0 {
		errs = append(errs, leaguesvc.ValidationError{Field: "round", Reason: "must be 0 or greater"})
	}
	gameDate, err := apiutil.ParseDate(req.GameDate, "game_date")
	if err != nil {
		errs = append(errs, leaguesvc.ValidationError{Field: "game_date", Reason: "must be a date in YYYY-MM-DD format"})
	}
	var homeScore, awayScore sql.NullInt64
	if req.HomeScore != "" || req.AwayScore != "" {
		home, away, scoreErrs := parseScores(req.HomeScore, req.AwayScore)
		errs = append(errs, scoreErrs...)
		homeScore = sql.NullInt64{Int64: home, Valid: true}
		awayScore = sql.NullInt64{Int64: away, Valid: true}
	}
	if len(errs) > 0 {
		apiutil.WriteValidationError(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	if _, ok := loadLeague(ctx, w, r, leagueID); !ok {
		return
	}
	if apiutil.WriteHandlerError(w, r, authz.RequireLeagueManager(ctx, queries, leagueID)) {
		return
	}

	var game dbgen.Game
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries
		for _, teamID := range []int64{req.HomeTeamID, req.AwayTeamID} {
			if err := ensureTeamInLeague(ctx, qtx, leagueID, teamID); err != nil {
				return err
			}
		}

		created, err := qtx.CreateGame(ctx, dbgen.CreateGameParams{
			LeagueID:   leagueID,
			Round:      req.Round,
			HomeTeamID: req.HomeTeamID,
			AwayTeamID: req.AwayTeamID,
			GameDate:   gameDate,
			HomeScore:  homeScore,
			AwayScore:  awayScore,
		})
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to create game", Err: err}
		}
		if homeScore.Valid {
			if err := qtx.SetLeagueNeedsStandingsUpdate(ctx, dbgen.SetLeagueNeedsStandingsUpdateParams{
				NeedsStandingsUpdate: true,
				ID:                   leagueID,
			}); err != nil {
				return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to flag standings", Err: err}
			}
		}
		game = created
		return nil
	})
	if apiutil.WriteHandlerError(w, r, err) {
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, newGameResponse(game)); err != nil {
		logger.Error().Err(err).Int64("game_id", game.ID).Msg("Failed to write game response")
	}
}

// PUT /api/v1/leagues/{id}/games/{game_id}/score
func HandleGameScoreUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid league ID")
		return
	}
	gameID, err := apiutil.PathID(r, gameIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid game ID")
		return
	}

	var req scoreRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	home, away, errs := parseScores(req.HomeScore, req.AwayScore)
	if len(errs) > 0 {
		apiutil.WriteValidationError(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	if _, ok := loadLeague(ctx, w, r, leagueID); !ok {
		return
	}
	if apiutil.WriteHandlerError(w, r, authz.RequireLeagueManager(ctx, queries, leagueID)) {
		return
	}

	var game dbgen.Game
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries
		updated, err := qtx.UpdateGameScore(ctx, dbgen.UpdateGameScoreParams{
			HomeScore: sql.NullInt64{Int64: home, Valid: true},
			AwayScore: sql.NullInt64{Int64: away, Valid: true},
			ID:        gameID,
			LeagueID:  leagueID,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apiutil.HandlerError{Status: http.StatusNotFound, Message: "game not found", Err: err}
			}
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to update score", Err: err}
		}
		if err := qtx.SetLeagueNeedsStandingsUpdate(ctx, dbgen.SetLeagueNeedsStandingsUpdateParams{
			NeedsStandingsUpdate: true,
			ID:                   leagueID,
		}); err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to flag standings", Err: err}
		}
		game = updated
		return nil
	})
	if apiutil.WriteHandlerError(w, r, err) {
		return
	}
	logger.Info().Int64("league_id", leagueID).Int64("game_id", gameID).Msg("Game score recorded")

	htmx.Trigger(w, htmx.EventStandingsChanged)
	if err := apiutil.WriteJSON(w, http.StatusOK, newGameResponse(game)); err != nil {
		logger.Error().Err(err).Int64("game_id", gameID).Msg("Failed to write game response")
	}
}

// GET /api/v1/leagues/{id}/standings
func HandleStandings(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid league ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	league, ok := loadLeague(ctx, w, r, leagueID)
	if !ok {
		return
	}

	teams, err := queries.ListLeagueTeams(ctx, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to list teams")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load standings")
		return
	}

	writeStandings(w, r, http.StatusOK, league, leaguesvc.StandingsFromTeams(teams))
}

// POST /api/v1/leagues/{id}/standings
func HandleStandingsUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid league ID")
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

	standings, err := leaguesvc.UpdateStandings(ctx, database, leagueID)
	if err != nil {
		if errors.Is(err, leaguesvc.ErrTiedGame) {
			apiutil.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to update standings")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to update standings")
		return
	}
	league.NeedsStandingsUpdate = false
	logger.Info().Int64("league_id", leagueID).Int("teams", len(standings)).Msg("Standings updated")

	if publisher != nil {
		if err := publisher.Publish(ctx, leagueID, events.TypeStandingsUpdated, events.StandingsUpdated{Teams: len(standings)}); err != nil {
			logger.Warn().Err(err).Int64("league_id", leagueID).Msg("Failed to publish standings event")
		}
	}

	writeStandings(w, r, http.StatusOK, league, standings)
}

func writeStandings(w http.ResponseWriter, r *http.Request, status int, league dbgen.League, standings []leaguesvc.TeamStanding) {
	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(w, r, standingsComponent(league, standings))
		return
	}
	if standings == nil {
		standings = []leaguesvc.TeamStanding{}
	}
	if err := apiutil.WriteJSON(w, status, map[string]any{
		"leagueId":             league.ID,
		"needsStandingsUpdate": league.NeedsStandingsUpdate,
		"standings":            standings,
	}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Int64("league_id", league.ID).Msg("Failed to write standings response")
	}
}

func ensureTeamInLeague(ctx context.Context, q *dbgen.Queries, leagueID, teamID int64) error {
	team, err := q.GetTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "team not found in league", Err: err}
		}
		return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to load team", Err: err}
	}
	if team.LeagueID != leagueID {
		return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "team not found in league"}
	}
	return nil
}

// parseScores requires both scores as non-negative integers that differ.
func parseScores(rawHome, rawAway json.Number) (int64, int64, leaguesvc.ValidationErrors) {
	var errs leaguesvc.ValidationErrors
	home, err := parseScore(rawHome, "home_score")
	if err != nil {
		errs = append(errs, *err)
	}
	away, err := parseScore(rawAway, "away_score")
	if err != nil {
		errs = append(errs, *err)
	}
	if len(errs) == 0 && home == away {
		errs = append(errs, leaguesvc.ValidationError{Field: "away_score", Reason: "must differ from home_score; ties are not supported"})
	}
	return home, away, errs
}

func parseScore(raw json.Number, field string) (int64, *leaguesvc.ValidationError) {
	if raw == "" {
		return 0, &leaguesvc.ValidationError{Field: field, Reason: "is required"}
	}
	score, err := apiutil.ParseIntegerNumber(raw, field)
	if err != nil || score < 0 {
		return 0, &leaguesvc.ValidationError{Field: field, Reason: "must be a non-negative integer"}
	}
	return score, nil
}

func newTeamResponse(team dbgen.Team) teamResponse {
	return teamResponse{
		ID:            team.ID,
		Name:          team.Name,
		LeagueRank:    apiutil.FromNullInt64(team.LeagueRank),
		Wins:          team.Wins,
		Losses:        team.Losses,
		PointsFor:     team.PointsFor,
		PointsAgainst: team.PointsAgainst,
	}
}

func newGameResponse(game dbgen.Game) gameResponse {
	return gameResponse{
		ID:         game.ID,
		LeagueID:   game.LeagueID,
		Round:      game.Round,
		HomeTeamID: game.HomeTeamID,
		AwayTeamID: game.AwayTeamID,
		GameDate:   apiutil.FormatDate(game.GameDate),
		HomeScore:  apiutil.FromNullInt64(game.HomeScore),
		AwayScore:  apiutil.FromNullInt64(game.AwayScore),
	}
}
