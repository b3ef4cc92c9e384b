// internal/api/leagues/handlers.go
package leagues

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/discleague/leaguekeeper/internal/api/apiutil"
	"github.com/discleague/leaguekeeper/internal/api/authz"
	"github.com/discleague/leaguekeeper/internal/api/htmx"
	appdb "github.com/discleague/leaguekeeper/internal/db"
	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
	"github.com/discleague/leaguekeeper/internal/events"
	leaguesvc "github.com/discleague/leaguekeeper/internal/leagues"
)

const (
	leagueQueryTimeout = 5 * time.Second
	leagueIDPathKey    = "id"
	gameIDPathKey      = "game_id"
)

var (
	queries   *dbgen.Queries
	database  *appdb.DB
	publisher events.Publisher
	location  = time.UTC
	clock     = clockwork.NewRealClock()
)

type leagueRequest struct {
	Name              *string        `json:"name"`
	AgeDivision       *string        `json:"ageDivision"`
	Season            *string        `json:"season"`
	Sport             *string        `json:"sport"`
	StartDate         *string        `json:"startDate"`
	EndDate           *string        `json:"endDate"`
	RegistrationOpen  *string        `json:"registrationOpen"`
	RegistrationClose *string        `json:"registrationClose"`
	PlayerLimit       map[string]int `json:"playerLimit"`
	Price             json.Number    `json:"price"`
	Description       *string        `json:"description"`
	RequireGrank      *bool          `json:"requireGrank"`
	AllowSelfRank     *bool          `json:"allowSelfRank"`
	AllowPairs        *bool          `json:"allowPairs"`
	CoreType          *string        `json:"coreType"`
	EosTourney        *bool          `json:"eosTourney"`
	MstTourney        *bool          `json:"mstTourney"`
}

type leagueResponse struct {
	ID                   int64          `json:"id"`
	Name                 string         `json:"name"`
	AgeDivision          string         `json:"ageDivision"`
	Season               string         `json:"season"`
	Sport                string         `json:"sport"`
	StartDate            string         `json:"startDate"`
	EndDate              string         `json:"endDate"`
	RegistrationOpen     *string        `json:"registrationOpen"`
	RegistrationClose    *string        `json:"registrationClose"`
	PlayerLimit          map[string]int `json:"playerLimit"`
	Price                int64          `json:"price"`
	Description          string         `json:"description"`
	RequireGrank         bool           `json:"requireGrank"`
	AllowSelfRank        bool           `json:"allowSelfRank"`
	AllowPairs           bool           `json:"allowPairs"`
	CoreType             string         `json:"coreType"`
	EosTourney           bool           `json:"eosTourney"`
	MstTourney           bool           `json:"mstTourney"`
	NeedsStandingsUpdate bool           `json:"needsStandingsUpdate"`
	RegistrationIsOpen   bool           `json:"registrationIsOpen"`
	Started              bool           `json:"started"`
}

type idsRequest struct {
	UserIDs []int64 `json:"userIds"`
}

type compsRequest struct {
	PlayerIDs []int64 `json:"playerIds"`
	GroupIDs  []int64 `json:"groupIds"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(db *appdb.DB, loc *time.Location, pub events.Publisher) {
	if db == nil {
		return
	}
	database = db
	queries = db.Queries
	publisher = pub
	if loc != nil {
		location = loc
	}
}

// GET /api/v1/leagues
func HandleLeaguesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	scope, err := leaguesvc.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	now := clock.Now()
	list, err := leaguesvc.ListByScope(ctx, queries, scope, leaguesvc.Today(now, location))
	if err != nil {
		logger.Error().Err(err).Str("scope", string(scope)).Msg("Failed to list leagues")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to list leagues")
		return
	}

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(w, r, leaguesListComponent(list, now))
		return
	}

	responses := make([]leagueResponse, 0, len(list))
	for _, league := range list {
		resp, err := newLeagueResponse(league, now)
		if err != nil {
			logger.Error().Err(err).Int64("league_id", league.ID).Msg("Failed to build league response")
			apiutil.WriteError(w, http.StatusInternalServerError, "failed to list leagues")
			return
		}
		responses = append(responses, resp)
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"leagues": responses}); err != nil {
		logger.Error().Err(err).Msg("Failed to write leagues response")
	}
}

// POST /api/v1/leagues
func HandleLeagueCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if apiutil.WriteHandlerError(w, r, authz.RequireAdmin(r.Context())) {
		return
	}

	var req leagueRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := clock.Now()
	input, errs := applyLeagueRequest(leaguesvc.DefaultLeagueInput(leaguesvc.Today(now, location)), req)
	if len(errs) > 0 {
		apiutil.WriteValidationError(w, errs)
		return
	}
	if apiutil.WriteHandlerError(w, r, input.Validate()) {
		return
	}

	params, err := input.CreateParams()
	if err != nil {
		apiutil.WriteHandlerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	league, err := queries.CreateLeague(ctx, params)
	if err != nil {
		logger.Error().Err(err).Str("name", params.Name).Msg("Failed to create league")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to create league")
		return
	}
	logger.Info().Int64("league_id", league.ID).Str("name", league.Name).Msg("League created")

	writeLeague(w, r, http.StatusCreated, league, now)
}

// GET /api/v1/leagues/{id}
func HandleLeagueDetail(w http.ResponseWriter, r *http.Request) {
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

	writeLeague(w, r, http.StatusOK, league, clock.Now())
}

// PUT /api/v1/leagues/{id}
func HandleLeagueUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid league ID")
		return
	}

	var req leagueRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
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

	base, err := leaguesvc.InputFromLeague(league)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err)
		return
	}
	input, errs := applyLeagueRequest(base, req)
	if len(errs) > 0 {
		apiutil.WriteValidationError(w, errs)
		return
	}
	if apiutil.WriteHandlerError(w, r, input.Validate()) {
		return
	}

	params, err := input.UpdateParams(leagueID)
	if err != nil {
		apiutil.WriteHandlerError(w, r, err)
		return
	}

	updated, err := queries.UpdateLeague(ctx, params)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusNotFound, "league not found")
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to update league")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to update league")
		return
	}

	if htmx.IsRequest(r) {
		htmx.Trigger(w, htmx.EventLeaguesChanged)
	}
	writeLeague(w, r, http.StatusOK, updated, clock.Now())
}

// DELETE /api/v1/leagues/{id}
func HandleLeagueDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if apiutil.WriteHandlerError(w, r, authz.RequireAdmin(r.Context())) {
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid league ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	affected, err := queries.DeleteLeague(ctx, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to delete league")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to delete league")
		return
	}
	if affected == 0 {
		apiutil.WriteError(w, http.StatusNotFound, "league not found")
		return
	}
	logger.Info().Int64("league_id", leagueID).Msg("League deleted")

	if htmx.IsRequest(r) {
		htmx.Trigger(w, htmx.EventLeaguesChanged)
		apiutil.RenderHTMLComponent(w, r, leagueDeleteComponent())
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"deleted": leagueID}); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write league delete response")
	}
}

// PUT /api/v1/leagues/{id}/commissioners
func HandleCommissionersUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if apiutil.WriteHandlerError(w, r, authz.RequireAdmin(r.Context())) {
		return
	}

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid league ID")
		return
	}

	var req idsRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userIDs, err := uniqueIDs(req.UserIDs, "userIds")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), leagueQueryTimeout)
	defer cancel()

	if _, ok := loadLeague(ctx, w, r, leagueID); !ok {
		return
	}

	if err := leaguesvc.ReplaceCommissioners(ctx, database, leagueID, userIDs); err != nil {
		if apiutil.IsForeignKeyViolation(err) {
			apiutil.WriteError(w, http.StatusBadRequest, "unknown user")
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to update commissioners")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to update commissioners")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"userIds": userIDs}); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write commissioners response")
	}
}

// PUT /api/v1/leagues/{id}/comps
func HandleCompsUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid league ID")
		return
	}

	var req compsRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	playerIDs, err := uniqueIDs(req.PlayerIDs, "playerIds")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	groupIDs, err := uniqueIDs(req.GroupIDs, "groupIds")
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
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

	comps := leaguesvc.Comps{PlayerIDs: playerIDs, GroupIDs: groupIDs}
	if err := leaguesvc.ReplaceComps(ctx, database, leagueID, comps); err != nil {
		if apiutil.IsForeignKeyViolation(err) {
			apiutil.WriteError(w, http.StatusBadRequest, "unknown player or comp group")
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to update comps")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to update comps")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, comps); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write comps response")
	}
}

// GET /api/v1/leagues/{id}/comped
func HandleCompedStatus(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	user, err := authz.RequireUser(r.Context())
	if apiutil.WriteHandlerError(w, r, err) {
		return
	}

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

	comped, err := leaguesvc.IsComped(ctx, queries, leagueID, user.ID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Int64("user_id", user.ID).Msg("Failed to check comp status")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to check comp status")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"comped": comped}); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write comped response")
	}
}

// applyLeagueRequest overlays the fields present in req on base. Fields that
// cannot be parsed are reported; everything else is left to Validate.
func applyLeagueRequest(base leaguesvc.LeagueInput, req leagueRequest) (leaguesvc.LeagueInput, leaguesvc.ValidationErrors) {
	var errs leaguesvc.ValidationErrors
	in := base

	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.AgeDivision != nil {
		in.AgeDivision = *req.AgeDivision
	}
	if req.Season != nil {
		in.Season = *req.Season
	}
	if req.Sport != nil {
		in.Sport = *req.Sport
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.CoreType != nil {
		in.CoreType = *req.CoreType
	}
	if req.PlayerLimit != nil {
		in.PlayerLimit = req.PlayerLimit
	}
	if req.Price != "" {
		price, err := apiutil.ParseIntegerNumber(req.Price, "price")
		if err != nil {
			errs = append(errs, leaguesvc.ValidationError{Field: "price", Reason: "must be an integer"})
		} else {
			in.Price = price
		}
	}

	dates := []struct {
		field string
		raw   *string
		dst   *time.Time
	}{
		{"start_date", req.StartDate, &in.StartDate},
		{"end_date", req.EndDate, &in.EndDate},
	}
	for _, date := range dates {
		if date.raw == nil {
			continue
		}
		parsed, err := apiutil.ParseDate(*date.raw, date.field)
		if err != nil {
			errs = append(errs, leaguesvc.ValidationError{Field: date.field, Reason: "must be a date in YYYY-MM-DD format"})
			continue
		}
		*date.dst = parsed
	}

	if req.RegistrationOpen != nil {
		parsed, err := apiutil.ParseOptionalDate(req.RegistrationOpen, "registration_open")
		if err != nil {
			errs = append(errs, leaguesvc.ValidationError{Field: "registration_open", Reason: "must be a date in YYYY-MM-DD format"})
		} else {
			in.RegistrationOpen = parsed
		}
	}
	if req.RegistrationClose != nil {
		parsed, err := apiutil.ParseOptionalDate(req.RegistrationClose, "registration_close")
		if err != nil {
			errs = append(errs, leaguesvc.ValidationError{Field: "registration_close", Reason: "must be a date in YYYY-MM-DD format"})
		} else {
			in.RegistrationClose = parsed
		}
	}

	flags := []struct {
		value *bool
		dst   *bool
	}{
		{req.RequireGrank, &in.RequireGrank},
		{req.AllowSelfRank, &in.AllowSelfRank},
		{req.AllowPairs, &in.AllowPairs},
		{req.EosTourney, &in.EosTourney},
		{req.MstTourney, &in.MstTourney},
	}
	for _, flag := range flags {
		if flag.value != nil {
			*flag.dst = *flag.value
		}
	}

	return in.Normalize(), errs
}

func newLeagueResponse(league dbgen.League, now time.Time) (leagueResponse, error) {
	limits, err := leaguesvc.DecodePlayerLimit(league.PlayerLimit)
	if err != nil {
		return leagueResponse{}, err
	}
	return leagueResponse{
		ID:                   league.ID,
		Name:                 league.Name,
		AgeDivision:          league.AgeDivision,
		Season:               league.Season,
		Sport:                league.Sport,
		StartDate:            apiutil.FormatDate(league.StartDate),
		EndDate:              apiutil.FormatDate(league.EndDate),
		RegistrationOpen:     formatNullDate(league.RegistrationOpen),
		RegistrationClose:    formatNullDate(league.RegistrationClose),
		PlayerLimit:          limits,
		Price:                league.Price,
		Description:          league.Description,
		RequireGrank:         league.RequireGrank,
		AllowSelfRank:        league.AllowSelfRank,
		AllowPairs:           league.AllowPairs,
		CoreType:             league.CoreType,
		EosTourney:           league.EosTourney,
		MstTourney:           league.MstTourney,
		NeedsStandingsUpdate: league.NeedsStandingsUpdate,
		RegistrationIsOpen:   leaguesvc.RegistrationOpenAt(league, location, now),
		Started:              leaguesvc.StartedAt(league, location, now),
	}, nil
}

func writeLeague(w http.ResponseWriter, r *http.Request, status int, league dbgen.League, now time.Time) {
	logger := log.Ctx(r.Context())

	if htmx.IsRequest(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		apiutil.RenderHTMLComponent(w, r, leagueDetailComponent(league, now))
		return
	}

	resp, err := newLeagueResponse(league, now)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", league.ID).Msg("Failed to build league response")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load league")
		return
	}
	if err := apiutil.WriteJSON(w, status, resp); err != nil {
		logger.Error().Err(err).Int64("league_id", league.ID).Msg("Failed to write league response")
	}
}

// loadLeague writes 404 or 500 and reports false when the league cannot be loaded.
func loadLeague(ctx context.Context, w http.ResponseWriter, r *http.Request, leagueID int64) (dbgen.League, bool) {
	league, err := queries.GetLeague(ctx, leagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusNotFound, "league not found")
			return dbgen.League{}, false
		}
		log.Ctx(r.Context()).Error().Err(err).Int64("league_id", leagueID).Msg("Failed to fetch league")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to fetch league")
		return dbgen.League{}, false
	}
	return league, true
}

func uniqueIDs(ids []int64, field string) ([]int64, error) {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, errors.New(field + " must contain positive integers")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })
	return unique, nil
}

func formatNullDate(date sql.NullTime) *string {
	if !date.Valid {
		return nil
	}
	formatted := apiutil.FormatDate(date.Time)
	return &formatted
}
