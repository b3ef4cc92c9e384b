// internal/api/registrations/handlers.go
package registrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/discleague/leaguekeeper/internal/api/apiutil"
	"github.com/discleague/leaguekeeper/internal/api/authz"
	appdb "github.com/discleague/leaguekeeper/internal/db"
	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
	"github.com/discleague/leaguekeeper/internal/email"
	"github.com/discleague/leaguekeeper/internal/events"
	"github.com/discleague/leaguekeeper/internal/leagues"
)

const (
	registrationQueryTimeout = 5 * time.Second
	leagueIDPathKey          = "id"
	maxNotesLength           = 1000
)

var (
	database    *appdb.DB
	queries     *dbgen.Queries
	emailSender email.EmailSender
	publisher   events.Publisher
	baseURL     string
	location    = time.UTC
	clock       = clockwork.NewRealClock()
)

type registrationRequest struct {
	Role       string `json:"role"`
	GRank      *int64 `json:"gRank"`
	SelfRank   *int64 `json:"selfRank"`
	PairUserID *int64 `json:"pairUserId"`
	Phone      string `json:"phone"`
	Notes      string `json:"notes"`
}

type registrationResponse struct {
	ID         int64     `json:"id"`
	LeagueID   int64     `json:"leagueId"`
	UserID     int64     `json:"userId"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	GRank      *int64    `json:"gRank"`
	SelfRank   *int64    `json:"selfRank"`
	PairUserID *int64    `json:"pairUserId"`
	Phone      string    `json:"phone"`
	AmountDue  int64     `json:"amountDue"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Config carries the collaborators registration handlers need.
type Config struct {
	Location    *time.Location
	EmailSender email.EmailSender
	Publisher   events.Publisher
	BaseURL     string
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(db *appdb.DB, cfg Config) {
	if db == nil {
		return
	}
	database = db
	queries = db.Queries
	emailSender = cfg.EmailSender
	publisher = cfg.Publisher
	baseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Location != nil {
		location = cfg.Location
	}
}

// POST /api/v1/leagues/{id}/registrations
func HandleRegistrationCreate(w http.ResponseWriter, r *http.Request) {
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

	var req registrationRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	notes := strings.TrimSpace(req.Notes)
	if len(notes) > maxNotesLength {
		apiutil.WriteValidationError(w, leagues.ValidationErrors{{Field: "notes", Reason: fmt.Sprintf("must be at most %d characters", maxNotesLength)}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), registrationQueryTimeout)
	defer cancel()

	league, err := queries.GetLeague(ctx, leagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusNotFound, "league not found")
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to fetch league")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to fetch league")
		return
	}

	canManage, err := authz.CanManageLeague(ctx, queries, user, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Int64("user_id", user.ID).Msg("Failed to check league access")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	now := clock.Now()
	var registration dbgen.Registration
	err = database.RunInTx(ctx, func(txdb *appdb.DB) error {
		qtx := txdb.Queries

		if _, err := leagues.RegistrationFor(ctx, qtx, leagueID, user.ID); err == nil {
			return apiutil.HandlerError{Status: http.StatusConflict, Message: leagues.ErrAlreadyRegistered.Error(), Err: leagues.ErrAlreadyRegistered}
		} else if !errors.Is(err, leagues.ErrRegistrationNotFound) {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to check registration", Err: err}
		}

		comped, err := leagues.IsComped(ctx, qtx, leagueID, user.ID)
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to check comp status", Err: err}
		}
		roleCount, err := qtx.CountRegistrationsByRole(ctx, dbgen.CountRegistrationsByRoleParams{
			LeagueID: leagueID,
			Role:     leagues.NormalizeRole(req.Role),
		})
		if err != nil {
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to count registrations", Err: err}
		}

		plan, err := leagues.PlanRegistration(league, leagues.RegistrationRequest{
			UserID:     user.ID,
			Role:       req.Role,
			GRank:      req.GRank,
			SelfRank:   req.SelfRank,
			PairUserID: req.PairUserID,
			Phone:      req.Phone,
			Notes:      notes,
		}, leagues.RegistrationContext{
			Now:       now,
			Location:  location,
			Comped:    comped,
			RoleCount: roleCount,
			CanManage: canManage,
		})
		if err != nil {
			if errors.Is(err, leagues.ErrRegistrationClosed) {
				return apiutil.HandlerError{Status: http.StatusForbidden, Message: err.Error(), Err: err}
			}
			return err
		}

		created, err := qtx.CreateRegistration(ctx, dbgen.CreateRegistrationParams{
			LeagueID:   leagueID,
			UserID:     user.ID,
			Role:       plan.Role,
			Status:     plan.Status,
			GRank:      apiutil.ToNullInt64(req.GRank),
			SelfRank:   apiutil.ToNullInt64(req.SelfRank),
			PairUserID: apiutil.ToNullInt64(req.PairUserID),
			Phone:      plan.Phone,
			AmountDue:  plan.AmountDue,
			Notes:      notes,
		})
		if err != nil {
			switch {
			case apiutil.IsUniqueViolation(err):
				return apiutil.HandlerError{Status: http.StatusConflict, Message: leagues.ErrAlreadyRegistered.Error(), Err: err}
			case apiutil.IsForeignKeyViolation(err):
				return apiutil.HandlerError{Status: http.StatusBadRequest, Message: "pair user not found", Err: err}
			}
			return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "failed to create registration", Err: err}
		}
		registration = created
		return nil
	})
	if apiutil.WriteHandlerError(w, r, err) {
		return
	}

	logger.Info().
		Int64("league_id", leagueID).
		Int64("user_id", user.ID).
		Int64("registration_id", registration.ID).
		Str("status", registration.Status).
		Msg("Registration created")

	notifyRegistration(ctx, league, registration)

	if err := apiutil.WriteJSON(w, http.StatusCreated, newRegistrationResponse(registration)); err != nil {
		logger.Error().Err(err).Int64("registration_id", registration.ID).Msg("Failed to write registration response")
	}
}

// GET /api/v1/leagues/{id}/registration
func HandleMyRegistration(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), registrationQueryTimeout)
	defer cancel()

	registration, err := leagues.RegistrationFor(ctx, queries, leagueID, user.ID)
	if err != nil {
		if errors.Is(err, leagues.ErrRegistrationNotFound) {
			apiutil.WriteError(w, http.StatusNotFound, "registration not found")
			return
		}
		logger.Error().Err(err).Int64("league_id", leagueID).Int64("user_id", user.ID).Msg("Failed to fetch registration")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to fetch registration")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, newRegistrationResponse(registration)); err != nil {
		logger.Error().Err(err).Int64("registration_id", registration.ID).Msg("Failed to write registration response")
	}
}

// GET /api/v1/leagues/{id}/registrations
func HandleRegistrationsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	leagueID, err := apiutil.PathID(r, leagueIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid league ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), registrationQueryTimeout)
	defer cancel()

	if apiutil.WriteHandlerError(w, r, authz.RequireLeagueManager(ctx, queries, leagueID)) {
		return
	}

	list, err := queries.ListLeagueRegistrations(ctx, leagueID)
	if err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to list registrations")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to list registrations")
		return
	}

	responses := make([]registrationResponse, 0, len(list))
	for _, registration := range list {
		responses = append(responses, newRegistrationResponse(registration))
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"registrations": responses}); err != nil {
		logger.Error().Err(err).Int64("league_id", leagueID).Msg("Failed to write registrations response")
	}
}

// notifyRegistration emails the player and publishes the registration event.
// Neither failure affects the response.
func notifyRegistration(ctx context.Context, league dbgen.League, registration dbgen.Registration) {
	logger := log.Ctx(ctx)

	if publisher != nil {
		payload := events.RegistrationCreated{
			RegistrationID: registration.ID,
			UserID:         registration.UserID,
			Status:         registration.Status,
			AmountDue:      registration.AmountDue,
		}
		if err := publisher.Publish(ctx, league.ID, events.TypeRegistrationCreated, payload); err != nil {
			logger.Warn().Err(err).Int64("registration_id", registration.ID).Msg("Failed to publish registration event")
		}
	}

	if emailSender == nil {
		return
	}
	user, err := queries.GetUser(ctx, registration.UserID)
	if err != nil {
		logger.Warn().Err(err).Int64("user_id", registration.UserID).Msg("Failed to load user for confirmation email")
		return
	}
	message := email.BuildRegistrationConfirmation(email.RegistrationDetails{
		FirstName:  user.FirstName,
		LeagueName: league.Name,
		Status:     registration.Status,
		AmountDue:  registration.AmountDue,
		StartDate:  league.StartDate,
		LeagueURL:  leagueURL(league.ID),
	})
	email.SendAsync(ctx, emailSender, user.Email, message, logger)
}

func leagueURL(leagueID int64) string {
	if baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/leagues/%d", baseURL, leagueID)
}

func newRegistrationResponse(registration dbgen.Registration) registrationResponse {
	return registrationResponse{
		ID:         registration.ID,
		LeagueID:   registration.LeagueID,
		UserID:     registration.UserID,
		Role:       registration.Role,
		Status:     registration.Status,
		GRank:      apiutil.FromNullInt64(registration.GRank),
		SelfRank:   apiutil.FromNullInt64(registration.SelfRank),
		PairUserID: apiutil.FromNullInt64(registration.PairUserID),
		Phone:      registration.Phone,
		AmountDue:  registration.AmountDue,
		Notes:      registration.Notes,
		CreatedAt:  registration.CreatedAt,
	}
}
