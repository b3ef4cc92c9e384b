// internal/api/users/handlers.go
package users

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/discleague/leaguekeeper/internal/api/apiutil"
	"github.com/discleague/leaguekeeper/internal/api/auth"
	"github.com/discleague/leaguekeeper/internal/api/authz"
	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
	"github.com/discleague/leaguekeeper/internal/leagues"
)

const userQueryTimeout = 5 * time.Second

var queries *dbgen.Queries

type createUserRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	IsAdmin   bool   `json:"isAdmin"`
}

type userResponse struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     *string `json:"phone"`
	IsAdmin   bool    `json:"isAdmin"`
}

func InitHandlers(q *dbgen.Queries) {
	queries = q
}

// POST /api/v1/users
func HandleUserCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if apiutil.WriteHandlerError(w, r, authz.RequireAdmin(r.Context())) {
		return
	}

	var req createUserRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params, err := parseCreateUser(req)
	if apiutil.WriteHandlerError(w, r, err) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), userQueryTimeout)
	defer cancel()

	user, err := queries.CreateUser(ctx, params)
	if err != nil {
		if apiutil.IsUniqueViolation(err) {
			apiutil.WriteError(w, http.StatusConflict, "a user with that email already exists")
			return
		}
		logger.Error().Err(err).Msg("Failed to create user")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	logger.Info().Int64("user_id", user.ID).Bool("is_admin", user.IsAdmin).Msg("User created")

	if err := apiutil.WriteJSON(w, http.StatusCreated, newUserResponse(user)); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to write user response")
	}
}

func parseCreateUser(req createUserRequest) (dbgen.CreateUserParams, error) {
	var errs leagues.ValidationErrors

	email := strings.TrimSpace(req.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		errs = append(errs, leagues.ValidationError{Field: "email", Reason: "must be a valid email address"})
	}
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		errs = append(errs, leagues.ValidationError{Field: "first_name", Reason: "is required"})
	}
	lastName := strings.TrimSpace(req.LastName)
	if lastName == "" {
		errs = append(errs, leagues.ValidationError{Field: "last_name", Reason: "is required"})
	}

	var phone sql.NullString
	if strings.TrimSpace(req.Phone) != "" {
		normalized, err := leagues.NormalizePhone(req.Phone)
		if err != nil {
			errs = append(errs, leagues.ValidationError{Field: "phone", Reason: "must be a valid phone number"})
		} else {
			phone = sql.NullString{String: normalized, Valid: true}
		}
	}

	var passwordHash sql.NullString
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		switch {
		case errors.Is(err, auth.ErrPasswordTooShort):
			errs = append(errs, leagues.ValidationError{Field: "password", Reason: "must be at least 8 characters"})
		case err != nil:
			return dbgen.CreateUserParams{}, err
		default:
			passwordHash = sql.NullString{String: hash, Valid: true}
		}
	}

	if len(errs) > 0 {
		return dbgen.CreateUserParams{}, errs
	}
	return dbgen.CreateUserParams{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		PasswordHash: passwordHash,
		IsAdmin:      req.IsAdmin,
	}, nil
}

func newUserResponse(user dbgen.User) userResponse {
	resp := userResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsAdmin:   user.IsAdmin,
	}
	if user.Phone.Valid {
		phone := user.Phone.String
		resp.Phone = &phone
	}
	return resp
}
