package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/discleague/leaguekeeper/internal/api/apiutil"
	"github.com/discleague/leaguekeeper/internal/api/authz"
	"github.com/discleague/leaguekeeper/internal/config"
	dbgen "github.com/discleague/leaguekeeper/internal/db/generated"
	"github.com/discleague/leaguekeeper/internal/ratelimit"
)

const authQueryTimeout = 5 * time.Second

var (
	queries   *dbgen.Queries
	appConfig *config.Config
	limiter   *ratelimit.Limiter
)

func InitHandlers(q *dbgen.Queries, cfg *config.Config, l *ratelimit.Limiter) {
	queries = q
	appConfig = cfg
	limiter = l
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	IsAdmin   bool   `json:"isAdmin"`
}

func newUserResponse(user dbgen.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsAdmin:   user.IsAdmin,
	}
}

// POST /api/v1/auth/login
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	var req loginRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		apiutil.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	ip := ratelimit.ClientIP(r, appConfig != nil && appConfig.App.TrustProxy)
	if limiter != nil {
		if result := limiter.CheckLogin(email, ip); !result.Allowed {
			ratelimit.LogLimited(email, ip, result)
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(result.RetryAfter.Seconds())+1))
			apiutil.WriteError(w, http.StatusTooManyRequests, "too many login attempts")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	user, err := queries.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.Error().Err(err).Msg("Failed to load user for login")
		apiutil.WriteError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if err != nil || !user.PasswordHash.Valid || !VerifyPassword(user.PasswordHash.String, req.Password) {
		if limiter != nil && limiter.RecordFailure(email, ip) {
			logger.Warn().Str("email", ratelimit.MaskEmail(email)).Msg("Login locked out after repeated failures")
		}
		apiutil.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if limiter != nil {
		limiter.RecordSuccess(email, ip)
	}
	if err := CreateSession(w, user.ID); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to create session")
		apiutil.WriteError(w, http.StatusInternalServerError, "login failed")
		return
	}

	logger.Info().Int64("user_id", user.ID).Msg("User signed in")
	if err := apiutil.WriteJSON(w, http.StatusOK, newUserResponse(user)); err != nil {
		logger.Error().Err(err).Msg("Failed to write login response")
	}
}

// POST /api/v1/auth/logout
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	ClearSession(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/auth/me
func HandleMe(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	authUser, err := authz.RequireUser(r.Context())
	if apiutil.WriteHandlerError(w, r, err) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), authQueryTimeout)
	defer cancel()

	user, err := queries.GetUser(ctx, authUser.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		logger.Error().Err(err).Int64("user_id", authUser.ID).Msg("Failed to load current user")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, newUserResponse(user)); err != nil {
		logger.Error().Err(err).Msg("Failed to write user response")
	}
}

// EnsureAdmin creates the configured administrator when the site has none.
// It does nothing unless both the admin email and ADMIN_PASSWORD are set.
func EnsureAdmin(ctx context.Context, q *dbgen.Queries, cfg *config.Config) error {
	if cfg == nil || cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return nil
	}

	count, err := q.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	user, err := q.CreateUser(ctx, dbgen.CreateUserParams{
		Email:        cfg.Admin.Email,
		FirstName:    "Site",
		LastName:     "Admin",
		PasswordHash: sql.NullString{String: hash, Valid: true},
		IsAdmin:      true,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Info().Int64("user_id", user.ID).Str("email", ratelimit.MaskEmail(user.Email)).Msg("Bootstrapped administrator account")
	return nil
}
