// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/discleague/leaguekeeper/internal/api"
	"github.com/discleague/leaguekeeper/internal/api/auth"
	"github.com/discleague/leaguekeeper/internal/api/compgroups"
	"github.com/discleague/leaguekeeper/internal/api/leagues"
	"github.com/discleague/leaguekeeper/internal/api/registrations"
	"github.com/discleague/leaguekeeper/internal/api/users"
	"github.com/discleague/leaguekeeper/internal/config"
	"github.com/discleague/leaguekeeper/internal/db"
	"github.com/discleague/leaguekeeper/internal/email"
	"github.com/discleague/leaguekeeper/internal/events"
	"github.com/discleague/leaguekeeper/internal/ratelimit"
)

const (
	serverReadTimeout  = 15 * time.Second
	serverWriteTimeout = 15 * time.Second
	serverIdleTimeout  = 60 * time.Second
)

type serverDeps struct {
	database  *db.DB
	sender    email.EmailSender
	publisher events.Publisher
	limiter   *ratelimit.Limiter
}

func newServer(cfg *config.Config, deps serverDeps) *http.Server {
	router := http.NewServeMux()

	initHandlers(cfg, deps)
	registerRoutes(router)

	// Setup middleware chain; the last entry runs first.
	handler := api.ChainMiddleware(
		router,
		api.WithAuth,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}
}

func initHandlers(cfg *config.Config, deps serverDeps) {
	loc := cfg.Location()

	auth.InitHandlers(deps.database.Queries, cfg, deps.limiter)
	users.InitHandlers(deps.database.Queries)
	compgroups.InitHandlers(deps.database)
	leagues.InitHandlers(deps.database, loc, deps.publisher)
	registrations.InitHandlers(deps.database, registrations.Config{
		Location:    loc,
		EmailSender: deps.sender,
		Publisher:   deps.publisher,
		BaseURL:     cfg.App.BaseURL,
	})
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Auth routes
	mux.HandleFunc("POST /api/v1/auth/login", auth.HandleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", auth.HandleLogout)
	mux.HandleFunc("GET /api/v1/auth/me", auth.HandleMe)

	// User and comp group administration
	mux.HandleFunc("POST /api/v1/users", users.HandleUserCreate)
	mux.HandleFunc("POST /api/v1/comp-groups", compgroups.HandleCompGroupCreate)
	mux.HandleFunc("GET /api/v1/comp-groups", compgroups.HandleCompGroupsList)
	mux.HandleFunc("PUT /api/v1/comp-groups/{id}/members", compgroups.HandleCompGroupMembersUpdate)

	// League routes
	mux.HandleFunc("GET /api/v1/leagues", leagues.HandleLeaguesList)
	mux.HandleFunc("POST /api/v1/leagues", leagues.HandleLeagueCreate)
	mux.HandleFunc("GET /api/v1/leagues/{id}", leagues.HandleLeagueDetail)
	mux.HandleFunc("PUT /api/v1/leagues/{id}", leagues.HandleLeagueUpdate)
	mux.HandleFunc("DELETE /api/v1/leagues/{id}", leagues.HandleLeagueDelete)
	mux.HandleFunc("PUT /api/v1/leagues/{id}/commissioners", leagues.HandleCommissionersUpdate)
	mux.HandleFunc("PUT /api/v1/leagues/{id}/comps", leagues.HandleCompsUpdate)
	mux.HandleFunc("GET /api/v1/leagues/{id}/comped", leagues.HandleCompedStatus)

	// Teams, games and standings
	mux.HandleFunc("GET /api/v1/leagues/{id}/teams", leagues.HandleTeamsList)
	mux.HandleFunc("POST /api/v1/leagues/{id}/teams", leagues.HandleTeamCreate)
	mux.HandleFunc("POST /api/v1/leagues/{id}/games", leagues.HandleGameCreate)
	mux.HandleFunc("PUT /api/v1/leagues/{id}/games/{game_id}/score", leagues.HandleGameScoreUpdate)
	mux.HandleFunc("POST /api/v1/leagues/{id}/schedule", leagues.HandleGenerateSchedule)
	mux.HandleFunc("GET /api/v1/leagues/{id}/standings", leagues.HandleStandings)
	mux.HandleFunc("POST /api/v1/leagues/{id}/standings", leagues.HandleStandingsUpdate)

	// Registration routes
	mux.HandleFunc("POST /api/v1/leagues/{id}/registrations", registrations.HandleRegistrationCreate)
	mux.HandleFunc("GET /api/v1/leagues/{id}/registrations", registrations.HandleRegistrationsList)
	mux.HandleFunc("GET /api/v1/leagues/{id}/registration", registrations.HandleMyRegistration)
}
