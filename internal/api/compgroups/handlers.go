// internal/api/compgroups/handlers.go
package compgroups

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/discleague/leaguekeeper/internal/api/apiutil"
	"github.com/discleague/leaguekeeper/internal/api/authz"
	appdb "github.com/discleague/leaguekeeper/internal/db"
	"github.com/discleague/leaguekeeper/internal/leagues"
)

const (
	compGroupQueryTimeout = 5 * time.Second
	compGroupIDPathKey    = "id"
)

var database *appdb.DB

type compGroupRequest struct {
	Name string `json:"name"`
}

type membersRequest struct {
	UserIDs []int64 `json:"userIds"`
}

type compGroupResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	MemberIDs []int64 `json:"memberIds"`
}

func InitHandlers(db *appdb.DB) {
	database = db
}

// POST /api/v1/comp-groups
func HandleCompGroupCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if apiutil.WriteHandlerError(w, r, authz.RequireAdmin(r.Context())) {
		return
	}

	var req compGroupRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		apiutil.WriteValidationError(w, leagues.ValidationErrors{{Field: "name", Reason: "is required"}})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), compGroupQueryTimeout)
	defer cancel()

	group, err := database.Queries.CreateCompGroup(ctx, name)
	if err != nil {
		if apiutil.IsUniqueViolation(err) {
			apiutil.WriteError(w, http.StatusConflict, "a comp group with that name already exists")
			return
		}
		logger.Error().Err(err).Msg("Failed to create comp group")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to create comp group")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, compGroupResponse{ID: group.ID, Name: group.Name, MemberIDs: []int64{}}); err != nil {
		logger.Error().Err(err).Int64("comp_group_id", group.ID).Msg("Failed to write comp group response")
	}
}

// GET /api/v1/comp-groups
func HandleCompGroupsList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if apiutil.WriteHandlerError(w, r, authz.RequireAdmin(r.Context())) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), compGroupQueryTimeout)
	defer cancel()

	q := database.Queries
	groups, err := q.ListCompGroups(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list comp groups")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to list comp groups")
		return
	}

	responses := make([]compGroupResponse, 0, len(groups))
	for _, group := range groups {
		members, err := q.ListCompGroupMemberIDs(ctx, group.ID)
		if err != nil {
			logger.Error().Err(err).Int64("comp_group_id", group.ID).Msg("Failed to list comp group members")
			apiutil.WriteError(w, http.StatusInternalServerError, "failed to list comp groups")
			return
		}
		if members == nil {
			members = []int64{}
		}
		responses = append(responses, compGroupResponse{ID: group.ID, Name: group.Name, MemberIDs: members})
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"compGroups": responses}); err != nil {
		logger.Error().Err(err).Msg("Failed to write comp groups response")
	}
}

// PUT /api/v1/comp-groups/{id}/members
func HandleCompGroupMembersUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if apiutil.WriteHandlerError(w, r, authz.RequireAdmin(r.Context())) {
		return
	}

	groupID, err := apiutil.PathID(r, compGroupIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid comp group ID")
		return
	}

	var req membersRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	memberIDs := make([]int64, 0, len(req.UserIDs))
	seen := make(map[int64]struct{}, len(req.UserIDs))
	for _, id := range req.UserIDs {
		if id <= 0 {
			apiutil.WriteError(w, http.StatusBadRequest, "userIds must contain positive integers")
			return
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		memberIDs = append(memberIDs, id)
	}
	sort.Slice(memberIDs, func(i, j int) bool { return memberIDs[i] < memberIDs[j] })

	ctx, cancel := context.WithTimeout(r.Context(), compGroupQueryTimeout)
	defer cancel()

	group, err := database.Queries.GetCompGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusNotFound, "comp group not found")
			return
		}
		logger.Error().Err(err).Int64("comp_group_id", groupID).Msg("Failed to fetch comp group")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to fetch comp group")
		return
	}

	if err := leagues.ReplaceCompGroupMembers(ctx, database, groupID, memberIDs); err != nil {
		if apiutil.IsForeignKeyViolation(err) {
			apiutil.WriteError(w, http.StatusBadRequest, "unknown user")
			return
		}
		logger.Error().Err(err).Int64("comp_group_id", groupID).Msg("Failed to update comp group members")
		apiutil.WriteError(w, http.StatusInternalServerError, "failed to update comp group members")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, compGroupResponse{ID: group.ID, Name: group.Name, MemberIDs: memberIDs}); err != nil {
		logger.Error().Err(err).Int64("comp_group_id", groupID).Msg("Failed to write comp group response")
	}
}
