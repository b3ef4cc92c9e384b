package dbgen

import (
	"context"
)

const createCompGroup = `-- name: CreateCompGroup :one
INSERT INTO comp_groups (name) VALUES (?)
RETURNING id, name, created_at`

func (q *Queries) CreateCompGroup(ctx context.Context, name string) (CompGroup, error) {
	row := q.db.QueryRowContext(ctx, createCompGroup, name)
	var i CompGroup
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const getCompGroup = `-- name: GetCompGroup :one
SELECT id, name, created_at FROM comp_groups WHERE id = ?`

func (q *Queries) GetCompGroup(ctx context.Context, id int64) (CompGroup, error) {
	row := q.db.QueryRowContext(ctx, getCompGroup, id)
	var i CompGroup
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const listCompGroups = `-- name: ListCompGroups :many
SELECT id, name, created_at FROM comp_groups ORDER BY name`

func (q *Queries) ListCompGroups(ctx context.Context) ([]CompGroup, error) {
	rows, err := q.db.QueryContext(ctx, listCompGroups)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CompGroup
	for rows.Next() {
		var i CompGroup
		if err := rows.Scan(&i.ID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const clearCompGroupMembers = `-- name: ClearCompGroupMembers :exec
DELETE FROM comp_group_members WHERE comp_group_id = ?`

func (q *Queries) ClearCompGroupMembers(ctx context.Context, compGroupID int64) error {
	_, err := q.db.ExecContext(ctx, clearCompGroupMembers, compGroupID)
	return err
}

const addCompGroupMember = `-- name: AddCompGroupMember :exec
INSERT INTO comp_group_members (comp_group_id, user_id) VALUES (?, ?)
ON CONFLICT DO NOTHING`

type AddCompGroupMemberParams struct {
	CompGroupID int64
	UserID      int64
}

func (q *Queries) AddCompGroupMember(ctx context.Context, arg AddCompGroupMemberParams) error {
	_, err := q.db.ExecContext(ctx, addCompGroupMember, arg.CompGroupID, arg.UserID)
	return err
}

const listCompGroupMemberIDs = `-- name: ListCompGroupMemberIDs :many
SELECT user_id FROM comp_group_members WHERE comp_group_id = ? ORDER BY user_id`

func (q *Queries) ListCompGroupMemberIDs(ctx context.Context, compGroupID int64) ([]int64, error) {
	return q.queryIDs(ctx, listCompGroupMemberIDs, compGroupID)
}

const clearLeagueCompedPlayers = `-- name: ClearLeagueCompedPlayers :exec
DELETE FROM league_comped_players WHERE league_id = ?`

func (q *Queries) ClearLeagueCompedPlayers(ctx context.Context, leagueID int64) error {
	_, err := q.db.ExecContext(ctx, clearLeagueCompedPlayers, leagueID)
	return err
}

const addLeagueCompedPlayer = `-- name: AddLeagueCompedPlayer :exec
INSERT INTO league_comped_players (league_id, user_id) VALUES (?, ?)
ON CONFLICT DO NOTHING`

type AddLeagueCompedPlayerParams struct {
	LeagueID int64
	UserID   int64
}

func (q *Queries) AddLeagueCompedPlayer(ctx context.Context, arg AddLeagueCompedPlayerParams) error {
	_, err := q.db.ExecContext(ctx, addLeagueCompedPlayer, arg.LeagueID, arg.UserID)
	return err
}

const listLeagueCompedPlayerIDs = `-- name: ListLeagueCompedPlayerIDs :many
SELECT user_id FROM league_comped_players WHERE league_id = ? ORDER BY user_id`

func (q *Queries) ListLeagueCompedPlayerIDs(ctx context.Context, leagueID int64) ([]int64, error) {
	return q.queryIDs(ctx, listLeagueCompedPlayerIDs, leagueID)
}

const clearLeagueCompedGroups = `-- name: ClearLeagueCompedGroups :exec
DELETE FROM league_comped_groups WHERE league_id = ?`

func (q *Queries) ClearLeagueCompedGroups(ctx context.Context, leagueID int64) error {
	_, err := q.db.ExecContext(ctx, clearLeagueCompedGroups, leagueID)
	return err
}

const addLeagueCompedGroup = `-- name: AddLeagueCompedGroup :exec
INSERT INTO league_comped_groups (league_id, comp_group_id) VALUES (?, ?)
ON CONFLICT DO NOTHING`

type AddLeagueCompedGroupParams struct {
	LeagueID    int64
	CompGroupID int64
}

func (q *Queries) AddLeagueCompedGroup(ctx context.Context, arg AddLeagueCompedGroupParams) error {
	_, err := q.db.ExecContext(ctx, addLeagueCompedGroup, arg.LeagueID, arg.CompGroupID)
	return err
}

const listLeagueCompedGroupIDs = `-- name: ListLeagueCompedGroupIDs :many
SELECT comp_group_id FROM league_comped_groups WHERE league_id = ? ORDER BY comp_group_id`

func (q *Queries) ListLeagueCompedGroupIDs(ctx context.Context, leagueID int64) ([]int64, error) {
	return q.queryIDs(ctx, listLeagueCompedGroupIDs, leagueID)
}

const isUserComped = `-- name: IsUserComped :one
SELECT EXISTS (
    SELECT 1 FROM league_comped_players lcp
    WHERE lcp.league_id = ?1 AND lcp.user_id = ?2
    UNION ALL
    SELECT 1 FROM league_comped_groups lcg
    JOIN comp_group_members cgm ON cgm.comp_group_id = lcg.comp_group_id
    WHERE lcg.league_id = ?1 AND cgm.user_id = ?2
)`

type IsUserCompedParams struct {
	LeagueID int64
	UserID   int64
}

func (q *Queries) IsUserComped(ctx context.Context, arg IsUserCompedParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, isUserComped, arg.LeagueID, arg.UserID)
	var comped bool
	err := row.Scan(&comped)
	return comped, err
}
