package dbgen

import (
	"context"
	"database/sql"
	"time"
)

const leagueColumns = `id, name, age_division, season, sport, start_date, end_date, registration_open,
       registration_close, needs_standings_update, player_limit, price, description, require_grank,
       allow_self_rank, allow_pairs, core_type, eos_tourney, mst_tourney, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLeague(row rowScanner) (League, error) {
	var i League
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.AgeDivision,
		&i.Season,
		&i.Sport,
		&i.StartDate,
		&i.EndDate,
		&i.RegistrationOpen,
		&i.RegistrationClose,
		&i.NeedsStandingsUpdate,
		&i.PlayerLimit,
		&i.Price,
		&i.Description,
		&i.RequireGrank,
		&i.AllowSelfRank,
		&i.AllowPairs,
		&i.CoreType,
		&i.EosTourney,
		&i.MstTourney,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) queryLeagues(ctx context.Context, query string, args ...interface{}) ([]League, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []League
	for rows.Next() {
		i, err := scanLeague(rows)
		if err != nil {
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

const createLeague = `-- name: CreateLeague :one
INSERT INTO leagues (
    name, age_division, season, sport, start_date, end_date, registration_open,
    registration_close, player_limit, price, description, require_grank,
    allow_self_rank, allow_pairs, core_type, eos_tourney, mst_tourney
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + leagueColumns

type CreateLeagueParams struct {
	Name              string
	AgeDivision       string
	Season            string
	Sport             string
	StartDate         time.Time
	EndDate           time.Time
	RegistrationOpen  sql.NullTime
	RegistrationClose sql.NullTime
	PlayerLimit       string
	Price             int64
	Description       string
	RequireGrank      bool
	AllowSelfRank     bool
	AllowPairs        bool
	CoreType          string
	EosTourney        bool
	MstTourney        bool
}

func (q *Queries) CreateLeague(ctx context.Context, arg CreateLeagueParams) (League, error) {
	row := q.db.QueryRowContext(ctx, createLeague,
		arg.Name,
		arg.AgeDivision,
		arg.Season,
		arg.Sport,
		arg.StartDate,
		arg.EndDate,
		arg.RegistrationOpen,
		arg.RegistrationClose,
		arg.PlayerLimit,
		arg.Price,
		arg.Description,
		arg.RequireGrank,
		arg.AllowSelfRank,
		arg.AllowPairs,
		arg.CoreType,
		arg.EosTourney,
		arg.MstTourney,
	)
	return scanLeague(row)
}

const getLeague = `-- name: GetLeague :one
SELECT ` + leagueColumns + ` FROM leagues WHERE id = ?`

func (q *Queries) GetLeague(ctx context.Context, id int64) (League, error) {
	row := q.db.QueryRowContext(ctx, getLeague, id)
	return scanLeague(row)
}

const updateLeague = `-- name: UpdateLeague :one
UPDATE leagues
SET name = ?,
    age_division = ?,
    season = ?,
    sport = ?,
    start_date = ?,
    end_date = ?,
    registration_open = ?,
    registration_close = ?,
    player_limit = ?,
    price = ?,
    description = ?,
    require_grank = ?,
    allow_self_rank = ?,
    allow_pairs = ?,
    core_type = ?,
    eos_tourney = ?,
    mst_tourney = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
RETURNING ` + leagueColumns

type UpdateLeagueParams struct {
	ID                int64
	Name              string
	AgeDivision       string
	Season            string
	Sport             string
	StartDate         time.Time
	EndDate           time.Time
	RegistrationOpen  sql.NullTime
	RegistrationClose sql.NullTime
	PlayerLimit       string
	Price             int64
	Description       string
	RequireGrank      bool
	AllowSelfRank     bool
	AllowPairs        bool
	CoreType          string
	EosTourney        bool
	MstTourney        bool
}

func (q *Queries) UpdateLeague(ctx context.Context, arg UpdateLeagueParams) (League, error) {
	row := q.db.QueryRowContext(ctx, updateLeague,
		arg.Name,
		arg.AgeDivision,
		arg.Season,
		arg.Sport,
		arg.StartDate,
		arg.EndDate,
		arg.RegistrationOpen,
		arg.RegistrationClose,
		arg.PlayerLimit,
		arg.Price,
		arg.Description,
		arg.RequireGrank,
		arg.AllowSelfRank,
		arg.AllowPairs,
		arg.CoreType,
		arg.EosTourney,
		arg.MstTourney,
		arg.ID,
	)
	return scanLeague(row)
}

const deleteLeague = `-- name: DeleteLeague :execrows
DELETE FROM leagues WHERE id = ?`

func (q *Queries) DeleteLeague(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteLeague, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listLeagues = `-- name: ListLeagues :many
SELECT ` + leagueColumns + ` FROM leagues ORDER BY start_date DESC, id DESC`

func (q *Queries) ListLeagues(ctx context.Context) ([]League, error) {
	return q.queryLeagues(ctx, listLeagues)
}

const listPastLeagues = `-- name: ListPastLeagues :many
SELECT ` + leagueColumns + ` FROM leagues
WHERE end_date < ?
ORDER BY start_date DESC, id DESC`

func (q *Queries) ListPastLeagues(ctx context.Context, today time.Time) ([]League, error) {
	return q.queryLeagues(ctx, listPastLeagues, today)
}

const listFutureLeagues = `-- name: ListFutureLeagues :many
SELECT ` + leagueColumns + ` FROM leagues
WHERE registration_open > ?
ORDER BY start_date DESC, id DESC`

func (q *Queries) ListFutureLeagues(ctx context.Context, today time.Time) ([]League, error) {
	return q.queryLeagues(ctx, listFutureLeagues, today)
}

const listCurrentLeagues = `-- name: ListCurrentLeagues :many
SELECT ` + leagueColumns + ` FROM leagues
WHERE registration_open <= ? AND end_date >= ?
ORDER BY start_date DESC, id DESC`

func (q *Queries) ListCurrentLeagues(ctx context.Context, today time.Time) ([]League, error) {
	return q.queryLeagues(ctx, listCurrentLeagues, today, today)
}

const listLeaguesStartingOn = `-- name: ListLeaguesStartingOn :many
SELECT ` + leagueColumns + ` FROM leagues
WHERE start_date = ?
ORDER BY id`

func (q *Queries) ListLeaguesStartingOn(ctx context.Context, day time.Time) ([]League, error) {
	return q.queryLeagues(ctx, listLeaguesStartingOn, day)
}

const listLeaguesNeedingStandingsUpdate = `-- name: ListLeaguesNeedingStandingsUpdate :many
SELECT ` + leagueColumns + ` FROM leagues
WHERE needs_standings_update = 1
ORDER BY id`

func (q *Queries) ListLeaguesNeedingStandingsUpdate(ctx context.Context) ([]League, error) {
	return q.queryLeagues(ctx, listLeaguesNeedingStandingsUpdate)
}

const setLeagueNeedsStandingsUpdate = `-- name: SetLeagueNeedsStandingsUpdate :exec
UPDATE leagues SET needs_standings_update = ? WHERE id = ?`

type SetLeagueNeedsStandingsUpdateParams struct {
	NeedsStandingsUpdate bool
	ID                   int64
}

func (q *Queries) SetLeagueNeedsStandingsUpdate(ctx context.Context, arg SetLeagueNeedsStandingsUpdateParams) error {
	_, err := q.db.ExecContext(ctx, setLeagueNeedsStandingsUpdate, arg.NeedsStandingsUpdate, arg.ID)
	return err
}

const listLeagueCommissionerIDs = `-- name: ListLeagueCommissionerIDs :many
SELECT user_id FROM league_commissioners WHERE league_id = ? ORDER BY user_id`

func (q *Queries) ListLeagueCommissionerIDs(ctx context.Context, leagueID int64) ([]int64, error) {
	return q.queryIDs(ctx, listLeagueCommissionerIDs, leagueID)
}

const clearLeagueCommissioners = `-- name: ClearLeagueCommissioners :exec
DELETE FROM league_commissioners WHERE league_id = ?`

func (q *Queries) ClearLeagueCommissioners(ctx context.Context, leagueID int64) error {
	_, err := q.db.ExecContext(ctx, clearLeagueCommissioners, leagueID)
	return err
}

const addLeagueCommissioner = `-- name: AddLeagueCommissioner :exec
INSERT INTO league_commissioners (league_id, user_id) VALUES (?, ?)
ON CONFLICT DO NOTHING`

type AddLeagueCommissionerParams struct {
	LeagueID int64
	UserID   int64
}

func (q *Queries) AddLeagueCommissioner(ctx context.Context, arg AddLeagueCommissionerParams) error {
	_, err := q.db.ExecContext(ctx, addLeagueCommissioner, arg.LeagueID, arg.UserID)
	return err
}

const isLeagueCommissioner = `-- name: IsLeagueCommissioner :one
SELECT EXISTS (
    SELECT 1 FROM league_commissioners WHERE league_id = ? AND user_id = ?
)`

type IsLeagueCommissionerParams struct {
	LeagueID int64
	UserID   int64
}

func (q *Queries) IsLeagueCommissioner(ctx context.Context, arg IsLeagueCommissionerParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, isLeagueCommissioner, arg.LeagueID, arg.UserID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

func (q *Queries) queryIDs(ctx context.Context, query string, args ...interface{}) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
