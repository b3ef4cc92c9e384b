package dbgen

import (
	"context"
	"database/sql"
)

const teamColumns = `id, league_id, name, league_rank, wins, losses, points_for, points_against, created_at`

func scanTeam(row rowScanner) (Team, error) {
	var i Team
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.Name,
		&i.LeagueRank,
		&i.Wins,
		&i.Losses,
		&i.PointsFor,
		&i.PointsAgainst,
		&i.CreatedAt,
	)
	return i, err
}

const createTeam = `-- name: CreateTeam :one
INSERT INTO teams (league_id, name) VALUES (?, ?)
RETURNING ` + teamColumns

type CreateTeamParams struct {
	LeagueID int64
	Name     string
}

func (q *Queries) CreateTeam(ctx context.Context, arg CreateTeamParams) (Team, error) {
	row := q.db.QueryRowContext(ctx, createTeam, arg.LeagueID, arg.Name)
	return scanTeam(row)
}

const getTeam = `-- name: GetTeam :one
SELECT ` + teamColumns + ` FROM teams WHERE id = ?`

func (q *Queries) GetTeam(ctx context.Context, id int64) (Team, error) {
	row := q.db.QueryRowContext(ctx, getTeam, id)
	return scanTeam(row)
}

const listLeagueTeams = `-- name: ListLeagueTeams :many
SELECT ` + teamColumns + ` FROM teams
WHERE league_id = ?
ORDER BY league_rank IS NULL, league_rank ASC, name ASC`

func (q *Queries) ListLeagueTeams(ctx context.Context, leagueID int64) ([]Team, error) {
	rows, err := q.db.QueryContext(ctx, listLeagueTeams, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Team
	for rows.Next() {
		i, err := scanTeam(rows)
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

const updateTeamStanding = `-- name: UpdateTeamStanding :exec
UPDATE teams
SET league_rank = ?, wins = ?, losses = ?, points_for = ?, points_against = ?
WHERE id = ?`

type UpdateTeamStandingParams struct {
	LeagueRank    sql.NullInt64
	Wins          int64
	Losses        int64
	PointsFor     int64
	PointsAgainst int64
	ID            int64
}

func (q *Queries) UpdateTeamStanding(ctx context.Context, arg UpdateTeamStandingParams) error {
	_, err := q.db.ExecContext(ctx, updateTeamStanding,
		arg.LeagueRank,
		arg.Wins,
		arg.Losses,
		arg.PointsFor,
		arg.PointsAgainst,
		arg.ID,
	)
	return err
}

const getLeagueStandingsData = `-- name: GetLeagueStandingsData :many
SELECT t.id AS team_id,
       t.name AS team_name,
       g.id AS game_id,
       g.home_team_id,
       g.away_team_id,
       g.home_score,
       g.away_score
FROM teams t
LEFT JOIN games g
    ON g.league_id = t.league_id
   AND (g.home_team_id = t.id OR g.away_team_id = t.id)
   AND g.home_score IS NOT NULL
   AND g.away_score IS NOT NULL
WHERE t.league_id = ?
ORDER BY t.id, g.id`

type GetLeagueStandingsDataRow struct {
	TeamID     int64
	TeamName   string
	GameID     sql.NullInt64
	HomeTeamID sql.NullInt64
	AwayTeamID sql.NullInt64
	HomeScore  sql.NullInt64
	AwayScore  sql.NullInt64
}

func (q *Queries) GetLeagueStandingsData(ctx context.Context, leagueID int64) ([]GetLeagueStandingsDataRow, error) {
	rows, err := q.db.QueryContext(ctx, getLeagueStandingsData, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetLeagueStandingsDataRow
	for rows.Next() {
		var i GetLeagueStandingsDataRow
		if err := rows.Scan(
			&i.TeamID,
			&i.TeamName,
			&i.GameID,
			&i.HomeTeamID,
			&i.AwayTeamID,
			&i.HomeScore,
			&i.AwayScore,
		); err != nil {
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
