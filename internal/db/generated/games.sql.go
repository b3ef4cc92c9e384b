package dbgen

import (
	"context"
	"database/sql"
	"time"
)

const gameColumns = `id, league_id, round, home_team_id, away_team_id, game_date, home_score, away_score, created_at`

func scanGame(row rowScanner) (Game, error) {
	var i Game
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.Round,
		&i.HomeTeamID,
		&i.AwayTeamID,
		&i.GameDate,
		&i.HomeScore,
		&i.AwayScore,
		&i.CreatedAt,
	)
	return i, err
}

const createGame = `-- name: CreateGame :one
INSERT INTO games (league_id, round, home_team_id, away_team_id, game_date, home_score, away_score)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + gameColumns

type CreateGameParams struct {
	LeagueID   int64
	Round      int64
	HomeTeamID int64
	AwayTeamID int64
	GameDate   time.Time
	HomeScore  sql.NullInt64
	AwayScore  sql.NullInt64
}

func (q *Queries) CreateGame(ctx context.Context, arg CreateGameParams) (Game, error) {
	row := q.db.QueryRowContext(ctx, createGame,
		arg.LeagueID,
		arg.Round,
		arg.HomeTeamID,
		arg.AwayTeamID,
		arg.GameDate,
		arg.HomeScore,
		arg.AwayScore,
	)
	return scanGame(row)
}

const getGame = `-- name: GetGame :one
SELECT ` + gameColumns + ` FROM games WHERE id = ?`

func (q *Queries) GetGame(ctx context.Context, id int64) (Game, error) {
	row := q.db.QueryRowContext(ctx, getGame, id)
	return scanGame(row)
}

const listLeagueGames = `-- name: ListLeagueGames :many
SELECT ` + gameColumns + ` FROM games
WHERE league_id = ?
ORDER BY game_date, round, id`

func (q *Queries) ListLeagueGames(ctx context.Context, leagueID int64) ([]Game, error) {
	rows, err := q.db.QueryContext(ctx, listLeagueGames, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Game
	for rows.Next() {
		i, err := scanGame(rows)
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

const updateGameScore = `-- name: UpdateGameScore :one
UPDATE games SET home_score = ?, away_score = ?
WHERE id = ? AND league_id = ?
RETURNING ` + gameColumns

type UpdateGameScoreParams struct {
	HomeScore sql.NullInt64
	AwayScore sql.NullInt64
	ID        int64
	LeagueID  int64
}

func (q *Queries) UpdateGameScore(ctx context.Context, arg UpdateGameScoreParams) (Game, error) {
	row := q.db.QueryRowContext(ctx, updateGameScore,
		arg.HomeScore,
		arg.AwayScore,
		arg.ID,
		arg.LeagueID,
	)
	return scanGame(row)
}

const deleteUnplayedLeagueGames = `-- name: DeleteUnplayedLeagueGames :execrows
DELETE FROM games
WHERE league_id = ? AND home_score IS NULL AND away_score IS NULL`

func (q *Queries) DeleteUnplayedLeagueGames(ctx context.Context, leagueID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteUnplayedLeagueGames, leagueID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
