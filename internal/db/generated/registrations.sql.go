package dbgen

import (
	"context"
	"database/sql"
)

const registrationColumns = `id, league_id, user_id, role, status, g_rank, self_rank, pair_user_id, phone, amount_due, notes, created_at`

func scanRegistration(row rowScanner) (Registration, error) {
	var i Registration
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.UserID,
		&i.Role,
		&i.Status,
		&i.GRank,
		&i.SelfRank,
		&i.PairUserID,
		&i.Phone,
		&i.AmountDue,
		&i.Notes,
		&i.CreatedAt,
	)
	return i, err
}

const createRegistration = `-- name: CreateRegistration :one
INSERT INTO registrations (league_id, user_id, role, status, g_rank, self_rank, pair_user_id, phone, amount_due, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + registrationColumns

type CreateRegistrationParams struct {
	LeagueID   int64
	UserID     int64
	Role       string
	Status     string
	GRank      sql.NullInt64
	SelfRank   sql.NullInt64
	PairUserID sql.NullInt64
	Phone      string
	AmountDue  int64
	Notes      string
}

func (q *Queries) CreateRegistration(ctx context.Context, arg CreateRegistrationParams) (Registration, error) {
	row := q.db.QueryRowContext(ctx, createRegistration,
		arg.LeagueID,
		arg.UserID,
		arg.Role,
		arg.Status,
		arg.GRank,
		arg.SelfRank,
		arg.PairUserID,
		arg.Phone,
		arg.AmountDue,
		arg.Notes,
	)
	return scanRegistration(row)
}

const getRegistrationForUser = `-- name: GetRegistrationForUser :one
SELECT ` + registrationColumns + ` FROM registrations
WHERE league_id = ? AND user_id = ?
ORDER BY id
LIMIT 1`

type GetRegistrationForUserParams struct {
	LeagueID int64
	UserID   int64
}

func (q *Queries) GetRegistrationForUser(ctx context.Context, arg GetRegistrationForUserParams) (Registration, error) {
	row := q.db.QueryRowContext(ctx, getRegistrationForUser, arg.LeagueID, arg.UserID)
	return scanRegistration(row)
}

const listLeagueRegistrations = `-- name: ListLeagueRegistrations :many
SELECT ` + registrationColumns + ` FROM registrations
WHERE league_id = ?
ORDER BY created_at, id`

func (q *Queries) ListLeagueRegistrations(ctx context.Context, leagueID int64) ([]Registration, error) {
	rows, err := q.db.QueryContext(ctx, listLeagueRegistrations, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Registration
	for rows.Next() {
		i, err := scanRegistration(rows)
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

const countRegistrationsByRole = `-- name: CountRegistrationsByRole :one
SELECT COUNT(*) FROM registrations
WHERE league_id = ? AND role = ? AND status IN ('pending', 'active')`

type CountRegistrationsByRoleParams struct {
	LeagueID int64
	Role     string
}

func (q *Queries) CountRegistrationsByRole(ctx context.Context, arg CountRegistrationsByRoleParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countRegistrationsByRole, arg.LeagueID, arg.Role)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listLeagueRegistrants = `-- name: ListLeagueRegistrants :many
SELECT r.id AS registration_id, r.status, u.id AS user_id, u.email, u.first_name
FROM registrations r
JOIN users u ON u.id = r.user_id
WHERE r.league_id = ? AND r.status IN ('pending', 'active')
ORDER BY r.id`

type ListLeagueRegistrantsRow struct {
	RegistrationID int64
	Status         string
	UserID         int64
	Email          string
	FirstName      string
}

func (q *Queries) ListLeagueRegistrants(ctx context.Context, leagueID int64) ([]ListLeagueRegistrantsRow, error) {
	rows, err := q.db.QueryContext(ctx, listLeagueRegistrants, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListLeagueRegistrantsRow
	for rows.Next() {
		var i ListLeagueRegistrantsRow
		if err := rows.Scan(
			&i.RegistrationID,
			&i.Status,
			&i.UserID,
			&i.Email,
			&i.FirstName,
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
