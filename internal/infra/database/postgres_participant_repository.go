package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"random_coffee_bot/internal/domain/participant"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Custom errors
var ErrParticipantNotFound = fmt.Errorf("participant not found")

const participantColumns = `id, username, full_name, role, department, frequency, last_participation, is_active, created_at, updated_at`

type PostgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) *PostgresParticipantRepository {
	return &PostgresParticipantRepository{db: db}
}

// Upsert inserts a new active participant or refreshes the profile fields of
// an existing one, reactivating it if it had left. Frequency and
// last_participation of an existing record are untouched: a re-register must
// not reset the eligibility window.
func (r *PostgresParticipantRepository) Upsert(ctx context.Context, p *participant.Participant) (bool, error) {
	query := `INSERT INTO participants (id, username, full_name, role, department, frequency, is_active)
               VALUES ($1, $2, $3, $4, $5, $6, TRUE)
               ON CONFLICT (id) DO UPDATE
               SET username = EXCLUDED.username,
                   full_name = EXCLUDED.full_name,
                   role = EXCLUDED.role,
                   department = EXCLUDED.department,
                   is_active = TRUE,
                   updated_at = NOW()
               RETURNING (xmax = 0), frequency, last_participation, is_active, created_at, updated_at`

	if p.Frequency < 1 {
		p.Frequency = 1
	}
	var created bool
	err := r.db.QueryRowContext(ctx, query, p.ID, p.Username, p.FullName, p.Role, p.Department, p.Frequency).
		Scan(&created, &p.Frequency, &p.LastParticipation, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("error upserting participant: %w", err)
	}
	return created, nil
}

func (r *PostgresParticipantRepository) GetByID(ctx context.Context, id int64) (*participant.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`
	p := &participant.Participant{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Username, &p.FullName, &p.Role, &p.Department,
		&p.Frequency, &p.LastParticipation, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("error getting participant by ID: %w", err)
	}
	return p, nil
}

func (r *PostgresParticipantRepository) ListActive(ctx context.Context) ([]*participant.Participant, error) {
	query := `SELECT ` + participantColumns + `
               FROM participants WHERE is_active = TRUE ORDER BY full_name, id`
	return r.queryParticipants(ctx, query)
}

// ListEligible applies the recurrence predicate in SQL. A frequency below 1
// is a misconfigured record and is excluded rather than failing the query.
func (r *PostgresParticipantRepository) ListEligible(ctx context.Context, asOf time.Time) ([]*participant.Participant, error) {
	query := `SELECT ` + participantColumns + `
               FROM participants
               WHERE is_active = TRUE
                 AND frequency >= 1
                 AND (last_participation IS NULL
                      OR last_participation + (frequency * 7) * INTERVAL '1 day' <= $1)
               ORDER BY full_name, id`
	return r.queryParticipants(ctx, query, asOf)
}

func (r *PostgresParticipantRepository) ListAll(ctx context.Context) ([]*participant.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants ORDER BY id`
	return r.queryParticipants(ctx, query)
}

func (r *PostgresParticipantRepository) ListRecentlyPaired(ctx context.Context, since time.Time) ([]*participant.Participant, error) {
	query := `SELECT ` + participantColumns + `
               FROM participants
               WHERE is_active = TRUE AND last_participation >= $1
               ORDER BY full_name, id`
	return r.queryParticipants(ctx, query, since)
}

// RecordParticipation stamps every given ID in one transaction so a crash
// mid-round cannot leave one member of a pair stamped and the other not.
func (r *PostgresParticipantRepository) RecordParticipation(ctx context.Context, ids []int64, asOf time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for participation stamp: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, `UPDATE participants SET last_participation = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for participation stamp: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, asOf, id); err != nil {
			return fmt.Errorf("error stamping participation for participant %d: %w", id, err)
		}
	}

	return txn.Commit()
}

func (r *PostgresParticipantRepository) SetFrequency(ctx context.Context, id int64, weeks int) error {
	query := `UPDATE participants SET frequency = $1, updated_at = NOW() WHERE id = $2 RETURNING id`
	var got int64
	err := r.db.QueryRowContext(ctx, query, weeks, id).Scan(&got)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("error setting frequency for participant %d: %w", id, err)
	}
	return nil
}

func (r *PostgresParticipantRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE participants SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("error deactivating participant %d: %w", id, err)
	}
	return nil
}

func (r *PostgresParticipantRepository) queryParticipants(ctx context.Context, query string, args ...any) ([]*participant.Participant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*participant.Participant, 0)
	for rows.Next() {
		p := &participant.Participant{}
		if err := rows.Scan(
			&p.ID, &p.Username, &p.FullName, &p.Role, &p.Department,
			&p.Frequency, &p.LastParticipation, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}
	return participants, nil
}
