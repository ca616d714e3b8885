package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"random_coffee_bot/internal/domain/reminder"
)

var ErrReminderNotFound = fmt.Errorf("reminder not found")

type PostgresReminderRepository struct {
	db *sql.DB
}

func NewPostgresReminderRepository(db *sql.DB) *PostgresReminderRepository {
	return &PostgresReminderRepository{db: db}
}

func (r *PostgresReminderRepository) Create(ctx context.Context, rem *reminder.Reminder) error {
	query := `INSERT INTO reminders (participant_id, fire_at, payload)
               VALUES ($1, $2, $3)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, rem.ParticipantID, rem.FireAt, rem.Payload).Scan(&rem.ID, &rem.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating reminder: %w", err)
	}
	return nil
}

func (r *PostgresReminderRepository) ListDue(ctx context.Context, now time.Time) ([]*reminder.Reminder, error) {
	query := `SELECT id, participant_id, fire_at, payload, sent_at, created_at
               FROM reminders
               WHERE sent_at IS NULL AND fire_at <= $1
               ORDER BY fire_at, id`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("error listing due reminders: %w", err)
	}
	defer rows.Close()

	reminders := make([]*reminder.Reminder, 0)
	for rows.Next() {
		rem := &reminder.Reminder{}
		if err := rows.Scan(&rem.ID, &rem.ParticipantID, &rem.FireAt, &rem.Payload, &rem.SentAt, &rem.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning due reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due reminders: %w", err)
	}
	return reminders, nil
}

func (r *PostgresReminderRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE reminders SET sent_at = $1 WHERE id = $2 RETURNING id`
	var got int64
	err := r.db.QueryRowContext(ctx, query, at, id).Scan(&got)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrReminderNotFound
		}
		return fmt.Errorf("error marking reminder %d sent: %w", id, err)
	}
	return nil
}
