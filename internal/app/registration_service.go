// internal/app/registration_service.go
package app

import (
	"context"
	"database/sql"
	"fmt"

	"random_coffee_bot/internal/domain/participant"

	"github.com/sirupsen/logrus"
)

var ErrInvalidFrequency = fmt.Errorf("frequency must be at least 1 week")

// RegistrationService handles participants joining, tuning their cadence,
// and leaving the pool.
type RegistrationService struct {
	participantRepo participant.Repository
	logger          *logrus.Entry
}

func NewRegistrationService(pr participant.Repository, logger *logrus.Entry) *RegistrationService {
	return &RegistrationService{
		participantRepo: pr,
		logger:          logger.WithField("service", "registration"),
	}
}

// Register adds a new active participant or refreshes the profile of an
// existing one, reactivating a participant who had left. An existing
// participant's frequency and last participation are preserved. Returns
// true when the participant is new.
func (s *RegistrationService) Register(ctx context.Context, id int64, username, fullName, role, department string) (bool, error) {
	p := &participant.Participant{
		ID:         id,
		FullName:   fullName,
		Role:       role,
		Department: department,
		Frequency:  1,
		IsActive:   true,
	}
	if username != "" {
		p.Username = sql.NullString{String: username, Valid: true}
	}

	created, err := s.participantRepo.Upsert(ctx, p)
	if err != nil {
		return false, fmt.Errorf("failed to upsert participant %d: %w", id, err)
	}

	s.logger.WithFields(logrus.Fields{
		"participant_id": id,
		"created":        created,
	}).Info("Participant registered")
	return created, nil
}

// SetFrequency updates how many weeks must pass between a participant's
// pairings.
func (s *RegistrationService) SetFrequency(ctx context.Context, id int64, weeks int) error {
	if weeks < 1 {
		return ErrInvalidFrequency
	}
	if err := s.participantRepo.SetFrequency(ctx, id, weeks); err != nil {
		return fmt.Errorf("failed to set frequency for participant %d: %w", id, err)
	}
	s.logger.WithFields(logrus.Fields{"participant_id": id, "weeks": weeks}).Info("Participation frequency updated")
	return nil
}

// Leave soft-unsubscribes the participant: the profile is retained but they
// are excluded from all future rounds. Idempotent.
func (s *RegistrationService) Leave(ctx context.Context, id int64) error {
	if err := s.participantRepo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate participant %d: %w", id, err)
	}
	s.logger.WithField("participant_id", id).Info("Participant left the pool")
	return nil
}
