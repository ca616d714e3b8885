// internal/app/reminder_service.go
package app

import (
	"context"
	"fmt"

	"random_coffee_bot/internal/domain/reminder"
	domainTelegram "random_coffee_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// ReminderDispatcher drains the deferred reminder queue.
type ReminderDispatcher interface {
	DispatchDueReminders(ctx context.Context) error
}

type ReminderServiceImpl struct {
	reminderRepo   reminder.Repository
	telegramClient domainTelegram.Client
	clock          Clock
	logger         *logrus.Entry
}

func NewReminderService(
	rr reminder.Repository,
	tc domainTelegram.Client,
	clock Clock,
	logger *logrus.Entry,
) *ReminderServiceImpl {
	return &ReminderServiceImpl{
		reminderRepo:   rr,
		telegramClient: tc,
		clock:          clock,
		logger:         logger.WithField("service", "reminder"),
	}
}

// DispatchDueReminders sends every reminder whose fire time has passed.
// Each reminder is marked sent before the delivery attempt: reminders are
// one-shot and never retried, so a failed send (e.g. the recipient
// unsubscribed after pairing) is logged and dropped.
func (s *ReminderServiceImpl) DispatchDueReminders(ctx context.Context) error {
	now := s.clock.Now()
	due, err := s.reminderRepo.ListDue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to list due reminders: %w", err)
	}
	if len(due) == 0 {
		return nil
	}
	s.logger.WithField("due", len(due)).Info("Dispatching due reminders")

	for _, rem := range due {
		log := s.logger.WithFields(logrus.Fields{
			"reminder_id":    rem.ID,
			"participant_id": rem.ParticipantID,
		})
		if err := s.reminderRepo.MarkSent(ctx, rem.ID, now); err != nil {
			log.WithError(err).Error("Failed to mark reminder sent; skipping to avoid duplicate delivery")
			continue
		}
		if err := s.telegramClient.SendMessage(rem.ParticipantID, rem.Payload, nil); err != nil {
			log.WithError(err).Error("Failed to deliver reminder")
			continue
		}
		log.Debug("Reminder delivered")
	}
	return nil
}
