package app

import (
	"context"
	"fmt"
	"time"

	"random_coffee_bot/internal/domain/pairing"
	"random_coffee_bot/internal/domain/participant"
	domainTelegram "random_coffee_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")

// RosterEntry is one line of the admin roster view: the participant plus
// their eligibility as of today.
type RosterEntry struct {
	Participant *participant.Participant
	Eligible    bool
	DaysSince   int // Days since last participation; -1 when never paired
}

// BroadcastResult reports how a batch send over the participant list went.
type BroadcastResult struct {
	Sent   int
	Failed int
}

type AdminService struct {
	participantRepo participant.Repository
	rounds          RoundRunner
	telegramClient  domainTelegram.Client
	clock           Clock
	adminIDs        map[int64]bool
	logger          *logrus.Entry
}

func NewAdminService(
	pr participant.Repository,
	rounds RoundRunner,
	tc domainTelegram.Client,
	clock Clock,
	adminIDs map[int64]bool,
	logger *logrus.Entry,
) *AdminService {
	return &AdminService{
		participantRepo: pr,
		rounds:          rounds,
		telegramClient:  tc,
		clock:           clock,
		adminIDs:        adminIDs,
		logger:          logger.WithField("service", "admin"),
	}
}

// IsAdmin reports whether the given Telegram ID is on the admin allowlist.
func (s *AdminService) IsAdmin(id int64) bool {
	return s.adminIDs[id]
}

func (s *AdminService) authorize(performingID int64) error {
	if !s.adminIDs[performingID] {
		return ErrAdminNotAuthorized
	}
	return nil
}

// RunRound triggers a pairing round over eligible participants outside the
// recurring cadence.
func (s *AdminService) RunRound(ctx context.Context, performingID int64) (pairing.DeliveryReport, error) {
	if err := s.authorize(performingID); err != nil {
		return pairing.DeliveryReport{}, err
	}
	s.logger.WithField("admin_id", performingID).Info("Admin triggered pairing round")
	return s.rounds.RunScheduledRound(ctx)
}

// ForceRound triggers a bypass round over all active participants, ignoring
// recurrence windows.
func (s *AdminService) ForceRound(ctx context.Context, performingID int64) (pairing.DeliveryReport, error) {
	if err := s.authorize(performingID); err != nil {
		return pairing.DeliveryReport{}, err
	}
	s.logger.WithField("admin_id", performingID).Info("Admin triggered forced pairing round")
	return s.rounds.RunForcedRound(ctx)
}

// Broadcast sends the text to every registered participant, active or not.
// Per-recipient failures are counted, logged, and never abort the batch.
func (s *AdminService) Broadcast(ctx context.Context, performingID int64, text string) (BroadcastResult, error) {
	if err := s.authorize(performingID); err != nil {
		return BroadcastResult{}, err
	}

	all, err := s.participantRepo.ListAll(ctx)
	if err != nil {
		return BroadcastResult{}, fmt.Errorf("failed to list participants for broadcast: %w", err)
	}

	res := BroadcastResult{}
	for _, p := range all {
		if err := s.telegramClient.SendMessage(p.ID, text, nil); err != nil {
			s.logger.WithError(err).WithField("participant_id", p.ID).Error("Failed to deliver broadcast message")
			res.Failed++
			continue
		}
		res.Sent++
	}
	s.logger.WithFields(logrus.Fields{"sent": res.Sent, "failed": res.Failed}).Info("Broadcast completed")
	return res, nil
}

// TestBroadcast delivers the text to the admin allowlist only, so message
// formatting can be checked before a real broadcast.
func (s *AdminService) TestBroadcast(ctx context.Context, performingID int64, text string) (BroadcastResult, error) {
	if err := s.authorize(performingID); err != nil {
		return BroadcastResult{}, err
	}

	res := BroadcastResult{}
	for adminID := range s.adminIDs {
		if err := s.telegramClient.SendMessage(adminID, text, nil); err != nil {
			s.logger.WithError(err).WithField("admin_id", adminID).Error("Failed to deliver test broadcast message")
			res.Failed++
			continue
		}
		res.Sent++
	}
	return res, nil
}

// Roster returns every registered participant, including inactive ones, with
// their eligibility status as of today.
func (s *AdminService) Roster(ctx context.Context, performingID int64) ([]RosterEntry, error) {
	if err := s.authorize(performingID); err != nil {
		return nil, err
	}

	all, err := s.participantRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for roster: %w", err)
	}

	today := s.clock.Today()
	entries := make([]RosterEntry, 0, len(all))
	for _, p := range all {
		entry := RosterEntry{Participant: p, Eligible: p.EligibleAt(today), DaysSince: -1}
		if p.LastParticipation.Valid {
			entry.DaysSince = int(today.Sub(p.LastParticipation.Time) / (24 * time.Hour))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
