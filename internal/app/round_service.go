// internal/app/round_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"random_coffee_bot/internal/domain/pairing"
	"random_coffee_bot/internal/domain/participant"
	"random_coffee_bot/internal/domain/reminder"
	domainTelegram "random_coffee_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
)

// RoundRunner defines the operations for running a pairing round.
type RoundRunner interface {
	// RunScheduledRound pairs participants whose recurrence window has
	// elapsed, notifies them, and stamps their participation.
	RunScheduledRound(ctx context.Context) (pairing.DeliveryReport, error)
	// RunForcedRound pairs all active participants, ignoring the recurrence
	// predicate. Inactive participants are still excluded.
	RunForcedRound(ctx context.Context) (pairing.DeliveryReport, error)
	// NudgeCurrentPairs sends the mid-cycle reminder to everyone paired in
	// the current weekly cycle. Returns the number of successful sends.
	NudgeCurrentPairs(ctx context.Context) (int, error)
}

// roundPhase tracks where a round currently is in its lifecycle. Purely
// observational: transitions are logged, never branched on.
type roundPhase string

const (
	phaseIdle         roundPhase = "idle"
	phaseSnapshotting roundPhase = "snapshotting"
	phasePairing      roundPhase = "pairing"
	phaseDelivering   roundPhase = "delivering"
	phaseRecording    roundPhase = "recording"
)

// RoundServiceImpl implements RoundRunner.
type RoundServiceImpl struct {
	participantRepo participant.Repository
	reminderRepo    reminder.Repository
	engine          *pairing.Engine
	telegramClient  domainTelegram.Client
	clock           Clock
	followupDelay   time.Duration
	logger          *logrus.Entry
}

func NewRoundService(
	pr participant.Repository,
	rr reminder.Repository,
	engine *pairing.Engine,
	tc domainTelegram.Client,
	clock Clock,
	followupDelay time.Duration,
	logger *logrus.Entry,
) *RoundServiceImpl {
	return &RoundServiceImpl{
		participantRepo: pr,
		reminderRepo:    rr,
		engine:          engine,
		telegramClient:  tc,
		clock:           clock,
		followupDelay:   followupDelay,
		logger:          logger.WithField("service", "round"),
	}
}

func (s *RoundServiceImpl) RunScheduledRound(ctx context.Context) (pairing.DeliveryReport, error) {
	return s.runRound(ctx, "scheduled", func(today time.Time) ([]*participant.Participant, error) {
		return s.participantRepo.ListEligible(ctx, today)
	})
}

func (s *RoundServiceImpl) RunForcedRound(ctx context.Context) (pairing.DeliveryReport, error) {
	return s.runRound(ctx, "forced", func(time.Time) ([]*participant.Participant, error) {
		return s.participantRepo.ListActive(ctx)
	})
}

// runRound drives one round through its full lifecycle: snapshot the pool,
// match, deliver, record, schedule follow-ups. A store failure during the
// snapshot aborts before anything is sent; per-recipient send failures are
// aggregated and never abort the batch.
func (s *RoundServiceImpl) runRound(ctx context.Context, kind string, snapshot func(time.Time) ([]*participant.Participant, error)) (pairing.DeliveryReport, error) {
	log := s.logger.WithField("round", kind)
	today := s.clock.Today()

	s.transition(log, phaseIdle, phaseSnapshotting)
	pool, err := snapshot(today)
	if err != nil {
		s.transition(log, phaseSnapshotting, phaseIdle)
		log.WithError(err).Error("Failed to snapshot participant pool; round aborted")
		return pairing.DeliveryReport{}, fmt.Errorf("failed to snapshot participant pool: %w", err)
	}

	if len(pool) < 2 {
		s.transition(log, phaseSnapshotting, phaseIdle)
		log.WithField("pool_size", len(pool)).Info("Not enough participants for a round")
		return pairing.DeliveryReport{}, nil
	}

	s.transition(log, phaseSnapshotting, phasePairing)
	matched := s.engine.Match(pool)
	log.WithFields(logrus.Fields{
		"pool_size": len(pool),
		"pairs":     len(matched.Pairs),
	}).Info("Pool matched")

	s.transition(log, phasePairing, phaseDelivering)
	report, stampedIDs := s.deliver(ctx, log, matched)

	s.transition(log, phaseDelivering, phaseRecording)
	if err := s.participantRepo.RecordParticipation(ctx, stampedIDs, today); err != nil {
		s.transition(log, phaseRecording, phaseIdle)
		log.WithError(err).Error("Failed to record participation")
		return report, fmt.Errorf("failed to record participation: %w", err)
	}

	s.transition(log, phaseRecording, phaseIdle)
	log.WithFields(logrus.Fields{
		"pairs_delivered": report.PairsCount,
		"stamped":         len(stampedIDs),
		"failed":          len(report.FailedIDs),
	}).Info("Round completed")
	return report, nil
}

// deliver notifies every pair and the leftover. Both legs of a pair are
// attempted independently; the pair is stamped and follow-ups are scheduled
// only when both legs succeed. A participant whose partner could not be
// notified is withheld from the stamp so the next round picks both up again.
func (s *RoundServiceImpl) deliver(ctx context.Context, log *logrus.Entry, matched pairing.Result) (pairing.DeliveryReport, []int64) {
	report := pairing.DeliveryReport{}
	stampedIDs := make([]int64, 0, len(matched.Pairs)*2)

	for _, pair := range matched.Pairs {
		errFirst := s.sendPartnerNotice(pair.First, pair.Second)
		errSecond := s.sendPartnerNotice(pair.Second, pair.First)

		if errFirst != nil {
			log.WithError(errFirst).WithField("participant_id", pair.First.ID).Error("Failed to deliver pairing notice")
		}
		if errSecond != nil {
			log.WithError(errSecond).WithField("participant_id", pair.Second.ID).Error("Failed to deliver pairing notice")
		}

		if errFirst != nil || errSecond != nil {
			report.FailedIDs = append(report.FailedIDs, pair.First.ID, pair.Second.ID)
			continue
		}

		report.PairsCount++
		report.PairedCount += 2
		stampedIDs = append(stampedIDs, pair.First.ID, pair.Second.ID)
		s.scheduleFollowups(ctx, log, pair)
	}

	if matched.Leftover != nil {
		report.UnpairedCount = 1
		leftoverMsg := "☕ К сожалению, в этом раунде не нашлось пары. В следующий раз ты точно будешь участвовать!"
		if err := s.telegramClient.SendMessage(matched.Leftover.ID, leftoverMsg, nil); err != nil {
			log.WithError(err).WithField("participant_id", matched.Leftover.ID).Error("Failed to deliver leftover notice")
		}
	}

	return report, stampedIDs
}

func (s *RoundServiceImpl) sendPartnerNotice(to, partner *participant.Participant) error {
	msg := fmt.Sprintf("☕ Твой партнёр по случайному кофе: %s %s", partner.FullName, partner.DisplayHandle())
	return s.telegramClient.SendMessage(to.ID, msg, nil)
}

// scheduleFollowups queues one deferred reminder per pair member, each
// referencing the other member. Reminder rows are best effort: a failed
// insert loses the follow-up, not the pairing, so it is logged and the
// round carries on.
func (s *RoundServiceImpl) scheduleFollowups(ctx context.Context, log *logrus.Entry, pair pairing.Pair) {
	fireAt := s.clock.Now().Add(s.followupDelay)
	for _, leg := range []struct{ to, partner *participant.Participant }{
		{pair.First, pair.Second},
		{pair.Second, pair.First},
	} {
		rem := &reminder.Reminder{
			ParticipantID: leg.to.ID,
			FireAt:        fireAt,
			Payload: fmt.Sprintf("👋 Напоминание: не забудь встретиться за кофе с %s %s!",
				leg.partner.FullName, leg.partner.DisplayHandle()),
		}
		if err := s.reminderRepo.Create(ctx, rem); err != nil {
			log.WithError(err).WithField("participant_id", leg.to.ID).Error("Failed to schedule follow-up reminder")
		}
	}
}

func (s *RoundServiceImpl) NudgeCurrentPairs(ctx context.Context) (int, error) {
	since := s.clock.Today().Add(-participant.BaseCycle)
	paired, err := s.participantRepo.ListRecentlyPaired(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("failed to list recently paired participants: %w", err)
	}

	msg := "☕ Середина недели — самое время договориться о встрече с твоим партнёром по кофе!"
	sent := 0
	for _, p := range paired {
		if err := s.telegramClient.SendMessage(p.ID, msg, nil); err != nil {
			s.logger.WithError(err).WithField("participant_id", p.ID).Error("Failed to deliver mid-cycle nudge")
			continue
		}
		sent++
	}
	s.logger.WithFields(logrus.Fields{"audience": len(paired), "sent": sent}).Info("Mid-cycle nudge dispatched")
	return sent, nil
}

func (s *RoundServiceImpl) transition(log *logrus.Entry, from, to roundPhase) {
	log.WithFields(logrus.Fields{"from": from, "to": to}).Debug("Round phase transition")
}
