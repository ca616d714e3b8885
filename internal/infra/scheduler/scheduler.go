package scheduler

import (
	"context"
	"time"

	"random_coffee_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PairingScheduler owns the recurring timers: the weekly pairing round, the
// mid-cycle nudge, and the due-reminder dispatch loop. Jobs are chained with
// SkipIfStillRunning so at most one invocation per job is in flight at a
// time; a round is never re-entered while a previous one is still delivering.
type PairingScheduler struct {
	cronEngine            *cron.Cron
	rounds                app.RoundRunner
	reminders             app.ReminderDispatcher
	logger                *logrus.Entry
	cronSpecPairing       string
	cronSpecMidCycle      string
	cronSpecReminderCheck string
}

func NewPairingScheduler(
	rounds app.RoundRunner,
	reminders app.ReminderDispatcher,
	logger *logrus.Entry,
	cronSpecPairing string, // e.g., "0 10 * * 1" (10:00 every Monday)
	cronSpecMidCycle string, // e.g., "0 10 * * 4" (10:00 every Thursday)
	cronSpecReminderCheck string, // e.g., "*/5 * * * *" (every 5 minutes)
) *PairingScheduler {
	schedLogger := logger.WithField("component", "scheduler")
	return &PairingScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.Local),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(schedLogger))),
		),
		rounds:                rounds,
		reminders:             reminders,
		logger:                schedLogger,
		cronSpecPairing:       cronSpecPairing,
		cronSpecMidCycle:      cronSpecMidCycle,
		cronSpecReminderCheck: cronSpecReminderCheck,
	}
}

func (s *PairingScheduler) Start() error {
	s.logger.Info("Starting pairing scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecPairing, func() {
		s.logger.Info("Cron job triggered for weekly pairing round")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		report, err := s.rounds.RunScheduledRound(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Weekly pairing round failed")
			return
		}
		s.logger.WithFields(logrus.Fields{
			"pairs":    report.PairsCount,
			"unpaired": report.UnpairedCount,
			"failed":   len(report.FailedIDs),
		}).Info("Weekly pairing round finished")
	})
	if err != nil {
		return err
	}

	_, err = s.cronEngine.AddFunc(s.cronSpecMidCycle, func() {
		s.logger.Info("Cron job triggered for mid-cycle nudge")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.rounds.NudgeCurrentPairs(ctx); err != nil {
			s.logger.WithError(err).Error("Mid-cycle nudge failed")
		}
	})
	if err != nil {
		return err
	}

	_, err = s.cronEngine.AddFunc(s.cronSpecReminderCheck, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := s.reminders.DispatchDueReminders(ctx); err != nil {
			s.logger.WithError(err).Error("Reminder dispatch failed")
		}
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Info("Pairing scheduler started with jobs")
	return nil
}

func (s *PairingScheduler) Stop() {
	s.logger.Info("Stopping pairing scheduler...")
	ctx := s.cronEngine.Stop() // No new invocations; waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Pairing scheduler gracefully stopped")
}
