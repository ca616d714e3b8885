package app

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"random_coffee_bot/internal/domain/participant"
	"random_coffee_bot/internal/domain/reminder"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func (c fixedClock) Today() time.Time {
	n := c.now.UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// memParticipantRepo is an in-memory participant.Repository for service
// tests, mirroring the Postgres implementation's semantics.
type memParticipantRepo struct {
	mu           sync.Mutex
	participants map[int64]*participant.Participant
	failLists    bool
	failRecord   bool
	recordCalls  [][]int64
}

func newMemParticipantRepo() *memParticipantRepo {
	return &memParticipantRepo{participants: make(map[int64]*participant.Participant)}
}

func (r *memParticipantRepo) add(p *participant.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.participants[p.ID] = &cp
}

func (r *memParticipantRepo) get(id int64) *participant.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.participants[id]
}

func (r *memParticipantRepo) Upsert(_ context.Context, p *participant.Participant) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.participants[p.ID]; ok {
		existing.Username = p.Username
		existing.FullName = p.FullName
		existing.Role = p.Role
		existing.Department = p.Department
		existing.IsActive = true
		p.Frequency = existing.Frequency
		p.LastParticipation = existing.LastParticipation
		p.IsActive = true
		return false, nil
	}
	cp := *p
	r.participants[p.ID] = &cp
	return true, nil
}

func (r *memParticipantRepo) GetByID(_ context.Context, id int64) (*participant.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.participants[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("participant not found")
}

func (r *memParticipantRepo) list(filter func(*participant.Participant) bool) ([]*participant.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLists {
		return nil, fmt.Errorf("store unavailable")
	}
	out := make([]*participant.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		if filter(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memParticipantRepo) ListActive(ctx context.Context) ([]*participant.Participant, error) {
	return r.list(func(p *participant.Participant) bool { return p.IsActive })
}

func (r *memParticipantRepo) ListEligible(ctx context.Context, asOf time.Time) ([]*participant.Participant, error) {
	return r.list(func(p *participant.Participant) bool { return p.EligibleAt(asOf) })
}

func (r *memParticipantRepo) ListAll(ctx context.Context) ([]*participant.Participant, error) {
	return r.list(func(*participant.Participant) bool { return true })
}

func (r *memParticipantRepo) ListRecentlyPaired(ctx context.Context, since time.Time) ([]*participant.Participant, error) {
	return r.list(func(p *participant.Participant) bool {
		return p.IsActive && p.LastParticipation.Valid && !p.LastParticipation.Time.Before(since)
	})
}

func (r *memParticipantRepo) RecordParticipation(_ context.Context, ids []int64, asOf time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRecord {
		return fmt.Errorf("store unavailable")
	}
	r.recordCalls = append(r.recordCalls, ids)
	for _, id := range ids {
		if p, ok := r.participants[id]; ok {
			p.LastParticipation = sql.NullTime{Time: asOf, Valid: true}
		}
	}
	return nil
}

func (r *memParticipantRepo) SetFrequency(_ context.Context, id int64, weeks int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return fmt.Errorf("participant not found")
	}
	p.Frequency = weeks
	return nil
}

func (r *memParticipantRepo) Deactivate(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.participants[id]; ok {
		p.IsActive = false
	}
	return nil
}

// memReminderRepo is an in-memory reminder.Repository.
type memReminderRepo struct {
	mu         sync.Mutex
	nextID     int64
	reminders  []*reminder.Reminder
	failCreate bool
}

func newMemReminderRepo() *memReminderRepo {
	return &memReminderRepo{}
}

func (r *memReminderRepo) Create(_ context.Context, rem *reminder.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return fmt.Errorf("store unavailable")
	}
	r.nextID++
	rem.ID = r.nextID
	cp := *rem
	r.reminders = append(r.reminders, &cp)
	return nil
}

func (r *memReminderRepo) ListDue(_ context.Context, now time.Time) ([]*reminder.Reminder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*reminder.Reminder, 0)
	for _, rem := range r.reminders {
		if !rem.SentAt.Valid && !rem.FireAt.After(now) {
			cp := *rem
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memReminderRepo) MarkSent(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rem := range r.reminders {
		if rem.ID == id {
			rem.SentAt = sql.NullTime{Time: at, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("reminder not found")
}

type sentMessage struct {
	To   int64
	Text string
}

// fakeTransport records sends and can be told to fail for specific
// recipients.
type fakeTransport struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[int64]bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{failFor: make(map[int64]bool)}
}

func (f *fakeTransport) SendMessage(recipientChatID int64, text string, _ *telebot.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[recipientChatID] {
		return fmt.Errorf("delivery failed for %d", recipientChatID)
	}
	f.sent = append(f.sent, sentMessage{To: recipientChatID, Text: text})
	return nil
}

func (f *fakeTransport) sentTo(id int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []string{}
	for _, m := range f.sent {
		if m.To == id {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func activeParticipant(id int64, name string) *participant.Participant {
	return &participant.Participant{
		ID:        id,
		FullName:  name,
		Frequency: 1,
		IsActive:  true,
	}
}
