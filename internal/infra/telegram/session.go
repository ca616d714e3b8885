// internal/infra/telegram/session.go
package telegram

import "sync"

// AdminState is the per-admin conversation state. The broadcast flow is a
// two-step exchange (pick action, then supply text), so each admin carries
// an explicit state instead of an ad-hoc "awaiting" flag.
type AdminState int

const (
	AdminIdle AdminState = iota
	AdminAwaitingBroadcastText
	AdminAwaitingTestBroadcastText
)

// AdminSessions is a session table keyed by admin Telegram ID. Handlers run
// on telebot's dispatch goroutines, hence the lock.
type AdminSessions struct {
	mu     sync.Mutex
	states map[int64]AdminState
}

func NewAdminSessions() *AdminSessions {
	return &AdminSessions{states: make(map[int64]AdminState)}
}

func (s *AdminSessions) State(id int64) AdminState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[id]
}

func (s *AdminSessions) Set(id int64, state AdminState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == AdminIdle {
		delete(s.states, id)
		return
	}
	s.states[id] = state
}

// Reset returns the admin to Idle and reports whether a flow was in
// progress.
func (s *AdminSessions) Reset(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, active := s.states[id]
	delete(s.states, id)
	return active
}

// RegistrationStep is the position in the linear join form.
type RegistrationStep int

const (
	RegistrationIdle RegistrationStep = iota
	RegistrationAwaitingRole
	RegistrationAwaitingDepartment
)

type registrationSession struct {
	Step RegistrationStep
	Role string
}

// RegistrationSessions tracks each joining user's progress through the
// role/department form.
type RegistrationSessions struct {
	mu       sync.Mutex
	sessions map[int64]*registrationSession
}

func NewRegistrationSessions() *RegistrationSessions {
	return &RegistrationSessions{sessions: make(map[int64]*registrationSession)}
}

func (s *RegistrationSessions) Begin(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &registrationSession{Step: RegistrationAwaitingRole}
}

func (s *RegistrationSessions) Step(id int64) RegistrationStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess.Step
	}
	return RegistrationIdle
}

// SetRole stores the role answer and advances to the department question.
func (s *RegistrationSessions) SetRole(id int64, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok && sess.Step == RegistrationAwaitingRole {
		sess.Role = role
		sess.Step = RegistrationAwaitingDepartment
	}
}

// Complete ends the form and returns the collected role.
func (s *RegistrationSessions) Complete(id int64) (role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		role = sess.Role
	}
	delete(s.sessions, id)
	return role
}

// Cancel aborts the form and reports whether one was in progress.
func (s *RegistrationSessions) Cancel(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, active := s.sessions[id]
	delete(s.sessions, id)
	return active
}
