// internal/infra/telegram/session_test.go
package telegram

import "testing"

func TestAdminSessions(t *testing.T) {
	s := NewAdminSessions()

	if s.State(1) != AdminIdle {
		t.Error("unknown admin should be idle")
	}

	s.Set(1, AdminAwaitingBroadcastText)
	if s.State(1) != AdminAwaitingBroadcastText {
		t.Error("state not stored")
	}
	if s.State(2) != AdminIdle {
		t.Error("sessions must be independent per admin")
	}

	if !s.Reset(1) {
		t.Error("reset of an active flow should report true")
	}
	if s.State(1) != AdminIdle {
		t.Error("reset should return the admin to idle")
	}
	if s.Reset(1) {
		t.Error("reset with no active flow should report false")
	}

	s.Set(3, AdminAwaitingTestBroadcastText)
	s.Set(3, AdminIdle)
	if s.State(3) != AdminIdle {
		t.Error("setting idle should clear the session")
	}
}

func TestRegistrationSessions(t *testing.T) {
	s := NewRegistrationSessions()

	if s.Step(1) != RegistrationIdle {
		t.Error("unknown user should be idle")
	}

	s.Begin(1)
	if s.Step(1) != RegistrationAwaitingRole {
		t.Error("Begin should await the role answer")
	}

	// SetRole outside the role step is a no-op.
	s.SetRole(2, "stray")
	if s.Step(2) != RegistrationIdle {
		t.Error("SetRole must not create a session")
	}

	s.SetRole(1, "engineer")
	if s.Step(1) != RegistrationAwaitingDepartment {
		t.Error("role answer should advance to the department question")
	}

	if role := s.Complete(1); role != "engineer" {
		t.Errorf("Complete returned %q, want engineer", role)
	}
	if s.Step(1) != RegistrationIdle {
		t.Error("Complete should end the form")
	}

	s.Begin(5)
	if !s.Cancel(5) {
		t.Error("cancel of an active form should report true")
	}
	if s.Cancel(5) {
		t.Error("cancel with no active form should report false")
	}
}
