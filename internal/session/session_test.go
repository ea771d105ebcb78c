package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/amaan34/tailortalk/internal/models"
)

func TestGetOrCreateFreshState(t *testing.T) {
	s := NewStore()
	state := s.GetOrCreate("s1")
	if state.SessionID != "s1" {
		t.Errorf("expected session id s1, got %q", state.SessionID)
	}
	if state.Intent != models.IntentUnknown {
		t.Errorf("fresh state should have empty intent, got %q", state.Intent)
	}
	if state.BookingConfirmed || state.AvailabilityChecked {
		t.Error("fresh state should have all booleans false")
	}
	if state.Reschedule != models.RescheduleIdle {
		t.Errorf("fresh state should be reschedule-idle, got %q", state.Reschedule)
	}
	if len(state.History) != 0 {
		t.Error("fresh state should have empty history")
	}
}

func TestGetOrCreateReturnsSameState(t *testing.T) {
	s := NewStore()
	first := s.GetOrCreate("s1")
	first.AppendTurn(models.RoleUser, "hello")

	second := s.GetOrCreate("s1")
	if first != second {
		t.Error("expected the same state pointer for the same session id")
	}
	if len(second.History) != 1 {
		t.Errorf("expected history to survive, got %d turns", len(second.History))
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := NewStore()
	s.GetOrCreate("s1")
	replacement := models.NewConversationState("s1")
	replacement.Intent = models.IntentBookAppointment
	s.Save("s1", replacement)

	got := s.GetOrCreate("s1")
	if got.Intent != models.IntentBookAppointment {
		t.Errorf("expected saved state, got intent %q", got.Intent)
	}
}

func TestConcurrentDistinctKeys(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", i)
			state := s.GetOrCreate(id)
			state.AppendTurn(models.RoleUser, "hi")
			s.Save(id, state)
		}(i)
	}
	wg.Wait()
	if s.Len() != 50 {
		t.Errorf("expected 50 sessions, got %d", s.Len())
	}
}
