package slots

import (
	"testing"
	"time"

	"github.com/amaan34/tailortalk/internal/models"
)

func day(hour, min int) time.Time {
	return time.Date(2025, 6, 2, hour, min, 0, 0, time.UTC)
}

func TestComputeEmptyCalendar(t *testing.T) {
	// 8-hour window, 30-minute slots: exactly 16 slots, first at dayStart.
	got := Compute(day(9, 0), day(17, 0), nil, 30*time.Minute)
	if len(got) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(got))
	}
	if !got[0].Start.Equal(day(9, 0)) {
		t.Errorf("first slot should start at dayStart, got %v", got[0].Start)
	}
	if !got[15].End.Equal(day(17, 0)) {
		t.Errorf("last slot should end at dayEnd, got %v", got[15].End)
	}
}

func TestComputeFullyBooked(t *testing.T) {
	busy := []models.BusyInterval{{Start: day(9, 0), End: day(17, 0)}}
	got := Compute(day(9, 0), day(17, 0), busy, 30*time.Minute)
	if len(got) != 0 {
		t.Errorf("expected no slots on a fully booked day, got %d", len(got))
	}
}

func TestComputeDegenerateWindow(t *testing.T) {
	if got := Compute(day(17, 0), day(9, 0), nil, 30*time.Minute); got != nil {
		t.Errorf("expected nil for inverted window, got %v", got)
	}
	if got := Compute(day(9, 0), day(9, 0), nil, 30*time.Minute); got != nil {
		t.Errorf("expected nil for zero-length window, got %v", got)
	}
}

func TestComputeGapsAroundBusy(t *testing.T) {
	busy := []models.BusyInterval{
		{Start: day(10, 0), End: day(11, 0)},
		{Start: day(15, 0), End: day(15, 30)},
	}
	got := Compute(day(9, 0), day(17, 0), busy, 30*time.Minute)

	// Gaps: [9,10) = 2 slots, [11,15) = 8 slots, [15:30,17) = 3 slots.
	if len(got) != 13 {
		t.Fatalf("expected 13 slots, got %d", len(got))
	}
	for _, s := range got {
		for _, b := range busy {
			if s.Start.Before(b.End) && b.Start.Before(s.End) {
				t.Errorf("slot %v-%v overlaps busy %v-%v", s.Start, s.End, b.Start, b.End)
			}
		}
	}
}

func TestComputeOverlappingBusyMerged(t *testing.T) {
	// Overlapping busy blocks must be merged; never a negative-length gap.
	busy := []models.BusyInterval{
		{Start: day(10, 0), End: day(12, 0)},
		{Start: day(11, 0), End: day(11, 30)},
		{Start: day(11, 30), End: day(13, 0)},
	}
	got := Compute(day(9, 0), day(17, 0), busy, 30*time.Minute)

	// Free: [9,10) = 2 slots, [13,17) = 8 slots.
	if len(got) != 10 {
		t.Fatalf("expected 10 slots, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start.Before(got[i-1].End) {
			t.Errorf("slots overlap: %v before %v", got[i].Start, got[i-1].End)
		}
	}
}

func TestComputeUnsortedInput(t *testing.T) {
	busy := []models.BusyInterval{
		{Start: day(15, 0), End: day(16, 0)},
		{Start: day(9, 30), End: day(10, 0)},
	}
	got := Compute(day(9, 0), day(17, 0), busy, 30*time.Minute)
	// Gaps: [9,9:30) = 1, [10,15) = 10, [16,17) = 2.
	if len(got) != 13 {
		t.Fatalf("expected 13 slots from unsorted input, got %d", len(got))
	}
	if !got[0].Start.Equal(day(9, 0)) {
		t.Errorf("first slot should start at 9:00, got %v", got[0].Start)
	}
}

func TestComputeTrailingRemainderDiscarded(t *testing.T) {
	// 45-minute free gap with 30-minute slots: one slot, 15 minutes dropped.
	busy := []models.BusyInterval{{Start: day(9, 45), End: day(17, 0)}}
	got := Compute(day(9, 0), day(17, 0), busy, 30*time.Minute)
	if len(got) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(got))
	}
	if !got[0].End.Equal(day(9, 30)) {
		t.Errorf("slot should end at 9:30, got %v", got[0].End)
	}
}

func TestComputeBusyOutsideWindowIgnored(t *testing.T) {
	busy := []models.BusyInterval{
		{Start: day(7, 0), End: day(8, 0)},
		{Start: day(18, 0), End: day(19, 0)},
	}
	got := Compute(day(9, 0), day(17, 0), busy, 30*time.Minute)
	if len(got) != 16 {
		t.Errorf("busy blocks outside the window should not reduce slots, got %d", len(got))
	}
}

func TestComputeSlotDurations(t *testing.T) {
	got := Compute(day(9, 0), day(17, 0), []models.BusyInterval{{Start: day(12, 0), End: day(12, 15)}}, 30*time.Minute)
	for _, s := range got {
		if s.End.Sub(s.Start) != 30*time.Minute {
			t.Errorf("slot %v-%v is not exactly 30 minutes", s.Start, s.End)
		}
	}
}

func TestBusinessWindow(t *testing.T) {
	ref := time.Date(2025, 6, 2, 13, 42, 7, 0, time.UTC)
	start, end := BusinessWindow(ref)
	if start.Hour() != models.BusinessDayStartHour || end.Hour() != models.BusinessDayEndHour {
		t.Errorf("unexpected window %v-%v", start, end)
	}
	if start.Day() != ref.Day() || end.Day() != ref.Day() {
		t.Errorf("window should stay on the same calendar day")
	}
}
