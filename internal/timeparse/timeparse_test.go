package timeparse

import (
	"errors"
	"testing"
	"time"
)

var ref = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC) // a Monday

func TestExtractTomorrowAtTime(t *testing.T) {
	e := NewExtractor(time.UTC)
	got, err := e.Extract("book a meeting tomorrow at 3pm", ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 6, 3, 15, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExtractNoDatetime(t *testing.T) {
	e := NewExtractor(time.UTC)
	_, err := e.Extract("hello, what can you do?", ref)
	if !errors.Is(err, ErrNoDatetime) {
		t.Errorf("expected ErrNoDatetime, got %v", err)
	}
}

func TestExtractIdempotent(t *testing.T) {
	e := NewExtractor(time.UTC)
	first, err := e.Extract("next friday at 2pm", ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.Extract("next friday at 2pm", ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Equal(second) {
		t.Errorf("extraction not idempotent: %v vs %v", first, second)
	}
}

func TestExtractLocalizesToZone(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	e := NewExtractor(loc)
	got, err := e.Extract("tomorrow at 3pm", ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Location() != loc {
		t.Errorf("expected result in configured zone, got %v", got.Location())
	}
	if got.Hour() != 15 {
		t.Errorf("expected 15:00 in configured zone, got %d:00", got.Hour())
	}
}

func TestExtractNilLocationDefaultsUTC(t *testing.T) {
	e := NewExtractor(nil)
	got, err := e.Extract("tomorrow at noon", ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", got.Location())
	}
}

func TestExtractDateOnlyNormalizesToMidnight(t *testing.T) {
	e := NewExtractor(time.UTC)
	cases := []struct {
		utterance string
		want      time.Time
	}{
		{"what's on Friday?", time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)},
		{"cancel my meeting tomorrow", time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := e.Extract(tc.utterance, ref)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.utterance, err)
		}
		if !got.Equal(tc.want) {
			t.Errorf("%q: expected %v, got %v", tc.utterance, tc.want, got)
		}
		if !IsDateOnly(got) {
			t.Errorf("%q: expected a date-only result, got %v", tc.utterance, got)
		}
	}
}

func TestExtractClockTimeNotNormalized(t *testing.T) {
	e := NewExtractor(time.UTC)
	cases := []struct {
		utterance string
		want      time.Time
	}{
		{"Friday at 6pm", time.Date(2025, 6, 6, 18, 0, 0, 0, time.UTC)},
		{"tomorrow at 9:30am", time.Date(2025, 6, 3, 9, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := e.Extract(tc.utterance, ref)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.utterance, err)
		}
		if !got.Equal(tc.want) {
			t.Errorf("%q: expected %v, got %v", tc.utterance, tc.want, got)
		}
		if IsDateOnly(got) {
			t.Errorf("%q: time-specific result misreported as date-only", tc.utterance)
		}
	}
}

func TestIsDateOnly(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want bool
	}{
		{"midnight", time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC), true},
		{"afternoon", time.Date(2025, 6, 6, 15, 0, 0, 0, time.UTC), false},
		{"just past midnight", time.Date(2025, 6, 6, 0, 1, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		if got := IsDateOnly(tc.in); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}
