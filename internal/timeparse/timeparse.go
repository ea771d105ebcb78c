// Package timeparse extracts timezone-aware timestamps from free-text utterances.
//
// It wraps the olebedev/when natural-language parser. All times are
// interpreted and emitted in one configured reference zone rather than
// inferred per user.
package timeparse

import (
	"errors"
	"log/slog"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrNoDatetime is returned when the utterance contains no recognizable
// temporal expression.
var ErrNoDatetime = errors.New("no datetime found in utterance")

// Extractor parses natural-language temporal expressions out of utterances.
type Extractor struct {
	parser *when.Parser
	clock  *when.Parser
	loc    *time.Location
}

// NewExtractor creates an extractor that localizes every result to loc.
// A nil loc defaults to UTC.
func NewExtractor(loc *time.Location) *Extractor {
	if loc == nil {
		loc = time.UTC
	}
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	// The full parser carries the reference clock time through pure-date
	// matches ("friday" at a 10:00 reference stays 10:00). A second parser
	// holding only the time-of-day rules tells the two cases apart.
	clock := when.New(nil)
	clock.Add(
		en.Hour(rules.Override),
		en.HourMinute(rules.Override),
		en.CasualTime(rules.Override),
		en.Deadline(rules.Override),
		en.PastTime(rules.Override),
	)
	return &Extractor{parser: w, clock: clock, loc: loc}
}

// Extract attempts a fuzzy parse of the utterance relative to ref and
// returns the matched instant localized to the extractor's zone. A match
// that names a day but no clock time is normalized to midnight of that
// day, so IsDateOnly distinguishes it from a time-specific match.
// Only the given utterance is inspected, never prior history. Extraction
// is deterministic for a fixed reference time.
func (e *Extractor) Extract(utterance string, ref time.Time) (time.Time, error) {
	result, err := e.parser.Parse(utterance, ref.In(e.loc))
	if err != nil {
		slog.Debug("timeparse.Extract: parser error", "error", err)
		return time.Time{}, err
	}
	if result == nil {
		slog.Debug("timeparse.Extract: no temporal expression matched", "utterance", utterance)
		return time.Time{}, ErrNoDatetime
	}
	t := result.Time.In(e.loc)
	if !e.hasClockTime(utterance, ref) {
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, e.loc)
	}
	slog.Debug("timeparse.Extract: matched", "text", result.Text, "time", t)
	return t, nil
}

// hasClockTime reports whether the utterance names a time of day, as
// opposed to only a date.
func (e *Extractor) hasClockTime(utterance string, ref time.Time) bool {
	result, err := e.clock.Parse(utterance, ref.In(e.loc))
	return err == nil && result != nil
}

// IsDateOnly reports whether t refers to a whole day rather than a
// specific instant. Extract emits date-only matches at exactly midnight.
func IsDateOnly(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0
}
