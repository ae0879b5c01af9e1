// Package rrule computes run times from RFC 5545 recurrence rules.
package rrule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// ParseRRule parses an RFC 5545 RRULE string anchored at dtstart. The
// "RRULE:" prefix is optional.
func ParseRRule(ruleStr string, dtstart time.Time) (*rrule.RRule, error) {
	ruleStr = strings.TrimPrefix(strings.TrimSpace(ruleStr), "RRULE:")
	if !IsRecurring(ruleStr) {
		return nil, fmt.Errorf("failed to parse RRULE %q: missing FREQ", ruleStr)
	}

	opt, err := rrule.StrToROption(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE: %w", err)
	}
	opt.Dtstart = dtstart
	return rrule.NewRRule(*opt)
}

// NextOccurrenceStrict returns the first occurrence strictly after the
// given time, or nil when the rule is exhausted.
func NextOccurrenceStrict(ruleStr string, dtstart, after time.Time) (*time.Time, error) {
	rule, err := ParseRRule(ruleStr, dtstart)
	if err != nil {
		return nil, err
	}

	next := rule.After(after, false)
	if next.IsZero() {
		return nil, nil
	}
	return &next, nil
}

// Schedule is a parsed rule evaluated in a fixed location.
type Schedule struct {
	rule string
	loc  *time.Location
}

// NewSchedule validates ruleStr. Occurrences are computed in loc (UTC when
// nil), so "BYHOUR=9" means 09:00 in that location.
func NewSchedule(ruleStr string, loc *time.Location) (*Schedule, error) {
	if loc == nil {
		loc = time.UTC
	}
	if _, err := ParseRRule(ruleStr, time.Now().In(loc)); err != nil {
		return nil, err
	}
	return &Schedule{rule: ruleStr, loc: loc}, nil
}

// Next returns the first occurrence strictly after now.
func (s *Schedule) Next(now time.Time) (time.Time, error) {
	// Anchor one day back so the current day's slot is still reachable.
	start := now.In(s.loc).Truncate(time.Second).Add(-24 * time.Hour)
	next, err := NextOccurrenceStrict(s.rule, start, now.In(s.loc))
	if err != nil {
		return time.Time{}, err
	}
	if next == nil {
		return time.Time{}, fmt.Errorf("rule %q has no occurrence after %s", s.rule, now.Format(time.RFC3339))
	}
	return *next, nil
}

func (s *Schedule) String() string {
	return s.rule
}

// IsRecurring checks if the RRULE string carries a frequency.
func IsRecurring(ruleStr string) bool {
	return ruleStr != "" && strings.Contains(strings.ToUpper(ruleStr), "FREQ=")
}
