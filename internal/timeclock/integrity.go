package timeclock

import (
	"fmt"
	"math"
	"time"
)

// Warning is a detected (not preventable) inconsistency in stored data, such
// as the duplicated week left behind by a rollover interrupted between its
// archive write and its history trim. Warnings never fail an operation.
type Warning struct {
	Code    string
	Message string
}

func (w Warning) String() string { return fmt.Sprintf("[%s] %s", w.Code, w.Message) }

const (
	WarnDuplicatedWeek   = "duplicated-week"
	WarnNegativeDuration = "negative-duration"
	WarnDurationMismatch = "duration-mismatch"
	WarnInvertedInterval = "inverted-interval"
	WarnSessionState     = "session-state"
	WarnFutureClockIn    = "future-clock-in"
)

// CheckIntegrity scans one user's stored data for inconsistencies a partial
// write or clock skew could have introduced.
func (s *Service) CheckIntegrity(user string) ([]Warning, error) {
	history, err := s.store.LoadHistory(user)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	archive, err := s.store.LoadArchive(user)
	if err != nil {
		return nil, fmt.Errorf("loading archive: %w", err)
	}
	session, err := s.store.LoadSession(user)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var warnings []Warning

	// A history entry dated on or before the newest archived week end means
	// a rollover persisted the archive but not the trimmed history.
	var newestEnd time.Time
	for _, w := range archive {
		end, err := time.ParseInLocation("2006-01-02", w.WeekEnd, time.Local)
		if err != nil {
			continue
		}
		if end.After(newestEnd) {
			newestEnd = end
		}
	}
	if !newestEnd.IsZero() {
		for _, e := range history {
			if !dateOf(e.ClockIn).After(newestEnd) {
				warnings = append(warnings, Warning{
					Code: WarnDuplicatedWeek,
					Message: fmt.Sprintf("entry %d dated %s falls inside the archived week ended %s",
						e.ID, e.Date, newestEnd.Format("2006-01-02")),
				})
			}
		}
	}

	for _, e := range history {
		if e.DurationSeconds < 0 {
			warnings = append(warnings, Warning{
				Code:    WarnNegativeDuration,
				Message: fmt.Sprintf("entry %d has negative duration %.0fs", e.ID, e.DurationSeconds),
			})
		}
		if e.ClockOut.Before(e.ClockIn) {
			warnings = append(warnings, Warning{
				Code:    WarnInvertedInterval,
				Message: fmt.Sprintf("entry %d clocks out before it clocks in", e.ID),
			})
		}
		if diff := math.Abs(e.ClockOut.Sub(e.ClockIn).Seconds() - e.DurationSeconds); diff > 1 {
			warnings = append(warnings, Warning{
				Code: WarnDurationMismatch,
				Message: fmt.Sprintf("entry %d stores %.0fs but its interval spans %.0fs",
					e.ID, e.DurationSeconds, e.ClockOut.Sub(e.ClockIn).Seconds()),
			})
		}
	}

	switch {
	case session.ClockedIn() && session.ClockInTime == nil:
		warnings = append(warnings, Warning{
			Code:    WarnSessionState,
			Message: "session is clocked in without a clock-in time",
		})
	case !session.ClockedIn() && session.ClockInTime != nil:
		warnings = append(warnings, Warning{
			Code:    WarnSessionState,
			Message: "session is clocked out but a clock-in time lingers",
		})
	case session.ClockInTime != nil && session.ClockInTime.After(s.clock.Now()):
		warnings = append(warnings, Warning{
			Code:    WarnFutureClockIn,
			Message: fmt.Sprintf("clock-in time %s is in the future", session.ClockInTime.Format(time.RFC3339)),
		})
	}

	return warnings, nil
}
