package timeclock

import (
	"fmt"
	"math"
	"time"

	"punchclock/internal/model"
)

// RolloverReport describes the outcome of a weekly reset. Counts and the
// current-week total reflect the state after the partition.
type RolloverReport struct {
	WeekStart        time.Time
	WeekEnd          time.Time
	ArchivedEntries  int
	KeptEntries      int
	CurrentWeekTotal time.Duration // includes any in-progress session
	ArchivedWeek     *model.ArchivedWeek
}

// ResetWeek archives all history dated before this week's Monday and keeps
// the current week. The partition is exhaustive and disjoint: every entry
// lands on exactly one side. When nothing predates Monday the rollover is a
// no-op — no archive record is created and history is untouched.
func (s *Service) ResetWeek(user string) (*RolloverReport, error) {
	u, err := s.ensureUser(user)
	if err != nil {
		return nil, err
	}

	history, err := s.store.LoadHistory(user)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	now := s.clock.Now()
	ws := weekStart(now)

	var keep, prior []model.HistoryEntry
	for _, e := range history {
		if dateOf(e.ClockIn).Before(ws) {
			prior = append(prior, e)
		} else {
			keep = append(keep, e)
		}
	}

	report := &RolloverReport{
		WeekStart:       ws,
		WeekEnd:         weekEnd(now),
		ArchivedEntries: len(prior),
		KeptEntries:     len(keep),
	}

	if len(prior) > 0 {
		var seconds float64
		for _, e := range prior {
			seconds += e.DurationSeconds
		}
		week := model.ArchivedWeek{
			WeekEnd:      ws.AddDate(0, 0, -1).Format("2006-01-02"), // the Sunday before Monday
			TotalHours:   roundHours(seconds),
			EntriesCount: len(prior),
			ArchivedAt:   now,
		}
		if err := s.store.ArchiveWeek(user, keep, week); err != nil {
			return nil, fmt.Errorf("archiving week: %w", err)
		}
		report.ArchivedWeek = &week

		u.TotalHours += week.TotalHours
		if err := s.store.SaveUser(user, u); err != nil {
			return nil, fmt.Errorf("saving user: %w", err)
		}
		s.logger.Info("week archived", "user", user,
			"week_end", week.WeekEnd, "entries", week.EntriesCount, "hours", week.TotalHours)
	} else {
		s.logger.Debug("rollover no-op, nothing predates current week", "user", user)
	}

	session, err := s.store.LoadSession(user)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	for _, e := range keep {
		if inWeekToDate(e.ClockIn, now) {
			report.CurrentWeekTotal += e.Duration()
		}
	}
	report.CurrentWeekTotal += liveElapsed(session, now)

	return report, nil
}

// roundHours converts seconds to decimal hours rounded to 2 places.
func roundHours(seconds float64) float64 {
	return math.Round(seconds/3600*100) / 100
}
