package timeclock

import (
	"fmt"
	"sort"
	"time"

	"punchclock/internal/model"
)

// DayTotal is one bucket of the current week's day-by-day breakdown.
type DayTotal struct {
	Label string // "Mon" .. "Sun"
	Date  time.Time
	Total time.Duration
}

// HistoryLine pairs a history entry with the running total of all entries up
// to and including it, oldest first.
type HistoryLine struct {
	Entry      model.HistoryEntry
	Cumulative time.Duration
}

// SummaryDay is one row of a period summary.
type SummaryDay struct {
	Date  string // YYYY-MM-DD
	Total time.Duration
}

// Summary aggregates a trailing window of history into per-day totals.
type Summary struct {
	Days       []SummaryDay // newest first
	Total      time.Duration
	DaysWorked int
	PerDay     time.Duration // average over days worked
}

// TodayTotal returns time worked on today's calendar date, including the
// elapsed portion of an in-progress session. It is derived from history on
// every call; the persisted running total is never trusted.
func (s *Service) TodayTotal(user string) (time.Duration, error) {
	history, session, err := s.loadForAggregation(user)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	var total time.Duration
	for _, e := range history {
		if sameDate(e.ClockIn, now) {
			total += e.Duration()
		}
	}
	return total + liveElapsed(session, now), nil
}

// WeekTotal returns time worked from this week's Monday through today,
// including the in-progress session.
func (s *Service) WeekTotal(user string) (time.Duration, error) {
	history, session, err := s.loadForAggregation(user)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	var total time.Duration
	for _, e := range history {
		if inWeekToDate(e.ClockIn, now) {
			total += e.Duration()
		}
	}
	return total + liveElapsed(session, now), nil
}

// DailyBreakdown buckets the current week's entries by day. All seven days
// Monday through Sunday are present even when empty; the in-progress session
// lands in today's bucket.
func (s *Service) DailyBreakdown(user string) ([]DayTotal, error) {
	history, session, err := s.loadForAggregation(user)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	ws := weekStart(now)

	days := make([]DayTotal, 7)
	index := make(map[string]int, 7)
	for i := range days {
		d := ws.AddDate(0, 0, i)
		days[i] = DayTotal{Label: d.Format("Mon"), Date: d}
		index[days[i].Label] = i
	}

	for _, e := range history {
		if inWeekToDate(e.ClockIn, now) {
			days[index[e.ClockIn.Format("Mon")]].Total += e.Duration()
		}
	}

	if live := liveElapsed(session, now); live > 0 {
		days[index[now.Format("Mon")]].Total += live
	}

	return days, nil
}

// History returns the user's entries oldest first with cumulative totals.
func (s *Service) History(user string) ([]HistoryLine, error) {
	history, err := s.store.LoadHistory(user)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].ClockIn.Before(history[j].ClockIn)
	})

	lines := make([]HistoryLine, 0, len(history))
	var cumulative time.Duration
	for _, e := range history {
		cumulative += e.Duration()
		lines = append(lines, HistoryLine{Entry: e, Cumulative: cumulative})
	}
	return lines, nil
}

// PeriodSummary sums history per day over the trailing window of the given
// number of days (7 for weekly, 30 for monthly).
func (s *Service) PeriodSummary(user string, days int) (*Summary, error) {
	history, err := s.store.LoadHistory(user)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}

	end := s.clock.Now()
	start := end.AddDate(0, 0, -days)

	totals := make(map[string]time.Duration)
	for _, e := range history {
		if e.ClockIn.Before(start) || e.ClockIn.After(end) {
			continue
		}
		totals[e.ClockIn.Format("2006-01-02")] += e.Duration()
	}

	dates := make([]string, 0, len(totals))
	for d := range totals {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	summary := &Summary{DaysWorked: len(dates)}
	for _, d := range dates {
		summary.Days = append(summary.Days, SummaryDay{Date: d, Total: totals[d]})
		summary.Total += totals[d]
	}
	if summary.DaysWorked > 0 {
		summary.PerDay = summary.Total / time.Duration(summary.DaysWorked)
	}
	return summary, nil
}

// ArchivedWeeks returns the user's archived weeks, newest first.
func (s *Service) ArchivedWeeks(user string) ([]model.ArchivedWeek, error) {
	archive, err := s.store.LoadArchive(user)
	if err != nil {
		return nil, fmt.Errorf("loading archive: %w", err)
	}
	sort.Slice(archive, func(i, j int) bool {
		return archive[i].WeekEnd > archive[j].WeekEnd
	})
	return archive, nil
}

func (s *Service) loadForAggregation(user string) ([]model.HistoryEntry, model.SessionState, error) {
	history, err := s.store.LoadHistory(user)
	if err != nil {
		return nil, model.SessionState{}, fmt.Errorf("loading history: %w", err)
	}
	session, err := s.store.LoadSession(user)
	if err != nil {
		return nil, model.SessionState{}, fmt.Errorf("loading session: %w", err)
	}
	return history, session, nil
}

// liveElapsed returns the elapsed time of an in-progress session, clamped at
// zero when the stored clock-in is in the future.
func liveElapsed(session model.SessionState, now time.Time) time.Duration {
	if !session.ClockedIn() || session.ClockInTime == nil {
		return 0
	}
	elapsed := now.Sub(*session.ClockInTime)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// completedTodaySeconds recomputes the persisted running total from history.
// The cached value in the session document is overwritten with this on every
// state transition so it can never drift from history.
func completedTodaySeconds(history []model.HistoryEntry, now time.Time) float64 {
	var total float64
	for _, e := range history {
		if sameDate(e.ClockIn, now) {
			total += e.DurationSeconds
		}
	}
	return total
}
