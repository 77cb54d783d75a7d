package timeclock

import (
	"fmt"
	"strings"
	"time"
)

// StatusInfo is a point-in-time view of a user's clock for display.
type StatusInfo struct {
	ClockedIn   bool
	ClockInTime *time.Time
	PendingNote string
	TodayTotal  time.Duration
	WeekTotal   time.Duration
}

// Status reports the user's current session state with derived totals.
func (s *Service) Status(user string) (*StatusInfo, error) {
	session, err := s.store.LoadSession(user)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	today, err := s.TodayTotal(user)
	if err != nil {
		return nil, err
	}
	week, err := s.WeekTotal(user)
	if err != nil {
		return nil, err
	}

	return &StatusInfo{
		ClockedIn:   session.ClockedIn(),
		ClockInTime: session.ClockInTime,
		PendingNote: session.ClockInNote,
		TodayTotal:  today,
		WeekTotal:   week,
	}, nil
}

// HoursReport renders the plain-text report covering the current week and
// the most recently archived week. Display only, not a machine contract.
func (s *Service) HoursReport(user string) (string, error) {
	now := s.clock.Now()
	ws := weekStart(now)
	we := weekEnd(now)

	weekTotal, err := s.WeekTotal(user)
	if err != nil {
		return "", err
	}

	archive, err := s.ArchivedWeeks(user)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	line := strings.Repeat("=", 39)
	thin := strings.Repeat("-", 39)

	fmt.Fprintf(&b, "%s\n", line)
	fmt.Fprintf(&b, "        HOURS WORKED REPORT\n")
	fmt.Fprintf(&b, "         User: %s\n", user)
	fmt.Fprintf(&b, "    Printed: %s\n", now.Format("2006-01-02 03:04 PM"))
	fmt.Fprintf(&b, "%s\n\n", line)

	fmt.Fprintf(&b, "CURRENT WEEK\n")
	fmt.Fprintf(&b, "Period: %s - %s\n", ws.Format("Mon, Jan 02"), we.Format("Mon, Jan 02"))
	fmt.Fprintf(&b, "Hours Worked: %s\n\n", FormatHoursMinutes(weekTotal))

	fmt.Fprintf(&b, "%s\n", thin)
	fmt.Fprintf(&b, "PREVIOUS WEEK\n")
	if len(archive) > 0 {
		recent := archive[0]
		prevEnd, err := time.ParseInLocation("2006-01-02", recent.WeekEnd, now.Location())
		if err != nil {
			return "", fmt.Errorf("parsing archived week end %q: %w", recent.WeekEnd, err)
		}
		prevStart := prevEnd.AddDate(0, 0, -6)
		fmt.Fprintf(&b, "Period: %s - %s\n", prevStart.Format("Mon, Jan 02"), prevEnd.Format("Mon, Jan 02"))
		fmt.Fprintf(&b, "Hours Worked: %s\n", FormatDecimalHoursMinutes(recent.TotalHours))
	} else {
		fmt.Fprintf(&b, "No previous week data available.\n")
	}
	fmt.Fprintf(&b, "%s\n", thin)
	fmt.Fprintf(&b, "%s\n", line)

	return b.String(), nil
}
