package timeclock

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
)

// ExportCSV writes the user's full history to w as CSV, oldest first.
func (s *Service) ExportCSV(user string, w io.Writer) error {
	history, err := s.store.LoadHistory(user)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if len(history) == 0 {
		return validationErrorf("no history to export for %q", user)
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].ClockIn.Before(history[j].ClockIn)
	})

	cw := csv.NewWriter(w)
	header := []string{"User", "Date", "Clock In", "Clock Out", "Duration (HH:MM:SS)", "Duration (Hours)", "Note"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, e := range history {
		row := []string{
			user,
			e.ClockIn.Format("2006-01-02"),
			e.ClockIn.Format("03:04:05 PM"),
			e.ClockOut.Format("03:04:05 PM"),
			FormatClock(e.Duration()),
			fmt.Sprintf("%.2f", e.DurationSeconds/3600),
			e.Note,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
