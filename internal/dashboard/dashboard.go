package dashboard

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"punchclock/internal/timeclock"
)

// snapshot is the data the view renders, refetched on every tick so a
// running session's elapsed time stays live.
type snapshot struct {
	status    *timeclock.StatusInfo
	breakdown []timeclock.DayTotal
	archived  int
	err       error
}

// Model is the interactive dashboard for one user's clock.
type Model struct {
	service *timeclock.Service
	user    string
	width   int
	height  int
	snap    snapshot
}

func New(service *timeclock.Service, user string) Model {
	m := Model{service: service, user: user}
	m.snap = m.fetch()
	return m
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#4A90E2")).
			Padding(0, 1).
			MarginBottom(1)

	clockedInStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	clockedOutStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	totalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F7DC6F")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2).
			MarginBottom(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.snap = m.fetch()
		return m, tickCmd()
	}
	return m, nil
}

func (m Model) fetch() snapshot {
	status, err := m.service.Status(m.user)
	if err != nil {
		return snapshot{err: err}
	}
	breakdown, err := m.service.DailyBreakdown(m.user)
	if err != nil {
		return snapshot{err: err}
	}
	weeks, err := m.service.ArchivedWeeks(m.user)
	if err != nil {
		return snapshot{err: err}
	}
	return snapshot{status: status, breakdown: breakdown, archived: len(weeks)}
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.snap.err != nil {
		return fmt.Sprintf("error: %v\n\nPress 'q' to quit", m.snap.err)
	}

	now := time.Now()
	header := headerStyle.Width(m.width).Render(
		fmt.Sprintf("Punch Clock — %s — %s", m.user, now.Format("Jan 2, 2006 15:04:05")),
	)

	leftColWidth := m.width/2 - 3
	rightColWidth := m.width/2 - 3

	status := m.snap.status
	var statusLine, sinceLine string
	if status.ClockedIn {
		statusLine = clockedInStyle.Render("● CLOCKED IN")
		sinceLine = fmt.Sprintf("Since: %s (%s elapsed)",
			status.ClockInTime.Format("15:04:05"),
			timeclock.FormatClock(now.Sub(*status.ClockInTime)))
		if status.PendingNote != "" {
			sinceLine += "\nNote: " + status.PendingNote
		}
	} else {
		statusLine = clockedOutStyle.Render("● CLOCKED OUT")
		sinceLine = "No session in progress"
	}
	statusBox := boxStyle.Width(leftColWidth).Render(fmt.Sprintf(
		"STATUS\n\n%s\n%s", statusLine, sinceLine,
	))

	todayBox := boxStyle.Width(leftColWidth).Render(fmt.Sprintf(
		"TODAY\n\nWorked: %s\nDecimal: %s hours",
		totalStyle.Render(timeclock.FormatHoursMinutes(status.TodayTotal)),
		timeclock.FormatHoursDecimal(status.TodayTotal),
	))

	weekBox := boxStyle.Width(leftColWidth).Render(fmt.Sprintf(
		"THIS WEEK\n\nWorked: %s\nDecimal: %s hours\nArchived weeks: %d",
		totalStyle.Render(timeclock.FormatHoursMinutes(status.WeekTotal)),
		timeclock.FormatHoursDecimal(status.WeekTotal),
		m.snap.archived,
	))

	breakdownBox := m.renderBreakdown(rightColWidth)

	leftColumn := lipgloss.JoinVertical(lipgloss.Left, statusBox, todayBox, weekBox)
	content := lipgloss.JoinHorizontal(lipgloss.Top, leftColumn, breakdownBox)

	footer := footerStyle.Width(m.width).Render("Press 'q' or Ctrl+C to quit")

	fullContent := lipgloss.JoinVertical(lipgloss.Left, header, content, footer)

	contentHeight := lipgloss.Height(fullContent)
	if contentHeight < m.height {
		fullContent += strings.Repeat("\n", m.height-contentHeight-1)
	}
	return fullContent
}

// renderBreakdown draws a horizontal bar per weekday, scaled to the longest
// day of the current week.
func (m Model) renderBreakdown(width int) string {
	var b strings.Builder
	b.WriteString("THIS WEEK BY DAY\n\n")

	var max time.Duration
	for _, d := range m.snap.breakdown {
		if d.Total > max {
			max = d.Total
		}
	}

	barWidth := width - 26
	if barWidth < 10 {
		barWidth = 10
	}
	for _, d := range m.snap.breakdown {
		filled := 0
		if max > 0 {
			filled = int(int64(barWidth) * int64(d.Total) / int64(max))
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		fmt.Fprintf(&b, "%s %s %s\n",
			d.Label,
			clockedInStyle.Render(bar),
			timeclock.FormatHoursMinutes(d.Total))
	}
	return boxStyle.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

// Run starts the dashboard in the alternate screen and blocks until quit.
func Run(service *timeclock.Service, user string) error {
	p := tea.NewProgram(New(service, user), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
