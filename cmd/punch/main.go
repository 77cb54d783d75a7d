package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"punchclock/internal/app"
	"punchclock/internal/config"
	"punchclock/internal/dashboard"
	"punchclock/internal/timeclock"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "ClockIn", "ResetWeek").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// actingUser resolves the username for a command from the --user flag,
// PUNCH_USER, or the config default, in that order.
func actingUser(a *app.App, cmd *cobra.Command) (string, error) {
	flagValue, _ := cmd.Flags().GetString("user")
	return a.ResolveUser(flagValue)
}

func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

var rootCmd = &cobra.Command{
	Use:   "punch",
	Short: "Personal clock-in/clock-out time tracker",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		installID := uuid.New().String()

		cfg := config.NewConfig(installID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Install ID: %s\n", installID)
		fmt.Printf("Base Dir:   %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Install ID:   %s\n", cfg.InstallID)
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Default User: %s\n", cfg.DefaultUser)
		fmt.Printf("Storage:      %s (%s)\n", cfg.Storage.Type, cfg.Storage.DataDir)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage export encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate an encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("KeysInit")
		if err != nil {
			return err
		}
		defer a.Close()

		if a.Encryptor().IsConfigured() {
			return fmt.Errorf("encryption keys already exist")
		}

		passphrase, err := readPassphrase("Passphrase for private key: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.Encryptor().Setup(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Println("Encryption keys generated.")
		return nil
	},
}

// user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CreateUser")
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := a.Service().CreateUser(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Created user %q (%s)\n", args[0], u.Created.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListUsers")
		if err != nil {
			return err
		}
		defer a.Close()

		names, users, err := a.Service().Users()
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Println("No users.")
			return nil
		}

		for _, name := range names {
			u := users[name]
			fmt.Printf("%-20s  created %s  %s archived\n",
				name,
				u.Created.Format("2006-01-02"),
				timeclock.FormatDecimalHoursMinutes(u.TotalHours),
			)
		}
		return nil
	},
}

// in command
var inCmd = &cobra.Command{
	Use:   "in [NOTE]",
	Short: "Clock in",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ClockIn")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := actingUser(a, cmd)
		if err != nil {
			return err
		}

		res, err := a.Service().ClockIn(user, strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Printf("Clocked in at %s\n", res.At.Format("15:04:05"))
		if res.Note != "" {
			fmt.Printf("Note: %s\n", res.Note)
		}
		return nil
	},
}

// out command
var outCmd = &cobra.Command{
	Use:   "out [NOTE]",
	Short: "Clock out",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ClockOut")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := actingUser(a, cmd)
		if err != nil {
			return err
		}

		res, err := a.Service().ClockOut(user, strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Printf("Clocked out at %s\n", res.At.Format("15:04:05"))
		fmt.Printf("Session: %s\n", timeclock.FormatClock(res.Session))
		if res.Entry.Note != "" {
			fmt.Printf("Note: %s\n", res.Entry.Note)
		}
		return nil
	},
}

// status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "View current clock status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Status")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := actingUser(a, cmd)
		if err != nil {
			return err
		}

		info, err := a.Service().Status(user)
		if err != nil {
			return err
		}

		if info.ClockedIn {
			fmt.Printf("%s is clocked IN since %s\n", user, info.ClockInTime.Format("15:04:05"))
			if info.PendingNote != "" {
				fmt.Printf("Note: %s\n", info.PendingNote)
			}
		} else {
			fmt.Printf("%s is clocked OUT\n", user)
		}
		fmt.Printf("Today:     %s\n", timeclock.FormatHoursMinutes(info.TodayTotal))
		fmt.Printf("This week: %s\n", timeclock.FormatHoursMinutes(info.WeekTotal))
		return nil
	},
}

// report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "View the hours worked report",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("HoursReport")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := actingUser(a, cmd)
		if err != nil {
			return err
		}

		report, err := a.Service().HoursReport(user)
		if err != nil {
			return err
		}

		fmt.Print(report)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View all entries with running totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := actingUser(a, cmd)
		if err != nil {
			return err
		}

		lines, err := a.Service().History(user)
		if err != nil {
			return err
		}

		if len(lines) == 0 {
			fmt.Println("No entries recorded.")
			return nil
		}

		for _, l := range lines {
			note := ""
			if l.Entry.Note != "" {
				note = "  " + l.Entry.Note
			}
			fmt.Printf("#%-4d %s  %s - %s  %s  (total %s)%s\n",
				l.Entry.ID,
				l.Entry.Date,
				l.Entry.ClockIn.Format("15:04:05"),
				l.Entry.ClockOut.Format("15:04:05"),
				timeclock.FormatClock(l.Entry.Duration()),
				timeclock.FormatHoursMinutes(l.Cumulative),
				note,
			)
		}
		return nil
	},
}

// archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "View archived weeks",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ArchivedWeeks")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := actingUser(a, cmd)
		if err != nil {
			return err
		}

		weeks, err := a.Service().ArchivedWeeks(user)
		if err != nil {
			return err
		}

		if len(weeks) == 0 {
			fmt.Println("No archived weeks.")
			return nil
		}

		for _, w := range weeks {
			fmt.Printf("week ending %s  %6.2f hours  %d entries  archived %s\n",
				w.WeekEnd,
				w.TotalHours,
				w.EntriesCount,
				w.ArchivedAt.Format("2006-01-02"),
			)
		}
		return nil
	},
}

// reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Archive completed weeks and start fresh",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ResetWeek")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := actingUser(a, cmd)
		if err != nil {
			return err
		}

		report, err := a.Service().ResetWeek(user)
		if err != nil {
			return err
		}

		if report.ArchivedWeek == nil {
			fmt.Println("Nothing to archive: all entries are in the current week.")
		} else {
			fmt.Printf("Archived %d entries through %s (%.2f hours)\n",
				report.ArchivedEntries,
				report.ArchivedWeek.WeekEnd,
				report.ArchivedWeek.TotalHours,
			)
		}
		fmt.Printf("Current week (from %s): %d entries, %s\n",
			report.WeekStart.Format("2006-01-02"),
			report.KeptEntries,
			timeclock.FormatHoursMinutes(report.CurrentWeekTotal),
		)
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add DATE IN OUT [NOTE]",
	Short: "Add a missed entry (DATE as YYYY-MM-DD, times as HH:MM)",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("AddMissedEntry")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := actingUser(a, cmd)
		if err != nil {
			return err
		}

		note := strings.Join(args[3:], " ")
		entry, err := a.Service().AddMissedEntry(user, args[0], args[1], args[2], note)
		if err != nil {
			return err
		}

		fmt.Printf("Added entry #%d on %s: %s\n",
			entry.ID, entry.Date, timeclock.FormatClock(entry.Duration()))
		return nil
	},
}

// note command
var noteCmd = &cobra.Command{
	Use:   "note ID NOTE",
	Short: "Edit the note on an entry",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("EditNote")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := actingUser(a, cmd)
		if err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}

		if err := a.Service().EditNote(user, id, strings.Join(args[1:], " ")); err != nil {
			return err
		}

		fmt.Printf("Updated note on entry #%d\n", id)
		return nil
	},
}

// summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "View a weekly or monthly summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		monthly, _ := cmd.Flags().GetBool("monthly")

		a, err := newApp("PeriodSummary")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := actingUser(a, cmd)
		if err != nil {
			return err
		}

		days := 7
		label := "Last 7 days"
		if monthly {
			days = 30
			label = "Last 30 days"
		}

		summary, err := a.Service().PeriodSummary(user, days)
		if err != nil {
			return err
		}

		fmt.Printf("%s for %s:\n\n", label, user)
		for _, d := range summary.Days {
			fmt.Printf("%s  %s\n", d.Date, timeclock.FormatHoursMinutes(d.Total))
		}
		fmt.Printf("\nTotal:       %s\n", timeclock.FormatHoursMinutes(summary.Total))
		fmt.Printf("Days worked: %d\n", summary.DaysWorked)
		if summary.DaysWorked > 0 {
			fmt.Printf("Per day:     %s\n", timeclock.FormatHoursMinutes(summary.PerDay))
		}
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history to CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		a, err := newApp("ExportCSV")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := actingUser(a, cmd)
		if err != nil {
			return err
		}

		if out == "" {
			out = fmt.Sprintf("%s_timesheet.csv", user)
		}

		path, err := a.ExportCSV(user, out, encrypt)
		if err != nil {
			return err
		}

		fmt.Printf("Exported to %s\n", path)
		return nil
	},
}

// decrypt command
var decryptCmd = &cobra.Command{
	Use:   "decrypt INPUT OUTPUT",
	Short: "Decrypt an encrypted export",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DecryptFile")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		if err := a.DecryptFile(args[0], args[1], passphrase); err != nil {
			return err
		}

		fmt.Printf("Decrypted to %s\n", args[1])
		return nil
	},
}

// doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check stored data for inconsistencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CheckIntegrity")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := actingUser(a, cmd)
		if err != nil {
			return err
		}

		warnings, err := a.Service().CheckIntegrity(user)
		if err != nil {
			return err
		}

		if len(warnings) == 0 {
			fmt.Println("No problems found.")
			return nil
		}

		for _, w := range warnings {
			fmt.Println(w)
		}
		return fmt.Errorf("%d problem(s) found", len(warnings))
	},
}

// dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live terminal dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Dashboard")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := actingUser(a, cmd)
		if err != nil {
			return err
		}

		return dashboard.Run(a.Service(), user)
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// user subcommands
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(inCmd)
	rootCmd.AddCommand(outCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(noteCmd)
	summaryCmd.Flags().Bool("monthly", false, "Summarize the last 30 days instead of 7")
	rootCmd.AddCommand(summaryCmd)
	exportCmd.Flags().StringP("output", "o", "", "Output file path")
	exportCmd.Flags().Bool("encrypt", false, "Encrypt with the configured public key")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(decryptCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(dashboardCmd)

	rootCmd.PersistentFlags().StringP("user", "u", "", "Acting username (defaults to PUNCH_USER or the config default)")
}
