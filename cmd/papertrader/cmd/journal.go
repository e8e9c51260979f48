package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/rustyeddy/papertrader/internal/display"
	"github.com/rustyeddy/papertrader/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the audit journal",
	Long: `Query and display audit records from a SQLite journal.

Subcommands:
  record - Show a single record by ID
  last   - Show the most recent records
  today  - List records written today
  day    - List records written on a specific day

Examples:
  papertrader journal record <record-id> --org
  papertrader journal last 20
  papertrader journal day 2024-01-15 --summary`,
}

var journalRecordCmd = &cobra.Command{
	Use:   "record <record-id>",
	Short: "Show a single record",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRecord,
}

var journalLastCmd = &cobra.Command{
	Use:   "last [n]",
	Short: "Show the most recent records (default 10)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJournalLast,
}

var journalTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List records written today",
	Args:  cobra.NoArgs,
	RunE:  runJournalToday,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List records written on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var (
	journalDBPath  string
	journalOrg     bool
	journalSummary bool
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRecordCmd)
	journalCmd.AddCommand(journalLastCmd)
	journalCmd.AddCommand(journalTodayCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./papertrader.db", "path to SQLite journal DB")
	journalCmd.PersistentFlags().BoolVar(&journalOrg, "org", false, "render records as Org-mode entries")
	journalCmd.PersistentFlags().BoolVar(&journalSummary, "summary", false, "print totals after the records")
}

func printRecords(out io.Writer, recs []journal.Record) {
	if journalOrg {
		fmt.Fprintln(out, journal.FormatRecordsOrg(recs))
	} else {
		for _, r := range recs {
			fmt.Fprintln(out, journal.FormatLine(r))
		}
	}
	if journalSummary {
		fmt.Fprintln(out, display.JournalSummary(journal.Summarize(recs)))
	}
}

func runJournalRecord(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetRecord(args[0])
	if err != nil {
		return fmt.Errorf("get record: %w", err)
	}

	printRecords(cmd.OutOrStdout(), []journal.Record{rec})
	return nil
}

func runJournalLast(cmd *cobra.Command, args []string) error {
	n := 10
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 {
			return fmt.Errorf("n must be a positive integer, got %q", args[0])
		}
		n = v
	}

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.Last(n)
	if err != nil {
		return fmt.Errorf("query records: %w", err)
	}

	printRecords(cmd.OutOrStdout(), recs)
	return nil
}

func runJournalToday(cmd *cobra.Command, args []string) error {
	loc := time.Local
	return listDay(cmd.OutOrStdout(), loc, time.Now().In(loc).Format("2006-01-02"))
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	return listDay(cmd.OutOrStdout(), time.Local, args[0])
}

func listDay(out io.Writer, loc *time.Location, day string) error {
	start, end, err := dayBounds(loc, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	recs, err := j.ListBetween(start, end)
	if err != nil {
		return fmt.Errorf("query records: %w", err)
	}

	printRecords(out, recs)
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
