package monitoring

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/SusheelSathyaraj/TableMigrator/migration"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// ConsoleReporter prints migration progress for a human watching the terminal.
// It is not safe for concurrent use; the migrator calls it from one goroutine.
type ConsoleReporter struct {
	out     io.Writer
	log     logrus.FieldLogger
	inPlace bool

	// a progress line without its trailing newline is on screen
	lineOpen bool
}

var _ migration.Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter writes progress to out. With inPlace the progress line is
// redrawn with a carriage return; otherwise every update gets its own line.
func NewConsoleReporter(out io.Writer, log logrus.FieldLogger, inPlace bool) *ConsoleReporter {
	return &ConsoleReporter{
		out:     out,
		log:     log,
		inPlace: inPlace,
	}
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Percent is the integer share of uploaded rows, 0 when total is 0.
// It can exceed 100 when rows were added after counting.
func Percent(uploaded int, total int64) int64 {
	if total <= 0 {
		return 0
	}
	return int64(uploaded) * 100 / total
}

func (c *ConsoleReporter) StartTable(table string, total int64) {
	c.closeLine()
	fmt.Fprintf(c.out, "\n=== Migrating %s ===\n", table)
	fmt.Fprintf(c.out, "  Total rows: %s\n", humanize.Comma(total))
}

func (c *ConsoleReporter) BatchUploaded(table string, uploaded int, total int64) {
	line := fmt.Sprintf("  [%3d%%] %s / %s", Percent(uploaded, total), humanize.Comma(int64(uploaded)), humanize.Comma(total))
	if c.inPlace {
		fmt.Fprintf(c.out, "\r%s", line)
		c.lineOpen = true
		return
	}
	fmt.Fprintln(c.out, line)
}

func (c *ConsoleReporter) BatchFailed(table string, offset int, err error) {
	c.closeLine()
	c.log.WithFields(logrus.Fields{
		"table":  table,
		"offset": offset,
		"error":  err,
	}).Error("batch insert failed, retrying rows one by one")
}

func (c *ConsoleReporter) RowSkipped(table string, offset int, err error) {
	c.closeLine()
	c.log.WithFields(logrus.Fields{
		"table":  table,
		"offset": offset,
		"error":  err,
	}).Warn("row skipped")
}

func (c *ConsoleReporter) FinishTable(outcome *migration.TableOutcome) {
	c.closeLine()
	fmt.Fprintf(c.out, "  Done: %s / %s rows uploaded in %s\n",
		humanize.Comma(int64(outcome.Uploaded)),
		humanize.Comma(outcome.Total),
		formatDuration(outcome.Duration),
	)
	if skipped := len(outcome.SkippedRows()); skipped > 0 {
		fmt.Fprintf(c.out, "  Skipped: %s rows\n", humanize.Comma(int64(skipped)))
	}
}

// RunComplete prints the run summary
func (c *ConsoleReporter) RunComplete(result *migration.MigrationResult) {
	c.closeLine()
	fmt.Fprintf(c.out, "\nTables: %d | Rows: %s / %s | Duration: %s\n",
		result.TotalTablesProcessed,
		humanize.Comma(result.TotalRowsMigrated),
		humanize.Comma(result.TotalRows),
		formatDuration(result.Duration),
	)
	fmt.Fprintln(c.out, "=== Migration complete ===")
}

func (c *ConsoleReporter) closeLine() {
	if c.lineOpen {
		fmt.Fprintln(c.out)
		c.lineOpen = false
	}
}

// formats the duration in a human readable way
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	} else {
		return fmt.Sprintf("%ds", seconds)
	}
}
