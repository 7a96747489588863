package text

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/olusolaa/tenant-reconciler/internal/core/domain"
	"github.com/olusolaa/tenant-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/tenant-reconciler/internal/errors"
)

const ReporterTypeText = "text"

type Config struct {
	NoColor bool `mapstructure:"no_color"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

type Option func(*Reporter)

// WithWriter replaces stdout. Colors are left as configured.
func WithWriter(w io.Writer) Option {
	return func(r *Reporter) { r.writer = w }
}

func NewReporter(cfg Config, logger ports.Logger, opts ...Option) (*Reporter, error) {
	r := &Reporter{
		config: cfg,
		writer: os.Stdout,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	if cfg.NoColor || (r.writer == io.Writer(os.Stdout) && !isTerminal(os.Stdout)) {
		color.NoColor = true
	}
	return r, nil
}

func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func (r *Reporter) Report(ctx context.Context, results []domain.ReconciliationResult) error {
	if len(results) == 0 {
		fmt.Fprintln(r.writer, "No resource types reconciled.")
		return nil
	}

	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
	defer tw.Flush()

	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	magenta := color.New(color.FgMagenta).SprintFunc()

	title := "Reconciliation Report"
	if results[0].DryRun {
		title += " (dry run)"
	}
	fmt.Fprintln(tw, title)
	fmt.Fprintln(tw, strings.Repeat("=", len(title)))
	fmt.Fprintln(tw, "Status\tType\tCreate\tUpdate\tDelete\tDetails")
	fmt.Fprintln(tw, "------\t----\t------\t------\t------\t-------")

	var totals domain.Counts
	failed := 0

	for _, res := range results {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var statusStr, details string
		counts := domain.Counts{Create: res.Created, Update: res.Updated, Delete: res.Deleted}

		switch res.Status {
		case domain.StatusUnchanged:
			statusStr = green("[OK]")
			details = "In sync."
		case domain.StatusApplied:
			statusStr = yellow("[CHANGED]")
			details = fmt.Sprintf("Applied %d change(s).", counts.Total())
		case domain.StatusPlanned:
			counts = res.Planned
			statusStr = cyan("[PLANNED]")
			details = fmt.Sprintf("%d change(s) pending.", counts.Total())
		case domain.StatusSkipped:
			statusStr = "[SKIPPED]"
			details = "Not declared in the desired state."
		case domain.StatusUnsupported:
			statusStr = magenta("[UNSUPPORTED]")
			details = "Not available for this tenant."
		case domain.StatusFailed:
			failed++
			statusStr = red("[FAILED]")
			details = r.formatFailure(res)
		default:
			statusStr = "[UNKNOWN]"
		}

		if res.SkippedDeletes > 0 {
			details += fmt.Sprintf(" %d delete(s) skipped, deletes are not allowed.", res.SkippedDeletes)
		}

		totals.Create += counts.Create
		totals.Update += counts.Update
		totals.Delete += counts.Delete

		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n", statusStr, res.Type, counts.Create, counts.Update, counts.Delete, details)
	}

	fmt.Fprintln(tw, "\nSummary:")
	fmt.Fprintln(tw, "-------")
	fmt.Fprintf(tw, "Resource Types:\t%d\n", len(results))
	fmt.Fprintf(tw, "Created:\t%d\n", totals.Create)
	fmt.Fprintf(tw, "Updated:\t%d\n", totals.Update)
	fmt.Fprintf(tw, "Deleted:\t%d\n", totals.Delete)
	fmt.Fprintf(tw, "Failed:\t%s\n", red(failed))

	return nil
}

func (r *Reporter) formatFailure(res domain.ReconciliationResult) string {
	var b strings.Builder
	if res.FailedIn != "" {
		fmt.Fprintf(&b, "Failed while %s", res.FailedIn)
	} else {
		b.WriteString("Failed")
	}
	if res.Created+res.Updated+res.Deleted > 0 {
		b.WriteString(" after partial apply")
	}
	b.WriteString(": ")

	for i, err := range res.Errors {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(formatError(err))
	}
	return b.String()
}

func formatError(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.IsUserFacing {
		return appErr.Message
	}
	const maxLen = 200
	str := err.Error()
	if len(str) > maxLen {
		return str[:maxLen-3] + "..."
	}
	return str
}
