package formatter

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/younsl/ebsmig/internal/models"
	awsclient "github.com/younsl/ebsmig/pkg/aws"
	"github.com/younsl/ebsmig/pkg/pricing"
)

// OutcomeModified labels volumes whose modification was requested successfully
const OutcomeModified = "modified"

// SavingsEstimator estimates the monthly saving of changing a volume's type
type SavingsEstimator interface {
	MonthlySavings(ctx context.Context, fromType, toType string, sizeGiB int, region string) (float64, pricing.PricingSource)
}

// SummaryRow aggregates the outcomes sharing one label
type SummaryRow struct {
	Outcome   string
	Count     int
	SizeGiB   int
	Savings   float64
	Estimated bool
}

// Summarize groups outcomes by result. Savings are estimated for modified
// volumes and for volumes a dry-run would have modified.
func Summarize(ctx context.Context, outcomes []models.Outcome, estimator SavingsEstimator) []SummaryRow {
	byLabel := make(map[string]*SummaryRow)

	for _, outcome := range outcomes {
		label := outcomeLabel(outcome)
		row, ok := byLabel[label]
		if !ok {
			row = &SummaryRow{Outcome: label}
			byLabel[label] = row
		}

		record := outcome.Record
		row.Count++
		row.SizeGiB += record.SizeGiB

		if estimator == nil || !countsTowardSavings(outcome) {
			continue
		}
		savings, source := estimator.MonthlySavings(ctx, record.CurrentType, outcome.Decision.TargetType, record.SizeGiB, record.Region)
		if source != pricing.PricingSourceNA {
			row.Savings += savings
			row.Estimated = true
		}
	}

	rows := make([]SummaryRow, 0, len(byLabel))
	for _, row := range byLabel {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Outcome < rows[j].Outcome
	})
	return rows
}

func outcomeLabel(outcome models.Outcome) string {
	if outcome.Modified() {
		return OutcomeModified
	}
	return string(outcome.Decision.Reason)
}

func countsTowardSavings(outcome models.Outcome) bool {
	return outcome.Modified() || outcome.Decision.Reason == models.ReasonDryRun
}

// PrintMigrationSummary prints a table of outcomes with sizes and estimated savings
func PrintMigrationSummary(out io.Writer, rows []SummaryRow, startTime time.Time, duration time.Duration) {
	fmt.Fprintln(out, "\n## EBS Volume Migration Summary")

	if len(rows) == 0 {
		fmt.Fprintln(out, "No volumes processed.")
		printTimestamp(out, startTime, duration)
		return
	}

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "OUTCOME\tVOLUMES\tTOTAL SIZE\tEST. MONTHLY SAVINGS")

	var totalCount, totalSize int
	var totalSavings float64
	for _, row := range rows {
		totalCount += row.Count
		totalSize += row.SizeGiB
		totalSavings += row.Savings

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			row.Outcome,
			humanize.Comma(int64(row.Count)),
			formatSize(row.SizeGiB),
			formatSavings(row),
		)
	}

	fmt.Fprintf(w, "Total:\t%s\t%s\t$%.2f\n",
		humanize.Comma(int64(totalCount)),
		formatSize(totalSize),
		totalSavings,
	)
	w.Flush()

	printTimestamp(out, startTime, duration)
}

// PrintFailedSessions lists the accounts whose migration role could not be assumed
func PrintFailedSessions(out io.Writer, failed []awsclient.SessionResult) {
	if len(failed) == 0 {
		return
	}

	fmt.Fprintln(out, "\n## Accounts Skipped (role assumption failed)")

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tREGION\tERROR")
	for _, result := range failed {
		message := ""
		if result.Err != nil {
			message = truncate(result.Err.Error(), MaxMessageWidth)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", result.AccountID, result.Region, message)
	}
	w.Flush()
}

func formatSize(sizeGiB int) string {
	return humanize.IBytes(uint64(sizeGiB) << 30)
}

func formatSavings(row SummaryRow) string {
	if !row.Estimated {
		return "-"
	}
	return fmt.Sprintf("$%.2f", row.Savings)
}
