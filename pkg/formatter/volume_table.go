package formatter

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/younsl/ebsmig/internal/models"
)

// PrintFailedVolumesTable prints the volumes that could not be inspected or modified
func PrintFailedVolumesTable(out io.Writer, outcomes []models.Outcome) {
	var failed []models.Outcome
	for _, outcome := range outcomes {
		if isFailure(outcome) {
			failed = append(failed, outcome)
		}
	}
	if len(failed) == 0 {
		return
	}

	// Group by account so one broken account reads as a block
	sort.SliceStable(failed, func(i, j int) bool {
		return failed[i].Record.AccountID < failed[j].Record.AccountID
	})

	fmt.Fprintln(out, "\n## Failed EBS Volumes")

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "VOLUME ID\tACCOUNT\tREGION\tTYPE\tTARGET\tREASON\tMESSAGE")

	for _, outcome := range failed {
		record := outcome.Record
		message := "-"
		if outcome.Result != nil && outcome.Result.Message != "" {
			message = truncate(outcome.Result.Message, MaxMessageWidth)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			record.VolumeID,
			record.AccountID,
			record.Region,
			record.CurrentType,
			outcome.Decision.TargetType,
			outcome.Decision.Reason,
			message,
		)
	}

	fmt.Fprintf(w, "Total:\t%d\n", len(failed))
	w.Flush()
}

func isFailure(outcome models.Outcome) bool {
	switch outcome.Decision.Reason {
	case models.ReasonInspectFailed, models.ReasonSessionFailed, models.ReasonModifyFailed, models.ReasonInvalidType:
		return true
	}
	return false
}
