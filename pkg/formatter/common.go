package formatter

import (
	"fmt"
	"io"
	"time"

	"github.com/younsl/ebsmig/pkg/utils"
)

// printTimestamp prints the run timestamp and duration
func printTimestamp(w io.Writer, startTime time.Time, duration time.Duration) {
	timeStr := startTime.Format("2006-01-02 15:04:05")
	fmt.Fprintf(w, "Run started at %s (took %s)\n", timeStr, utils.FormatDuration(duration))
}
