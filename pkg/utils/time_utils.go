package utils

import (
	"fmt"
	"time"
)

// reportTimestampLayout matches the timestamp part of report file names, e.g. 2024-03-01_09-15-00
const reportTimestampLayout = "2006-01-02_15-04-05"

// ReportTimestamp formats t for use in a report file name
func ReportTimestamp(t time.Time) string {
	return t.Format(reportTimestampLayout)
}

// FormatDuration formats a run duration as seconds with two decimals
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
