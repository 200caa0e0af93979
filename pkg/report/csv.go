// Package report writes one CSV row per processed volume.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/younsl/ebsmig/internal/models"
	"github.com/younsl/ebsmig/pkg/utils"
)

// Header is the first row of every report
var Header = []string{
	"VolumeId",
	"AccountId",
	"VolumeTypeNow",
	"NewVolumeType",
	"ExemptionTag",
	"Iops",
	"Throughput",
	"StatusOrExemption",
}

// FileName returns the report file name for a run started at t
func FileName(t time.Time) string {
	return "ebsoutput-" + utils.ReportTimestamp(t) + ".csv"
}

// Writer appends outcome rows to a CSV report
type Writer struct {
	csv    *csv.Writer
	closer io.Closer
	path   string
	rows   int
}

// Create creates the report file for a run started at now inside dir and writes the header
func Create(dir string, now time.Time) (*Writer, error) {
	path := filepath.Join(dir, FileName(now))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating report file: %w", err)
	}

	w, err := newWriter(f, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.path = path
	return w, nil
}

// NewWriter writes a report to w. Close flushes but does not close w.
func NewWriter(w io.Writer) (*Writer, error) {
	return newWriter(w, nil)
}

func newWriter(w io.Writer, closer io.Closer) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return nil, fmt.Errorf("error writing report header: %w", err)
	}
	return &Writer{csv: cw, closer: closer}, nil
}

// Record writes the row for one outcome
func (w *Writer) Record(outcome models.Outcome) error {
	if err := w.csv.Write(Row(outcome)); err != nil {
		return fmt.Errorf("error writing report row for %s: %w", outcome.Record.VolumeID, err)
	}
	w.rows++
	return nil
}

// Rows returns the number of outcome rows written, header excluded
func (w *Writer) Rows() int {
	return w.rows
}

// Path returns the report file path, or "" for a writer created with NewWriter
func (w *Writer) Path() string {
	return w.path
}

// Close flushes buffered rows and closes the underlying file
func (w *Writer) Close() error {
	w.csv.Flush()
	err := w.csv.Error()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("error closing report: %w", err)
	}
	return nil
}

// Row renders an outcome. A successful modification leaves Iops and Throughput
// empty and reports the modification state; every other outcome carries the
// volume's values and the skip reason or failure message.
func Row(outcome models.Outcome) []string {
	record := outcome.Record
	decision := outcome.Decision

	if outcome.Modified() {
		return []string{
			record.VolumeID,
			record.AccountID,
			record.CurrentType,
			decision.TargetType,
			formatBool(record.Exempted),
			"",
			"",
			outcome.Status(),
		}
	}

	return []string{
		record.VolumeID,
		record.AccountID,
		record.CurrentType,
		decision.TargetType,
		formatBool(record.Exempted),
		strconv.Itoa(record.Iops),
		strconv.Itoa(record.Throughput),
		outcome.Status(),
	}
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
