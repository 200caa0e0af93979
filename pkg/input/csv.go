// Package input reads migration targets from a batch file.
//
// The file has no header. Each line is account_id,volume_id,region,desired_vol_type.
package input

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/younsl/ebsmig/internal/models"
)

const targetFields = 4

// ReadTargetsFile reads targets from the batch file at path
func ReadTargetsFile(path string) ([]models.Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening input file: %w", err)
	}
	defer f.Close()

	targets, err := ReadTargets(f)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return targets, nil
}

// ReadTargets parses targets from r. Extra columns are ignored; short lines are an error.
func ReadTargets(r io.Reader) ([]models.Target, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var targets []models.Target
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		if len(record) < targetFields {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", line, targetFields, len(record))
		}

		targets = append(targets, models.Target{
			AccountID:   strings.TrimSpace(record[0]),
			VolumeID:    strings.TrimSpace(record[1]),
			Region:      strings.TrimSpace(record[2]),
			DesiredType: strings.TrimSpace(record[3]),
		})
	}

	return targets, nil
}
