package models

import (
	"fmt"
)

// Default values for command line flags
const (
	DefaultRegion      = "us-east-1"
	DefaultIops        = 3000
	DefaultThroughput  = 125
	DefaultTargetType  = VolumeTypeGP3
	DefaultCurrentType = VolumeTypeGP2
	DefaultDryRun      = "True"
	DefaultLogLevel    = "info"
)

// RunConfig holds the settings for one migration run
type RunConfig struct {
	// Input mode: exactly one of AccountID or Filename is set
	AccountID string
	Filename  string

	Region            string
	Iops              int
	Throughput        int
	TargetVolumeType  string
	CurrentVolumeType string
	DryRun            bool

	// AWS access
	Profile     string
	RoleSuffix  string
	SessionName string

	OutputDir      string
	VolumeFilter   string
	LogLevel       string
	ShowProgress   bool
	OfflinePricing bool
}

// ParseDryRun converts the --dryRun flag value. Only the exact string "True" enables dry-run.
func ParseDryRun(v string) bool {
	return v == "True"
}

// BatchMode reports whether volumes are read from a file
func (c RunConfig) BatchMode() bool {
	return c.Filename != ""
}

// Validate checks the config for values that would make every volume fail.
// The target type is checked per volume by the modifier.
func (c RunConfig) Validate() error {
	if c.AccountID == "" && c.Filename == "" {
		return fmt.Errorf("one of --account-id or --filename is required")
	}
	if c.AccountID != "" && c.Filename != "" {
		return fmt.Errorf("--account-id and --filename are mutually exclusive")
	}
	if !IsValidVolumeType(c.CurrentVolumeType) {
		return fmt.Errorf("invalid current volume type %q: %w", c.CurrentVolumeType, ErrInvalidVolumeType)
	}
	if c.Iops < 0 || c.Throughput < 0 {
		return fmt.Errorf("iops and throughput must not be negative")
	}
	return nil
}
