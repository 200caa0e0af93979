package models

import (
	"errors"
	"fmt"
)

// EBS volume types the modifier accepts
const (
	VolumeTypeStandard = "standard"
	VolumeTypeIO1      = "io1"
	VolumeTypeGP2      = "gp2"
	VolumeTypeGP3      = "gp3"

	// VolumeTypeUnknown marks a volume whose state could not be fetched
	VolumeTypeUnknown = "NA"
)

// Exemption tag that opts a volume out of migration
const (
	ExemptionTagKey   = "GP3_EXEMPTION_TAG"
	ExemptionTagValue = "exempted"
)

// InvalidInputMessage is the fixed failure message for an unknown target type
const InvalidInputMessage = "Please provide a valid input"

// ErrInvalidVolumeType is returned when a target volume type is not in ValidVolumeTypes
var ErrInvalidVolumeType = errors.New("invalid volume type")

// ValidVolumeTypes lists the volume types a volume can be modified to
var ValidVolumeTypes = []string{VolumeTypeStandard, VolumeTypeIO1, VolumeTypeGP2, VolumeTypeGP3}

// IsValidVolumeType reports whether t is one of ValidVolumeTypes
func IsValidVolumeType(t string) bool {
	for _, v := range ValidVolumeTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Target is one volume requested for migration, as read from a batch file
type Target struct {
	AccountID   string
	VolumeID    string
	Region      string
	DesiredType string
}

// VolumeRecord is the inspected state of a volume. It is not modified once built.
type VolumeRecord struct {
	AccountID   string
	VolumeID    string
	Region      string
	CurrentType string
	DesiredType string
	Exempted    bool
	Iops        int
	Throughput  int
	SizeGiB     int
}

// SkipReason explains why a volume was not modified
type SkipReason string

const (
	ReasonNone           SkipReason = ""
	ReasonExempted       SkipReason = "exempted"
	ReasonInspectFailed  SkipReason = "inspect-failed"
	ReasonUnexpectedType SkipReason = "unexpected-type"
	ReasonAlreadyTarget  SkipReason = "already-target"
	ReasonDryRun         SkipReason = "dry-run"
	ReasonSessionFailed  SkipReason = "session-failed"
	ReasonInvalidType    SkipReason = "invalid-type"
	ReasonModifyFailed   SkipReason = "modify-failed"
)

// Decision is computed from a VolumeRecord by the decision rule
type Decision struct {
	TargetType string
	Modify     bool
	Reason     SkipReason
}

// ModifyStatus is the status of a modify-volume call
type ModifyStatus string

const (
	ModifySuccess ModifyStatus = "Success"
	ModifyFailed  ModifyStatus = "Failed"
)

// ModifyResult describes the outcome of a modify-volume call
type ModifyResult struct {
	VolumeID          string
	Status            ModifyStatus
	Message           string
	ModificationState string
	OriginalType      string
	TargetType        string
	Err               error
}

// Outcome ties a volume record to its decision and, if attempted, the modify result
type Outcome struct {
	Record   VolumeRecord
	Decision Decision
	Result   *ModifyResult
}

// Modified reports whether a modify call was made and succeeded
func (o Outcome) Modified() bool {
	return o.Result != nil && o.Result.Status == ModifySuccess
}

// Status returns the value written to the StatusOrExemption report column
func (o Outcome) Status() string {
	if o.Modified() {
		return o.Result.ModificationState
	}
	if o.Result != nil && o.Result.Status == ModifyFailed {
		return fmt.Sprintf("%s: %s", o.Decision.Reason, o.Result.Message)
	}
	return string(o.Decision.Reason)
}
