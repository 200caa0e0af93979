// Package migrate decides which volumes to modify and drives a migration run.
package migrate

import "github.com/younsl/ebsmig/internal/models"

// Decide applies the exemption rule to an inspected volume.
//
// The target type is forced to the current type when the volume could not be
// inspected, carries the exemption tag, or is not of sourceType. A volume is
// modified only when it is not exempted, dryRun is false, and its current type
// differs from the target type.
func Decide(record models.VolumeRecord, sourceType string, dryRun bool) models.Decision {
	decision := models.Decision{TargetType: record.DesiredType}

	switch {
	case record.CurrentType == models.VolumeTypeUnknown:
		decision.Reason = models.ReasonInspectFailed
	case record.Exempted:
		decision.Reason = models.ReasonExempted
	case record.CurrentType != sourceType:
		decision.Reason = models.ReasonUnexpectedType
	}
	if decision.Reason != models.ReasonNone {
		decision.TargetType = record.CurrentType
		return decision
	}

	if record.CurrentType == decision.TargetType {
		decision.Reason = models.ReasonAlreadyTarget
		return decision
	}

	if dryRun {
		decision.Reason = models.ReasonDryRun
		return decision
	}

	decision.Modify = true
	return decision
}
