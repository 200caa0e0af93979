package migrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/gobwas/glob"
	"github.com/inconshreveable/log15"
	"github.com/younsl/ebsmig/internal/logging"
	"github.com/younsl/ebsmig/internal/models"
	awsclient "github.com/younsl/ebsmig/pkg/aws"
)

// Recorder receives one outcome per processed volume
type Recorder interface {
	Record(outcome models.Outcome) error
}

// Progress is advanced once per processed volume
type Progress interface {
	Add(num int) error
}

// Options controls how volumes are migrated
type Options struct {
	// SourceType is the only volume type that gets migrated
	SourceType string
	// TargetType is the desired type for volumes found by RunAccount
	TargetType string
	DryRun     bool
	Iops       int
	Throughput int
	// VolumeFilter restricts RunAccount to matching volume IDs. Nil matches all.
	VolumeFilter glob.Glob
}

// Runner processes volumes one at a time and records every outcome
type Runner struct {
	assumer  awsclient.Assumer
	sessions *awsclient.SessionCache
	recorder Recorder
	progress Progress
	opts     Options
	log      log15.Logger
}

// NewRunner creates a Runner. sessions is owned by the caller and may be shared between runs.
func NewRunner(assumer awsclient.Assumer, sessions *awsclient.SessionCache, recorder Recorder, opts Options, logger log15.Logger) *Runner {
	return &Runner{
		assumer:  assumer,
		sessions: sessions,
		recorder: recorder,
		opts:     opts,
		log:      logging.OrDiscard(logger),
	}
}

// WithProgress sets the progress indicator advanced after each volume
func (r *Runner) WithProgress(p Progress) *Runner {
	r.progress = p
	return r
}

// ErrSessionFailed is returned by RunAccount when the account's role cannot be assumed
var ErrSessionFailed = errors.New("session failed")

// RunTargets processes each target from a batch file. Accounts whose role cannot
// be assumed get a session-failed row per volume and processing continues.
func (r *Runner) RunTargets(ctx context.Context, targets []models.Target) ([]models.Outcome, error) {
	outcomes := make([]models.Outcome, 0, len(targets))

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		var outcome models.Outcome
		session := r.sessions.Get(ctx, r.assumer, target.AccountID, target.Region)
		if session.OK() {
			record := session.Client.InspectVolume(ctx, target)
			outcome = r.process(ctx, session.Client, record)
		} else {
			outcome = sessionFailed(target)
			r.log.Warn("skipping volume, no session for account",
				"account", target.AccountID, "volume", target.VolumeID, "err", session.Err)
		}

		if err := r.record(outcome); err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// RunAccount processes every volume of the source type in one account and region
func (r *Runner) RunAccount(ctx context.Context, accountID, region string) ([]models.Outcome, error) {
	session := r.sessions.Get(ctx, r.assumer, accountID, region)
	if !session.OK() {
		return nil, fmt.Errorf("account %s: %w: %v", accountID, ErrSessionFailed, session.Err)
	}

	records, err := session.Client.ListVolumesByType(ctx, r.opts.SourceType, r.opts.TargetType, r.opts.Iops, r.opts.Throughput)
	if err != nil {
		return nil, err
	}

	var outcomes []models.Outcome
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		if r.opts.VolumeFilter != nil && !r.opts.VolumeFilter.Match(record.VolumeID) {
			r.log.Debug("volume does not match filter", "volume", record.VolumeID)
			continue
		}

		outcome := r.process(ctx, session.Client, record)
		if err := r.record(outcome); err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func (r *Runner) process(ctx context.Context, client *awsclient.EBSClient, record models.VolumeRecord) models.Outcome {
	decision := Decide(record, r.opts.SourceType, r.opts.DryRun)
	outcome := models.Outcome{Record: record, Decision: decision}

	log := r.log.New("account", record.AccountID, "volume", record.VolumeID)
	log.Info("reviewing volume", "type", record.CurrentType, "target", decision.TargetType, "exempted", record.Exempted)

	if !decision.Modify {
		log.Debug("volume not modified", "reason", decision.Reason)
		return outcome
	}

	result := client.ModifyVolumeType(ctx, record.VolumeID, decision.TargetType, r.opts.DryRun)
	outcome.Result = &result
	if result.Status == models.ModifyFailed {
		outcome.Decision.Reason = models.ReasonModifyFailed
		if errors.Is(result.Err, models.ErrInvalidVolumeType) {
			outcome.Decision.Reason = models.ReasonInvalidType
		}
	}

	return outcome
}

func (r *Runner) record(outcome models.Outcome) error {
	if err := r.recorder.Record(outcome); err != nil {
		return err
	}
	if r.progress != nil {
		_ = r.progress.Add(1)
	}
	return nil
}

func sessionFailed(target models.Target) models.Outcome {
	record := models.VolumeRecord{
		AccountID:   target.AccountID,
		VolumeID:    target.VolumeID,
		Region:      target.Region,
		CurrentType: models.VolumeTypeUnknown,
		DesiredType: target.DesiredType,
	}
	return models.Outcome{
		Record: record,
		Decision: models.Decision{
			TargetType: record.CurrentType,
			Reason:     models.ReasonSessionFailed,
		},
	}
}
