// Package scm ties a Surround repository address to its persisted revision,
// the polling engine, and the changelog parser.
package scm

import (
	"context"
	"fmt"
	"time"

	"github.com/wahlandcase/sscmpoll/internal/changelog"
	"github.com/wahlandcase/sscmpoll/internal/identity"
	"github.com/wahlandcase/sscmpoll/internal/models"
	"github.com/wahlandcase/sscmpoll/internal/polling"
	"github.com/wahlandcase/sscmpoll/internal/sscm"
	"github.com/wahlandcase/sscmpoll/internal/state"

	"github.com/rs/zerolog"
)

// Job is one configured repository watched by the orchestrator
type Job struct {
	Address   sscm.Address
	Client    *sscm.Client
	State     *state.Store
	Directory identity.Directory
	Threshold float64

	// Now defaults to time.Now
	Now    func() time.Time
	Logger zerolog.Logger
}

// New builds a Job for a repository URL
func New(url string, client *sscm.Client, store *state.Store, dir identity.Directory) (*Job, error) {
	addr, ok := sscm.ParseAddress(url)
	if !ok {
		return nil, fmt.Errorf("invalid server URL %q", url)
	}
	return &Job{
		Address:   addr,
		Client:    client,
		State:     store,
		Directory: dir,
		Threshold: polling.DefaultThreshold,
		Logger:    client.Logger,
	}, nil
}

func (j *Job) now() time.Time {
	if j.Now == nil {
		return time.Now()
	}
	return j.Now()
}

// Key is the state key for this job's repository
func (j *Job) Key() string {
	return j.Address.Key()
}

// CalcRevision returns the revision a build at buildTime corresponds to
func (j *Job) CalcRevision(buildTime time.Time, build int) models.RevisionState {
	rs := models.NewRevisionState(buildTime, build)
	j.Logger.Info().
		Int("build", rs.BuildNumber()).
		Time("timestamp", rs.Timestamp()).
		Msg("calculated revision")
	return rs
}

// Baseline loads the last recorded revision. ok is false on a first build.
func (j *Job) Baseline() (models.RevisionState, bool, error) {
	rs, ok, err := j.State.Load(j.Key())
	if err != nil {
		return models.RevisionState{}, false, fmt.Errorf("failed to load revision: %w", err)
	}
	return rs, ok, nil
}

// Record saves rs as the job's baseline
func (j *Job) Record(rs models.RevisionState) error {
	if err := j.State.Save(j.Key(), rs); err != nil {
		return fmt.Errorf("failed to save revision: %w", err)
	}
	return nil
}

// Engine returns a polling engine probing this job's repository
func (j *Job) Engine() *polling.Engine {
	return &polling.Engine{
		Probe:     polling.ClientProbe{Client: j.Client, Address: j.Address},
		Threshold: j.Threshold,
		Now:       j.now,
		Logger:    j.Logger,
	}
}

// Poll decides whether a build is needed. Without a recorded baseline the
// verdict is BuildNow and nothing is probed.
func (j *Job) Poll(ctx context.Context) (polling.Result, error) {
	baseline, ok, err := j.Baseline()
	if err != nil {
		return polling.Result{Verdict: models.NoChanges}, err
	}
	if !ok {
		j.Logger.Info().Str("repository", j.Address.String()).Msg("no previous build recorded, building now")
		return polling.Result{Verdict: models.BuildNow}, nil
	}
	return j.Engine().Evaluate(ctx, baseline)
}

// PollSince decides against an explicit baseline instead of the stored one
func (j *Job) PollSince(ctx context.Context, baseline models.RevisionState) (polling.Result, error) {
	return j.Engine().Evaluate(ctx, baseline)
}

// CheckoutResult describes a finished checkout
type CheckoutResult struct {
	Revision models.RevisionState
	Baseline models.RevisionState
	// Changes is nil when no changelog was requested
	Changes *models.ChangeSet
}

// Checkout gets a working copy at the current time, records the new
// revision for build, and when changelogPath is set captures and parses
// the changes since the previous revision.
func (j *Job) Checkout(ctx context.Context, workspace string, build int, changelogPath string) (*CheckoutResult, error) {
	baseline, ok, err := j.Baseline()
	if err != nil {
		return nil, err
	}
	if !ok {
		baseline = models.NewRevisionState(time.Unix(0, 0), 0)
		j.Logger.Info().Msg("no previous build recorded, changelog starts at the epoch")
	}

	now := j.now()
	if err := j.Client.Checkout(ctx, j.Address, workspace, now); err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		Revision: j.CalcRevision(now, build),
		Baseline: baseline,
	}
	if err := j.Record(result.Revision); err != nil {
		return nil, err
	}

	if changelogPath == "" {
		return result, nil
	}

	rng := sscm.Since(baseline, now)
	if err := j.Client.CaptureFile(ctx, j.Address, rng, changelogPath); err != nil {
		return result, fmt.Errorf("failed to calculate changelog: %w", err)
	}

	parser := changelog.Parser{Directory: j.Directory, Build: build, Logger: j.Logger}
	changes, err := parser.ParseFile(changelogPath)
	if err != nil {
		return result, err
	}
	result.Changes = changes
	return result, nil
}
