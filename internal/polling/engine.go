// Package polling decides whether the repository changed enough since the
// last build to start a new one.
//
// A failing probe counts as zero changes. A broken connection therefore
// looks like "no changes" and suppresses builds until it recovers; callers
// relying on polling should watch the logs for probe failures.
package polling

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/wahlandcase/sscmpoll/internal/models"
	"github.com/wahlandcase/sscmpoll/internal/sscm"

	"github.com/rs/zerolog"
)

// Output is a staged probe result that must be released after reading
type Output interface {
	Open() (io.ReadCloser, error)
	Close() error
}

// Probe runs the change-count query for a date range. It may return a
// non-nil Output together with an error (e.g. a non-zero exit).
type Probe interface {
	Probe(ctx context.Context, rng sscm.Range) (Output, error)
}

// ClientProbe probes through an sscm.Client in CountOnly mode
type ClientProbe struct {
	Client  *sscm.Client
	Address sscm.Address
}

func (p ClientProbe) Probe(ctx context.Context, rng sscm.Range) (Output, error) {
	capture, err := p.Client.Capture(ctx, p.Address, rng, sscm.CountOnly)
	if capture == nil {
		return nil, err
	}
	return capture, err
}

// Engine produces polling verdicts
type Engine struct {
	Probe Probe
	// Threshold is the count at which BuildNow starts; <= 0 means DefaultThreshold
	Threshold float64
	// Now defaults to time.Now
	Now    func() time.Time
	Logger zerolog.Logger
}

func (e *Engine) threshold() float64 {
	if e.Threshold <= 0 {
		return DefaultThreshold
	}
	return e.Threshold
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Result is one polling evaluation
type Result struct {
	Verdict models.Verdict
	Count   float64
	Range   sscm.Range
}

// Decide probes [baseline, now) and classifies the count. It only fails
// when ctx is cancelled; probe failures yield NoChanges.
func (e *Engine) Decide(ctx context.Context, baseline models.RevisionState) (models.Verdict, error) {
	res, err := e.Evaluate(ctx, baseline)
	return res.Verdict, err
}

// Evaluate is Decide with the count and range that led to the verdict
func (e *Engine) Evaluate(ctx context.Context, baseline models.RevisionState) (Result, error) {
	rng := sscm.Since(baseline, e.now())
	e.Logger.Info().
		Int("build", baseline.BuildNumber()).
		Time("since", baseline.Timestamp()).
		Msg("calculating changes since build")

	count, err := e.Count(ctx, rng)
	if err != nil {
		return Result{Verdict: models.NoChanges, Range: rng}, err
	}

	verdict := Classify(count, e.threshold())
	e.Logger.Info().
		Float64("changes", count).
		Float64("threshold", e.threshold()).
		Str("verdict", verdict.String()).
		Msg("polling verdict")
	return Result{Verdict: verdict, Count: count, Range: rng}, nil
}

// Count runs the probe once and returns the change count. The probe output
// is always released. Errors are returned only for cancellation.
func (e *Engine) Count(ctx context.Context, rng sscm.Range) (float64, error) {
	out, err := e.Probe.Probe(ctx, rng)
	if out != nil {
		defer e.release(out)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, err
	}
	if err != nil {
		e.Logger.Error().Err(err).Msg("determine changes count failed, treating as no changes")
		return 0, nil
	}

	count := e.readCount(out)
	e.Logger.Info().Float64("changes", count).Msg("number of changes determined")
	return count, nil
}

func (e *Engine) readCount(out Output) float64 {
	r, err := out.Open()
	if err != nil {
		e.Logger.Error().Err(err).Msg("failed to open probe output")
		return 0
	}
	defer r.Close()

	line, ok, err := firstLine(r)
	if err != nil {
		e.Logger.Error().Err(err).Msg("failed to read probe output")
		return 0
	}
	if !ok {
		return 0
	}
	e.Logger.Debug().Str("line", line).Msg("probe summary")

	count, err := ParseCount(line)
	if err != nil {
		e.Logger.Error().Err(err).Msg("unparseable change count, treating as no changes")
		return 0
	}
	return count
}

func (e *Engine) release(out Output) {
	if err := out.Close(); err != nil {
		e.Logger.Warn().Err(err).Msg("failed to release probe output, marked for later cleanup")
	}
}
