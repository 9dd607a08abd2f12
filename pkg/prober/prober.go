package prober

import (
	"context"
	"errors"
	"fmt"

	"github.com/thebartekbanach/imgurproxy/pkg/fetcher"
	"github.com/thebartekbanach/imgurproxy/pkg/resolver"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Candidates []string

	// Parallel checks every candidate at once; the earliest candidate
	// in list order still wins when several exist.
	Parallel    bool
	MaxParallel int
}

func DefaultConfig() Config {
	return Config{
		Candidates:  []string{"jpg", "png", "gif", "webp", "mp4"},
		MaxParallel: 4,
	}
}

type Prober struct {
	config  Config
	fetcher fetcher.Fetcher
}

func NewProber(config Config, fetcher fetcher.Fetcher) *Prober {
	if config.MaxParallel < 1 {
		config.MaxParallel = 1
	}

	return &Prober{config, fetcher}
}

// Probe fills in the extension of target by asking the origin which
// candidate exists. Targets with a known extension are returned as they are.
func (p *Prober) Probe(ctx context.Context, target resolver.ResolvedTarget) (resolver.ResolvedTarget, error) {
	if !target.NeedsProbe() {
		return target, nil
	}

	if p.config.Parallel {
		return p.probeParallel(ctx, target)
	}

	return p.probeSequential(ctx, target)
}

func (p *Prober) probeSequential(ctx context.Context, target resolver.ResolvedTarget) (resolver.ResolvedTarget, error) {
	results := probeResults{}

	for _, extension := range p.config.Candidates {
		if err := ctx.Err(); err != nil {
			return resolver.ResolvedTarget{}, canceled(err)
		}

		candidate := target.WithExtension(extension)
		outcome := p.fetcher.Head(ctx, candidate)
		if outcome.Kind == fetcher.Success {
			return candidate, nil
		}

		if outcome.Reason == fetcher.ReasonCanceled {
			return resolver.ResolvedTarget{}, &TransientError{outcome}
		}

		results.add(outcome)
	}

	return resolver.ResolvedTarget{}, results.exhausted()
}

func (p *Prober) probeParallel(ctx context.Context, target resolver.ResolvedTarget) (resolver.ResolvedTarget, error) {
	candidates := make([]resolver.ResolvedTarget, len(p.config.Candidates))
	outcomes := make([]fetcher.FetchOutcome, len(p.config.Candidates))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.config.MaxParallel)

	for i, extension := range p.config.Candidates {
		candidates[i] = target.WithExtension(extension)
		group.Go(func() error {
			outcomes[i] = p.fetcher.Head(groupCtx, candidates[i])
			return nil
		})
	}
	group.Wait()

	if err := ctx.Err(); err != nil {
		return resolver.ResolvedTarget{}, canceled(err)
	}

	results := probeResults{}
	for i, outcome := range outcomes {
		if outcome.Kind == fetcher.Success {
			return candidates[i], nil
		}

		results.add(outcome)
	}

	return resolver.ResolvedTarget{}, results.exhausted()
}

type probeResults struct {
	answeredMissing bool
	lastFailure     *fetcher.FetchOutcome
}

func (results *probeResults) add(outcome fetcher.FetchOutcome) {
	if outcome.Kind == fetcher.NotFound {
		results.answeredMissing = true
		return
	}

	results.lastFailure = &outcome
}

// An origin that never answered is not evidence that the image is missing.
func (results *probeResults) exhausted() error {
	if !results.answeredMissing && results.lastFailure != nil {
		return &TransientError{*results.lastFailure}
	}

	return ErrNoExtensionFound
}

func canceled(err error) error {
	return &TransientError{fetcher.Failed(fetcher.ReasonCanceled, err)}
}

// TransientError is returned when no candidate could be confirmed
// because the origin could not be reached.
type TransientError struct {
	Outcome fetcher.FetchOutcome
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("extension probe failed (%s): %v", e.Outcome.Reason, e.Outcome.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Outcome.Err
}

var ErrNoExtensionFound = errors.New("no candidate extension found on origin")
