package prober_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/thebartekbanach/imgurproxy/pkg/fetcher"
	mock_fetcher "github.com/thebartekbanach/imgurproxy/pkg/fetcher/mocks"
	"github.com/thebartekbanach/imgurproxy/pkg/prober"
	"github.com/thebartekbanach/imgurproxy/pkg/resolver"
)

func unprobedTarget(t *testing.T) resolver.ResolvedTarget {
	target, err := resolver.NewResolver(resolver.DefaultConfig()).Resolve("abc123")
	if err != nil {
		t.Fatalf("cannot resolve test target: %v", err)
	}

	return target
}

func TestProber_ShouldStopAtFirstExistingCandidate(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockFetcher := mock_fetcher.NewMockFetcher(mockCtrl)
	target := unprobedTarget(t)

	gomock.InOrder(
		mockFetcher.EXPECT().Head(gomock.Any(), target.WithExtension("jpg")).Return(fetcher.Missing(404)),
		mockFetcher.EXPECT().Head(gomock.Any(), target.WithExtension("png")).Return(fetcher.Succeeded(200, nil, "image/png")),
	)

	p := prober.NewProber(prober.DefaultConfig(), mockFetcher)
	result, err := p.Probe(context.Background(), target)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Extension != "png" || result.URL != "https://i.imgur.com/abc123.png" {
		t.Errorf("Expected png target, got: %+v", result)
	}
}

func TestProber_ShouldMakeExactlyNPlusOneChecks(t *testing.T) {
	candidates := []string{"jpg", "gif", "webp", "png", "mp4"}
	target := unprobedTarget(t)

	calls := int32(0)
	countingFetcher := headFunc(func(ctx context.Context, candidate resolver.ResolvedTarget) fetcher.FetchOutcome {
		atomic.AddInt32(&calls, 1)
		if candidate.Extension == "png" {
			return fetcher.Succeeded(200, nil, "image/png")
		}
		return fetcher.Missing(404)
	})

	p := prober.NewProber(prober.Config{Candidates: candidates}, countingFetcher)
	result, _ := p.Probe(context.Background(), target)

	if result.Extension != "png" {
		t.Errorf("Expected png extension, got: %q", result.Extension)
	}

	if calls != 4 {
		t.Errorf("Expected 4 existence checks, got %d", calls)
	}
}

func TestProber_ShouldNotProbeTargetWithKnownExtension(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockFetcher := mock_fetcher.NewMockFetcher(mockCtrl)
	target := unprobedTarget(t).WithExtension("gif")

	mockFetcher.EXPECT().Head(gomock.Any(), gomock.Any()).Times(0)

	p := prober.NewProber(prober.DefaultConfig(), mockFetcher)
	result, err := p.Probe(context.Background(), target)

	if err != nil || result != target {
		t.Errorf("Expected target to be returned unchanged, got %+v, %v", result, err)
	}
}

func TestProber_ShouldReturnErrNoExtensionFoundWhenAllCandidatesAreMissing(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockFetcher := mock_fetcher.NewMockFetcher(mockCtrl)

	mockFetcher.EXPECT().Head(gomock.Any(), gomock.Any()).Return(fetcher.Missing(404)).Times(5)

	p := prober.NewProber(prober.DefaultConfig(), mockFetcher)
	_, err := p.Probe(context.Background(), unprobedTarget(t))

	if err != prober.ErrNoExtensionFound {
		t.Errorf("Expected ErrNoExtensionFound, got: %v", err)
	}
}

func TestProber_ShouldReturnErrNoExtensionFoundWhenSomeCandidatesAnsweredMissing(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockFetcher := mock_fetcher.NewMockFetcher(mockCtrl)
	networkErr := errors.New("connection reset")

	mockFetcher.EXPECT().Head(gomock.Any(), gomock.Any()).Return(fetcher.Missing(404))
	mockFetcher.EXPECT().Head(gomock.Any(), gomock.Any()).Return(fetcher.Failed(fetcher.ReasonNetwork, networkErr)).Times(4)

	p := prober.NewProber(prober.DefaultConfig(), mockFetcher)
	_, err := p.Probe(context.Background(), unprobedTarget(t))

	if err != prober.ErrNoExtensionFound {
		t.Errorf("Expected ErrNoExtensionFound, got: %v", err)
	}
}

func TestProber_ShouldReportTransientErrorWhenOriginNeverAnswered(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockFetcher := mock_fetcher.NewMockFetcher(mockCtrl)
	timeoutErr := context.DeadlineExceeded

	mockFetcher.EXPECT().Head(gomock.Any(), gomock.Any()).Return(fetcher.Failed(fetcher.ReasonTimeout, timeoutErr)).Times(5)

	p := prober.NewProber(prober.DefaultConfig(), mockFetcher)
	_, err := p.Probe(context.Background(), unprobedTarget(t))

	var transientErr *prober.TransientError
	if !errors.As(err, &transientErr) {
		t.Fatalf("Expected TransientError, got: %v", err)
	}

	if transientErr.Outcome.Reason != fetcher.ReasonTimeout {
		t.Errorf("Expected timeout reason, got: %v", transientErr.Outcome.Reason)
	}
}

func TestProber_ShouldStopProbingWhenContextIsCanceled(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	mockFetcher := mock_fetcher.NewMockFetcher(mockCtrl)
	ctx, cancel := context.WithCancel(context.Background())

	mockFetcher.EXPECT().Head(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, target resolver.ResolvedTarget) fetcher.FetchOutcome {
			cancel()
			return fetcher.Missing(404)
		},
	).Times(1)

	p := prober.NewProber(prober.DefaultConfig(), mockFetcher)
	_, err := p.Probe(ctx, unprobedTarget(t))

	var transientErr *prober.TransientError
	if !errors.As(err, &transientErr) || transientErr.Outcome.Reason != fetcher.ReasonCanceled {
		t.Errorf("Expected canceled TransientError, got: %v", err)
	}
}

func TestProber_ParallelProbeShouldPreferEarlierCandidate(t *testing.T) {
	target := unprobedTarget(t)

	slowEarlierFetcher := headFunc(func(ctx context.Context, candidate resolver.ResolvedTarget) fetcher.FetchOutcome {
		switch candidate.Extension {
		case "png":
			time.Sleep(50 * time.Millisecond)
			return fetcher.Succeeded(200, nil, "image/png")
		case "gif":
			return fetcher.Succeeded(200, nil, "image/gif")
		default:
			return fetcher.Missing(404)
		}
	})

	config := prober.DefaultConfig()
	config.Parallel = true

	p := prober.NewProber(config, slowEarlierFetcher)
	result, err := p.Probe(context.Background(), target)

	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Extension != "png" {
		t.Errorf("Expected earlier png candidate to win, got: %q", result.Extension)
	}
}

func TestProber_ParallelProbeShouldReturnErrNoExtensionFound(t *testing.T) {
	missingFetcher := headFunc(func(ctx context.Context, candidate resolver.ResolvedTarget) fetcher.FetchOutcome {
		return fetcher.Missing(404)
	})

	config := prober.DefaultConfig()
	config.Parallel = true

	p := prober.NewProber(config, missingFetcher)
	_, err := p.Probe(context.Background(), unprobedTarget(t))

	if err != prober.ErrNoExtensionFound {
		t.Errorf("Expected ErrNoExtensionFound, got: %v", err)
	}
}

type headFunc func(ctx context.Context, target resolver.ResolvedTarget) fetcher.FetchOutcome

func (f headFunc) Head(ctx context.Context, target resolver.ResolvedTarget) fetcher.FetchOutcome {
	return f(ctx, target)
}

func (f headFunc) Fetch(ctx context.Context, target resolver.ResolvedTarget) fetcher.FetchOutcome {
	return fetcher.Failed(fetcher.ReasonNetwork, errors.New("unexpected fetch"))
}
