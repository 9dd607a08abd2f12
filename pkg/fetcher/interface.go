package fetcher

import (
	"context"

	"github.com/thebartekbanach/imgurproxy/pkg/resolver"
)

//go:generate mockgen -destination=mocks/mock_fetcher.go github.com/thebartekbanach/imgurproxy/pkg/fetcher Fetcher

// Fetcher performs exactly one attempt against the origin per call.
// Retries, if any, belong to the caller.
type Fetcher interface {
	Fetch(ctx context.Context, target resolver.ResolvedTarget) FetchOutcome

	// Head checks existence without transferring the body.
	Head(ctx context.Context, target resolver.ResolvedTarget) FetchOutcome
}

type OutcomeKind int

const (
	Success OutcomeKind = iota + 1
	NotFound
	TransientFailure
)

func (kind OutcomeKind) String() string {
	switch kind {
	case Success:
		return "success"
	case NotFound:
		return "not-found"
	case TransientFailure:
		return "transient-failure"
	default:
		return "unknown"
	}
}

type FailureReason string

const (
	ReasonTimeout          FailureReason = "timeout"
	ReasonNetwork          FailureReason = "network"
	ReasonUnexpectedStatus FailureReason = "unexpected-status"
	ReasonCanceled         FailureReason = "canceled"
	ReasonOversize         FailureReason = "oversize"
)

type FetchOutcome struct {
	Kind OutcomeKind

	// populated on Success only
	Body        []byte
	ContentType string
	Length      int64

	// populated on TransientFailure only
	Reason FailureReason
	Err    error

	StatusCode int
}

func Succeeded(statusCode int, body []byte, contentType string) FetchOutcome {
	return FetchOutcome{
		Kind:        Success,
		Body:        body,
		ContentType: contentType,
		Length:      int64(len(body)),
		StatusCode:  statusCode,
	}
}

func Missing(statusCode int) FetchOutcome {
	return FetchOutcome{
		Kind:       NotFound,
		StatusCode: statusCode,
	}
}

func Failed(reason FailureReason, err error) FetchOutcome {
	return FetchOutcome{
		Kind:   TransientFailure,
		Reason: reason,
		Err:    err,
	}
}
