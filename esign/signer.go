// Package esign abstracts the third-party e-mandate signing SDK behind an
// injected interface so flows never reach for an ambient global. Two
// implementations exist: the Digio HTTP adapter and a no-op adapter for
// environments (and tests) without the SDK.
package esign

import (
	"context"
	"errors"
)

// ErrUnavailable means the SDK cannot be driven at all; the flow falls back
// to opening the mandate authentication URL and treats that as completion.
var ErrUnavailable = errors.New("signing SDK unavailable")

// Options brand and route the embedded signing view.
type Options struct {
	Environment string
	LogoURL     string
	Theme       string
	RedirectURL string
}

// Signer drives an in-place mandate signing session. The signing outcome
// arrives asynchronously on the redirect return, not from Submit.
type Signer interface {
	// Init prepares the signing session with the configured options.
	Init(ctx context.Context) error

	// Submit hands the created mandate document to the SDK for signing.
	// Token is optional and may be empty.
	Submit(ctx context.Context, documentID, identifier, token string) error

	// Cancel abandons an in-flight signing session.
	Cancel(ctx context.Context, documentID string) error
}

// NoopSigner satisfies Signer without a real SDK; every call reports
// ErrUnavailable so flows exercise their fallback path. Calls are recorded
// for tests.
type NoopSigner struct {
	InitCalls   int
	SubmitCalls []string
	CancelCalls []string
}

func (s *NoopSigner) Init(context.Context) error {
	s.InitCalls++
	return ErrUnavailable
}

func (s *NoopSigner) Submit(_ context.Context, documentID, _, _ string) error {
	s.SubmitCalls = append(s.SubmitCalls, documentID)
	return ErrUnavailable
}

func (s *NoopSigner) Cancel(_ context.Context, documentID string) error {
	s.CancelCalls = append(s.CancelCalls, documentID)
	return nil
}
