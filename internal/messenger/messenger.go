// Package messenger delivers requests to the summarization host over an
// inter-context transport and retries transparently when the host process is
// restarting mid-call.
package messenger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Request is the wire shape accepted by the host. Type discriminates the
// operation; ContextID identifies the page context the request is for.
type Request struct {
	Type      string          `json:"type"`
	ContextID string          `json:"contextId"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Request types accepted by the host.
const (
	// RequestExtractAndSimplify runs the extraction and summarization
	// pipeline for the sender's page context.
	RequestExtractAndSimplify = "EXTRACT_AND_SIMPLIFY"
	// RequestAsk answers a follow-up question against the context's most
	// recent summary.
	RequestAsk = "ASK_QUESTION"
)

// Response is the host's reply.
type Response struct {
	Success bool   `json:"success"`
	Status  string `json:"status,omitempty"`
	Summary string `json:"summary,omitempty"`
	Source  string `json:"sourceKind,omitempty"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Transport is the raw request/response primitive the messenger wraps.
type Transport interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// restartSignals are substrings that mark a failure as restart-class: the
// counterparty was reloaded or its channel closed mid-call, as opposed to a
// logical application error.
var restartSignals = []string{
	"context invalidated",
	"message channel closed",
	"message port closed",
	"receiving end does not exist",
	"could not establish connection",
}

// IsRestartError reports whether err looks like the host restarting.
func IsRestartError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range restartSignals {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

const (
	// DefaultMaxAttempts includes the initial attempt.
	DefaultMaxAttempts = 5
	// DefaultBaseDelay seeds the exponential backoff.
	DefaultBaseDelay = 200 * time.Millisecond
)

// Messenger retries restart-class failures with exponential backoff
// (base << attempt). Any other error, and retry exhaustion, surface
// immediately with the underlying message.
type Messenger struct {
	Transport   Transport
	MaxAttempts int
	BaseDelay   time.Duration
	// Sleep is a test hook; nil means a context-aware wait on a timer.
	Sleep func(time.Duration)
}

// Send delivers req, retrying only restart-class failures.
func (m *Messenger) Send(ctx context.Context, req Request) (Response, error) {
	if m.Transport == nil {
		return Response{}, errors.New("messenger: no transport configured")
	}
	attempts := m.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	base := m.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := m.Transport.Send(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !IsRestartError(err) {
			return Response{}, err
		}
		lastErr = err
		if attempt == attempts-1 {
			break
		}
		delay := base << uint(attempt)
		log.Debug().Err(err).Dur("delay", delay).Int("attempt", attempt).
			Msg("host restarting; backing off")
		if err := m.wait(ctx, delay); err != nil {
			return Response{}, err
		}
	}
	return Response{}, fmt.Errorf("messenger: retries exhausted: %w", lastErr)
}

func (m *Messenger) wait(ctx context.Context, d time.Duration) error {
	if m.Sleep != nil {
		m.Sleep(d)
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
