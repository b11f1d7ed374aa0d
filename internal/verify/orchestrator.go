// Package verify drives a single receipt verification attempt end to end:
// it sequences an identifier into a request against the verification
// endpoint and reconciles the outcome into a display state plus a user
// notification.
package verify

import (
	"context"
	"errors"
	"sync"

	"tally/internal/api"
	"tally/internal/notify"
)

//go:generate mockgen -source=orchestrator.go -destination=client_mock.go -package=verify
type Client interface {
	Verify(ctx context.Context, receiptID string) (*api.VerifyResponse, error)
}

// State is the lifecycle of the current attempt.
type State int

const (
	StateIdle State = iota
	StatePending
	StateResolved
	StateFailed
)

// ErrInFlight is returned when Verify is called while a previous attempt
// is still pending. Callers are expected to disable the triggering control
// instead of ever seeing this.
var ErrInFlight = errors.New("verification already in flight")

// fallbackMessage is shown when a transport failure carries no
// service-provided message.
const fallbackMessage = "Verification failed"

// Result is what the service said about a receipt. It is replaced
// wholesale on every attempt, never merged.
type Result struct {
	IsValid bool
	Message string
	Checks  map[string]bool
	Receipt map[string]any
}

type Orchestrator struct {
	client Client
	queue  *notify.Queue

	mu     sync.Mutex
	state  State
	result *Result
}

func NewOrchestrator(client Client, queue *notify.Queue) *Orchestrator {
	return &Orchestrator{
		client: client,
		queue:  queue,
	}
}

// Verify runs one verification attempt for receiptID. An empty identifier
// is a silent no-op. The previous attempt's result is cleared before the
// request goes out, so a failure never shows stale data.
//
// The outcome is surfaced through the notification queue: the service's
// message verbatim, with severity derived from is_valid, or an error
// notification on transport/server failure.
func (o *Orchestrator) Verify(ctx context.Context, receiptID string) error {
	if receiptID == "" {
		return nil
	}

	o.mu.Lock()
	if o.state == StatePending {
		o.mu.Unlock()
		return ErrInFlight
	}

	o.state = StatePending
	o.result = nil
	o.mu.Unlock()

	resp, err := o.client.Verify(ctx, receiptID)
	if err != nil {
		o.fail(err)
		return err
	}

	o.resolve(resp)

	return nil
}

// State reports the lifecycle state of the latest attempt.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state
}

// Result returns the latest resolved result, or nil when the last attempt
// failed or none has run yet.
func (o *Orchestrator) Result() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.result
}

func (o *Orchestrator) resolve(resp *api.VerifyResponse) {
	o.mu.Lock()
	o.state = StateResolved
	o.result = &Result{
		IsValid: resp.IsValid,
		Message: resp.Message,
		Checks:  resp.Checks,
		Receipt: resp.Receipt,
	}
	o.mu.Unlock()

	severity := notify.SeverityError
	if resp.IsValid {
		severity = notify.SeveritySuccess
	}

	o.queue.Post(resp.Message, severity)
}

func (o *Orchestrator) fail(err error) {
	o.mu.Lock()
	o.state = StateFailed
	o.result = nil
	o.mu.Unlock()

	message := fallbackMessage

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		message = apiErr.Message
	}

	o.queue.Post(message, notify.SeverityError)
}
