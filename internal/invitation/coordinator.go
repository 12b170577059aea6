package invitation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"prospec-live/internal/entity"
	"prospec-live/internal/pkg/logger"

	"github.com/google/uuid"
)

// ErrDuplicatePending rejects a second Send while one request is still
// outstanding for the same (building, requester) pair.
var ErrDuplicatePending = errors.New("invitation: a pending request already exists for this building")

// CoordinationError wraps a transport or server failure during send or poll.
// Polling stops when it occurs; the caller decides whether to retry.
type CoordinationError struct {
	Op  string // "send" or "poll"
	Err error
}

func (e *CoordinationError) Error() string {
	return fmt.Sprintf("invitation: %s failed: %v", e.Op, e.Err)
}

func (e *CoordinationError) Unwrap() error { return e.Err }

// Transport is the REST surface the coordinator talks to. Implemented over
// HTTP in this package and faked in tests.
type Transport interface {
	CreateRequest(ctx context.Context, buildingId, requesterId, partnerId uuid.UUID) (uuid.UUID, entity.InvitationStatus, error)
	RequestStatus(ctx context.Context, requestId uuid.UUID) (entity.InvitationStatus, error)
}

// Result is the terminal outcome delivered exactly once per handle.
type Result struct {
	Status entity.InvitationStatus
	Err    error
}

// Handle tracks one outstanding duo-invitation. Cancel is cooperative: it
// aborts the local poll loop and in-flight call, but cannot retract a request
// the server already resolved — a late cancel is a no-op.
type Handle struct {
	RequestId uuid.UUID

	done   chan Result
	cancel context.CancelFunc

	mu       sync.Mutex
	resolved bool
}

// Done delivers the terminal result once the server resolves the request, a
// poll fails, or the handle is cancelled.
func (h *Handle) Done() <-chan Result { return h.done }

// Cancel stops polling and marks the handle inert. Valid only while pending.
func (h *Handle) Cancel() {
	h.mu.Lock()
	already := h.resolved
	h.mu.Unlock()
	if already {
		return
	}
	h.cancel()
}

func (h *Handle) deliver(res Result) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.resolved {
		return false
	}
	h.resolved = true
	h.done <- res
	close(h.done)
	return true
}

// Coordinator manages duo-invitation requests on the agent side: send with a
// duplicate guard, poll on a fixed interval until terminal, cooperative
// cancellation.
type Coordinator struct {
	transport Transport
	interval  time.Duration
	logger    logger.ILogger

	mu      sync.Mutex
	pending map[pendingKey]*Handle
}

type pendingKey struct {
	buildingId  uuid.UUID
	requesterId uuid.UUID
}

func NewCoordinator(transport Transport, pollInterval time.Duration, log logger.ILogger) *Coordinator {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Coordinator{
		transport: transport,
		interval:  pollInterval,
		logger:    log,
		pending:   make(map[pendingKey]*Handle),
	}
}

// Send creates a duo-prospection request and starts the poll loop. Fails with
// ErrDuplicatePending while an earlier request for the same building by the
// same requester is still unresolved.
func (c *Coordinator) Send(ctx context.Context, buildingId, requesterId, partnerId uuid.UUID) (*Handle, error) {
	key := pendingKey{buildingId: buildingId, requesterId: requesterId}

	c.mu.Lock()
	if _, exists := c.pending[key]; exists {
		c.mu.Unlock()
		return nil, ErrDuplicatePending
	}
	// Reserve the slot before the network call so a concurrent Send for the
	// same key fails fast instead of racing the server.
	c.pending[key] = nil
	c.mu.Unlock()

	pollCtx, cancel := context.WithCancel(context.Background())

	requestId, status, err := c.transport.CreateRequest(ctx, buildingId, requesterId, partnerId)
	if err != nil {
		cancel()
		c.release(key)
		return nil, &CoordinationError{Op: "send", Err: err}
	}

	h := &Handle{
		RequestId: requestId,
		done:      make(chan Result, 1),
		cancel:    cancel,
	}

	c.mu.Lock()
	c.pending[key] = h
	c.mu.Unlock()

	if status.Terminal() {
		// Server resolved synchronously; nothing to poll.
		h.deliver(Result{Status: status})
		c.release(key)
		cancel()
		return h, nil
	}

	go c.pollLoop(pollCtx, key, h)
	return h, nil
}

// Poll is a one-shot read of the request status, bypassing the loop.
func (c *Coordinator) Poll(ctx context.Context, requestId uuid.UUID) (entity.InvitationStatus, error) {
	status, err := c.transport.RequestStatus(ctx, requestId)
	if err != nil {
		return "", &CoordinationError{Op: "poll", Err: err}
	}
	return status, nil
}

// pollLoop re-polls until a terminal state, a poll error, or cancellation.
// There is no cap on poll count: no server-side expiry is assumed, so the
// loop runs until one of the three exits.
func (c *Coordinator) pollLoop(ctx context.Context, key pendingKey, h *Handle) {
	defer c.release(key)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Local cancel. If the server resolved first the result already
			// won; deliver is then a no-op.
			h.deliver(Result{Status: entity.InvitationCancelled})
			return

		case <-ticker.C:
			status, err := c.transport.RequestStatus(ctx, h.RequestId)
			if err != nil {
				if ctx.Err() != nil {
					h.deliver(Result{Status: entity.InvitationCancelled})
					return
				}
				// Do not retry silently: a dead request must not look alive.
				c.logf("poll failed, stopping", h.RequestId, err)
				h.deliver(Result{Err: &CoordinationError{Op: "poll", Err: err}})
				return
			}
			if status.Terminal() {
				h.deliver(Result{Status: status})
				return
			}
		}
	}
}

func (c *Coordinator) release(key pendingKey) {
	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()
}

func (c *Coordinator) logf(msg string, requestId uuid.UUID, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn("InvitationCoordinator", msg, map[string]interface{}{
		"request_id": requestId.String(),
		"error":      err,
	})
}
