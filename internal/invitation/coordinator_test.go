package invitation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"prospec-live/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// fakeTransport scripts the server's answers to successive polls.
type fakeTransport struct {
	mu        sync.Mutex
	requestId uuid.UUID
	createErr error
	statuses  []entity.InvitationStatus
	statusErr error
	polls     int
}

func (f *fakeTransport) CreateRequest(ctx context.Context, buildingId, requesterId, partnerId uuid.UUID) (uuid.UUID, entity.InvitationStatus, error) {
	if f.createErr != nil {
		return uuid.Nil, "", f.createErr
	}
	return f.requestId, entity.InvitationPending, nil
}

func (f *fakeTransport) RequestStatus(ctx context.Context, requestId uuid.UUID) (entity.InvitationStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return "", f.statusErr
	}
	i := f.polls
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	f.polls++
	return f.statuses[i], nil
}

func (f *fakeTransport) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func TestSendThenPollUntilAccepted(t *testing.T) {
	ft := &fakeTransport{
		requestId: uuid.New(),
		statuses: []entity.InvitationStatus{
			entity.InvitationPending,
			entity.InvitationPending,
			entity.InvitationAccepted,
		},
	}
	c := NewCoordinator(ft, 10*time.Millisecond, nil)

	h, err := c.Send(context.Background(), uuid.New(), uuid.New(), uuid.New())
	assert.NoError(t, err)

	select {
	case res := <-h.Done():
		assert.NoError(t, res.Err)
		assert.Equal(t, entity.InvitationAccepted, res.Status)
	case <-time.After(time.Second):
		t.Fatal("poll loop never resolved")
	}
	assert.Equal(t, 3, ft.pollCount(), "polling must stop at the terminal state")
}

func TestSecondSendForSameBuildingFails(t *testing.T) {
	ft := &fakeTransport{
		requestId: uuid.New(),
		statuses:  []entity.InvitationStatus{entity.InvitationPending},
	}
	c := NewCoordinator(ft, time.Hour, nil) // interval long enough to stay pending

	building, requester := uuid.New(), uuid.New()

	h, err := c.Send(context.Background(), building, requester, uuid.New())
	assert.NoError(t, err)
	defer h.Cancel()

	_, err = c.Send(context.Background(), building, requester, uuid.New())
	assert.ErrorIs(t, err, ErrDuplicatePending)

	// A different building is independent.
	h2, err := c.Send(context.Background(), uuid.New(), requester, uuid.New())
	assert.NoError(t, err)
	h2.Cancel()
}

func TestPollErrorStopsLoop(t *testing.T) {
	ft := &fakeTransport{
		requestId: uuid.New(),
		statusErr: fmt.Errorf("server unreachable"),
	}
	c := NewCoordinator(ft, 10*time.Millisecond, nil)

	h, err := c.Send(context.Background(), uuid.New(), uuid.New(), uuid.New())
	assert.NoError(t, err)

	select {
	case res := <-h.Done():
		var coord *CoordinationError
		assert.True(t, errors.As(res.Err, &coord))
		assert.Equal(t, "poll", coord.Op)
	case <-time.After(time.Second):
		t.Fatal("poll error was not surfaced")
	}

	polls := ft.pollCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, polls, ft.pollCount(), "loop must not retry after an error")
}

func TestCancelWhilePending(t *testing.T) {
	ft := &fakeTransport{
		requestId: uuid.New(),
		statuses:  []entity.InvitationStatus{entity.InvitationPending},
	}
	c := NewCoordinator(ft, 10*time.Millisecond, nil)

	h, err := c.Send(context.Background(), uuid.New(), uuid.New(), uuid.New())
	assert.NoError(t, err)

	h.Cancel()

	select {
	case res := <-h.Done():
		assert.Equal(t, entity.InvitationCancelled, res.Status)
	case <-time.After(time.Second):
		t.Fatal("cancel did not resolve the handle")
	}

	// Late cancel is a no-op.
	h.Cancel()
}

func TestCancelAfterResolutionIsNoOp(t *testing.T) {
	ft := &fakeTransport{
		requestId: uuid.New(),
		statuses:  []entity.InvitationStatus{entity.InvitationAccepted},
	}
	c := NewCoordinator(ft, 10*time.Millisecond, nil)

	h, err := c.Send(context.Background(), uuid.New(), uuid.New(), uuid.New())
	assert.NoError(t, err)

	res := <-h.Done()
	assert.Equal(t, entity.InvitationAccepted, res.Status)

	// The server's answer already won; cancelling now changes nothing.
	h.Cancel()
}

func TestSendErrorSurfacedAndSlotReleased(t *testing.T) {
	ft := &fakeTransport{createErr: fmt.Errorf("network down")}
	c := NewCoordinator(ft, 10*time.Millisecond, nil)

	building, requester := uuid.New(), uuid.New()

	_, err := c.Send(context.Background(), building, requester, uuid.New())
	var coord *CoordinationError
	assert.True(t, errors.As(err, &coord))
	assert.Equal(t, "send", coord.Op)

	// Failed send must not leave a phantom pending slot behind.
	ft.createErr = nil
	ft.requestId = uuid.New()
	ft.statuses = []entity.InvitationStatus{entity.InvitationAccepted}
	h, err := c.Send(context.Background(), building, requester, uuid.New())
	assert.NoError(t, err)
	res := <-h.Done()
	assert.Equal(t, entity.InvitationAccepted, res.Status)
}
