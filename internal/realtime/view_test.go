package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"prospec-live/internal/doorstate"
	"prospec-live/internal/entity"
	"prospec-live/internal/invitation"
	"prospec-live/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomEvent(t *testing.T, eventType events.EventType, data interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"type": string(eventType),
		"data": data,
	})
	require.NoError(t, err)
	return raw
}

func TestDoorUpdatedLastWriteWins(t *testing.T) {
	building := entity.Building{Id: uuid.New(), ProspectingMode: entity.ModeDuo}
	door := entity.Door{Id: uuid.New(), Numero: "12", Status: entity.StatusNonVisite, BuildingId: building.Id}

	view := NewBuildingView(building, []entity.Door{door}, nil)

	// Two agents edit the same door; the later-arriving event is authoritative.
	first := door
	first.Status = entity.StatusVisite
	second := door
	second.Status = entity.StatusAbsent
	second.PassageCount = 1

	assert.NoError(t, view.Apply(roomEvent(t, events.DoorUpdated, first)))
	assert.NoError(t, view.Apply(roomEvent(t, events.DoorUpdated, second)))

	got, ok := view.Door(door.Id)
	require.True(t, ok)
	assert.Equal(t, entity.StatusAbsent, got.Status)
	assert.Equal(t, 1, got.PassageCount)
}

func TestUnknownEventTypeIsSkipped(t *testing.T) {
	view := NewBuildingView(entity.Building{Id: uuid.New()}, nil, nil)
	assert.NoError(t, view.Apply(roomEvent(t, "AGENT_LOCATION", map[string]interface{}{"lat": 48.85})))
}

func TestMalformedEventIsRejected(t *testing.T) {
	view := NewBuildingView(entity.Building{Id: uuid.New()}, nil, nil)
	assert.Error(t, view.Apply([]byte("{not json")))
}

func TestPartnerAssignedOnce(t *testing.T) {
	building := entity.Building{Id: uuid.New(), ProspectingMode: entity.ModeDuo}
	view := NewBuildingView(building, nil, nil)

	partner := uuid.New()
	payload := map[string]interface{}{"buildingId": building.Id, "partnerId": partner}

	assert.NoError(t, view.Apply(roomEvent(t, events.InvitationAccepted, payload)))
	assert.NoError(t, view.Apply(roomEvent(t, events.InvitationAccepted, payload)))

	assert.Equal(t, []uuid.UUID{partner}, view.Building().AssignedAgentIds)
}

// scriptedTransport answers PENDING twice then ACCEPTED, mirroring a partner
// who takes two poll intervals to respond.
type scriptedTransport struct {
	mu        sync.Mutex
	requestId uuid.UUID
	polls     int
}

func (s *scriptedTransport) CreateRequest(ctx context.Context, buildingId, requesterId, partnerId uuid.UUID) (uuid.UUID, entity.InvitationStatus, error) {
	return s.requestId, entity.InvitationPending, nil
}

func (s *scriptedTransport) RequestStatus(ctx context.Context, requestId uuid.UUID) (entity.InvitationStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	if s.polls < 3 {
		return entity.InvitationPending, nil
	}
	return entity.InvitationAccepted, nil
}

// TestDuoSessionConverges walks a full duo hand-off: agent A invites agent C,
// polls until the invitation is accepted, sees C assigned on the building, and
// then merges C's RDV edit with the passage counter advanced by one.
func TestDuoSessionConverges(t *testing.T) {
	building := entity.Building{Id: uuid.New(), ProspectingMode: entity.ModeDuo}
	door := entity.Door{Id: uuid.New(), Numero: "3B", Status: entity.StatusNonVisite, PassageCount: 1, BuildingId: building.Id}

	agentA, agentC := uuid.New(), uuid.New()
	view := NewBuildingView(building, []entity.Door{door}, nil)

	coord := invitation.NewCoordinator(&scriptedTransport{requestId: uuid.New()}, 5*time.Millisecond, nil)
	handle, err := coord.Send(context.Background(), building.Id, agentA, agentC)
	require.NoError(t, err)

	select {
	case res := <-handle.Done():
		require.NoError(t, res.Err)
		require.Equal(t, entity.InvitationAccepted, res.Status)
	case <-time.After(time.Second):
		t.Fatal("invitation never resolved")
	}

	require.NoError(t, view.Apply(roomEvent(t, events.InvitationAccepted, map[string]interface{}{
		"buildingId": building.Id,
		"partnerId":  agentC,
	})))
	assert.Contains(t, view.Building().AssignedAgentIds, agentC)

	// Agent C marks the door RDV on their side; the pushed payload carries the
	// already-advanced counter.
	machine := doorstate.New(nil)
	result, err := machine.Apply(door, entity.StatusRdv, "rdv jeudi 18h")
	require.NoError(t, err)

	require.NoError(t, view.Apply(roomEvent(t, events.DoorUpdated, result.Door)))

	got, ok := view.Door(door.Id)
	require.True(t, ok)
	assert.Equal(t, entity.StatusRdv, got.Status)
	assert.Equal(t, door.PassageCount+1, got.PassageCount)
}
