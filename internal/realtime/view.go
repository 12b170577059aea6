package realtime

import (
	"encoding/json"
	"fmt"

	"prospec-live/internal/entity"
	"prospec-live/internal/pkg/logger"
	"prospec-live/pkg/events"

	"github.com/google/uuid"
)

// BuildingView is one agent's local copy of a building under prospection. It
// consumes the building's event channel and merges pushed changes into local
// state in arrival order: the most recently delivered event for a door is
// authoritative, there is no conflict reconciliation between duo partners.
type BuildingView struct {
	building entity.Building
	doors    map[uuid.UUID]entity.Door
	logger   logger.ILogger
}

func NewBuildingView(building entity.Building, doors []entity.Door, log logger.ILogger) *BuildingView {
	v := &BuildingView{
		building: building,
		doors:    make(map[uuid.UUID]entity.Door, len(doors)),
		logger:   log,
	}
	for _, d := range doors {
		v.doors[d.Id] = d
	}
	return v
}

// Apply merges one event received from the building room. Unknown event types
// are skipped rather than rejected, so the view survives protocol additions.
func (v *BuildingView) Apply(raw []byte) error {
	var env struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("malformed room event: %w", err)
	}

	switch events.EventType(env.Type) {
	case events.DoorUpdated:
		var door entity.Door
		if err := json.Unmarshal(env.Data, &door); err != nil {
			return fmt.Errorf("malformed door payload: %w", err)
		}
		v.applyDoor(door)

	case events.InvitationAccepted:
		var payload struct {
			BuildingId uuid.UUID `json:"buildingId"`
			PartnerId  uuid.UUID `json:"partnerId"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return fmt.Errorf("malformed invitation payload: %w", err)
		}
		v.assignPartner(payload.PartnerId)

	default:
		if v.logger != nil {
			v.logger.Debug("BuildingView", "Skipping unknown event type", map[string]interface{}{
				"type": env.Type,
			})
		}
	}
	return nil
}

// applyDoor replaces the local door wholesale with the pushed payload.
// Last received wins.
func (v *BuildingView) applyDoor(door entity.Door) {
	v.doors[door.Id] = door
	if v.logger != nil {
		v.logger.Debug("BuildingView", "Door merged", map[string]interface{}{
			"door_id": door.Id,
			"status":  door.Status,
		})
	}
}

func (v *BuildingView) assignPartner(partnerId uuid.UUID) {
	for _, id := range v.building.AssignedAgentIds {
		if id == partnerId {
			return
		}
	}
	v.building.AssignedAgentIds = append(v.building.AssignedAgentIds, partnerId)
}

// Door returns the current local copy of one door.
func (v *BuildingView) Door(id uuid.UUID) (entity.Door, bool) {
	d, ok := v.doors[id]
	return d, ok
}

// Doors returns the local door set. Order is unspecified.
func (v *BuildingView) Doors() []entity.Door {
	out := make([]entity.Door, 0, len(v.doors))
	for _, d := range v.doors {
		out = append(out, d)
	}
	return out
}

func (v *BuildingView) Building() entity.Building {
	return v.building
}
