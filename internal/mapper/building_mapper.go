package mapper

import (
	"encoding/json"
	"time"

	"prospec-live/internal/entity"
	"prospec-live/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type BuildingMapper struct{}

func NewBuildingMapper() *BuildingMapper {
	return &BuildingMapper{}
}

func (m *BuildingMapper) ToEntity(b *model.Building) *entity.Building {
	if b == nil {
		return nil
	}

	var agents []uuid.UUID
	if len(b.AssignedAgentIds) > 0 {
		_ = json.Unmarshal(b.AssignedAgentIds, &agents)
	}

	var updatedAt *time.Time
	if !b.UpdatedAt.IsZero() {
		t := b.UpdatedAt
		updatedAt = &t
	}

	return &entity.Building{
		Id:               b.Id,
		Address:          b.Address,
		TotalDoors:       b.TotalDoors,
		Floors:           b.Floors,
		ProspectingMode:  entity.ProspectingMode(b.ProspectingMode),
		AssignedAgentIds: agents,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *BuildingMapper) ToModel(b *entity.Building) *model.Building {
	if b == nil {
		return nil
	}

	agents, _ := json.Marshal(b.AssignedAgentIds)

	var updatedAt time.Time
	if b.UpdatedAt != nil {
		updatedAt = *b.UpdatedAt
	}

	return &model.Building{
		Id:               b.Id,
		Address:          b.Address,
		TotalDoors:       b.TotalDoors,
		Floors:           b.Floors,
		ProspectingMode:  string(b.ProspectingMode),
		AssignedAgentIds: datatypes.JSON(agents),
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        updatedAt,
	}
}

func (m *BuildingMapper) ToEntities(buildings []*model.Building) []*entity.Building {
	entities := make([]*entity.Building, len(buildings))
	for i, b := range buildings {
		entities[i] = m.ToEntity(b)
	}
	return entities
}
