package mapper

import (
	"time"

	"prospec-live/internal/entity"
	"prospec-live/internal/model"
)

type DoorMapper struct{}

func NewDoorMapper() *DoorMapper {
	return &DoorMapper{}
}

func (m *DoorMapper) ToEntity(d *model.Door) *entity.Door {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	return &entity.Door{
		Id:           d.Id,
		Numero:       d.Numero,
		Floor:        d.Floor,
		Status:       entity.DoorStatus(d.Status),
		PassageCount: d.PassageCount,
		Comment:      d.Comment,
		BuildingId:   d.BuildingId,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *DoorMapper) ToModel(d *entity.Door) *model.Door {
	if d == nil {
		return nil
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	return &model.Door{
		Id:           d.Id,
		Numero:       d.Numero,
		Floor:        d.Floor,
		Status:       string(d.Status),
		PassageCount: d.PassageCount,
		Comment:      d.Comment,
		BuildingId:   d.BuildingId,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *DoorMapper) ToEntities(doors []*model.Door) []*entity.Door {
	entities := make([]*entity.Door, len(doors))
	for i, d := range doors {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

func (m *DoorMapper) ToModels(doors []*entity.Door) []*model.Door {
	models := make([]*model.Door, len(doors))
	for i, d := range doors {
		models[i] = m.ToModel(d)
	}
	return models
}
