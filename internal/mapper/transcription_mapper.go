package mapper

import (
	"encoding/json"

	"prospec-live/internal/entity"
	"prospec-live/internal/model"

	"gorm.io/datatypes"
)

type TranscriptionMapper struct{}

func NewTranscriptionMapper() *TranscriptionMapper {
	return &TranscriptionMapper{}
}

func (m *TranscriptionMapper) ToEntity(s *model.TranscriptionSession) *entity.TranscriptionSession {
	if s == nil {
		return nil
	}

	var stats map[string]interface{}
	if len(s.Stats) > 0 {
		_ = json.Unmarshal(s.Stats, &stats)
	}

	return &entity.TranscriptionSession{
		Id:           s.Id,
		CommercialId: s.CommercialId,
		BuildingId:   s.BuildingId,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Transcript:   s.Transcript,
		Stats:        stats,
		CreatedAt:    s.CreatedAt,
	}
}

func (m *TranscriptionMapper) ToModel(s *entity.TranscriptionSession) *model.TranscriptionSession {
	if s == nil {
		return nil
	}

	stats, _ := json.Marshal(s.Stats)

	return &model.TranscriptionSession{
		Id:           s.Id,
		CommercialId: s.CommercialId,
		BuildingId:   s.BuildingId,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		Transcript:   s.Transcript,
		Stats:        datatypes.JSON(stats),
		CreatedAt:    s.CreatedAt,
	}
}

func (m *TranscriptionMapper) ToEntities(sessions []*model.TranscriptionSession) []*entity.TranscriptionSession {
	entities := make([]*entity.TranscriptionSession, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
