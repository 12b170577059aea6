package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TranscriptionSession struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CommercialId uuid.UUID      `gorm:"type:uuid;not null;index"`
	BuildingId   *uuid.UUID     `gorm:"type:uuid;index"`
	StartTime    time.Time      `gorm:"not null"`
	EndTime      time.Time      `gorm:""`
	Transcript   string         `gorm:"type:text"`
	Stats        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

func (TranscriptionSession) TableName() string {
	return "transcription_sessions"
}
