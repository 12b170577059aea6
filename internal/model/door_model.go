package model

import (
	"time"

	"github.com/google/uuid"
)

type Door struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero       string    `gorm:"type:varchar(20);not null"`
	Floor        int       `gorm:"not null"`
	Status       string    `gorm:"type:varchar(20);not null;default:'NON_VISITE'"`
	PassageCount int       `gorm:"not null;default:0"`
	Comment      string    `gorm:"type:text"`
	BuildingId   uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Door) TableName() string {
	return "doors"
}
