package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Building struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Address          string         `gorm:"type:varchar(255);not null"`
	TotalDoors       int            `gorm:"not null"`
	Floors           int            `gorm:"not null"`
	ProspectingMode  string         `gorm:"type:varchar(10);not null;default:'SOLO'"`
	AssignedAgentIds datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
}

func (Building) TableName() string {
	return "buildings"
}
