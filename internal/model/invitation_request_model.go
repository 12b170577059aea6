package model

import (
	"time"

	"github.com/google/uuid"
)

type InvitationRequest struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BuildingId     uuid.UUID  `gorm:"type:uuid;not null;index"`
	RequesterId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	RequesterEmail string     `gorm:"type:varchar(255)"`
	PartnerId      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status         string     `gorm:"type:varchar(12);not null;default:'PENDING'"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	ResolvedAt     *time.Time `gorm:""`
}

func (InvitationRequest) TableName() string {
	return "invitation_requests"
}
