package entity

import (
	"time"

	"github.com/google/uuid"
)

type ProspectingMode string

const (
	ModeSolo ProspectingMode = "SOLO"
	ModeDuo  ProspectingMode = "DUO"
)

type Building struct {
	Id               uuid.UUID
	Address          string
	TotalDoors       int
	Floors           int
	ProspectingMode  ProspectingMode
	AssignedAgentIds []uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        *time.Time
}
