package entity

import (
	"time"

	"github.com/google/uuid"
)

// DoorStatus is the closed set of prospecting outcomes for a single door.
// Values match the wire format used by the mobile clients.
type DoorStatus string

const (
	StatusNonVisite    DoorStatus = "NON_VISITE"
	StatusVisite       DoorStatus = "VISITE"
	StatusAbsent       DoorStatus = "ABSENT"
	StatusRefus        DoorStatus = "REFUS"
	StatusCurieux      DoorStatus = "CURIEUX"
	StatusRdv          DoorStatus = "RDV"
	StatusContratSigne DoorStatus = "CONTRAT_SIGNE"
)

type Door struct {
	Id           uuid.UUID
	Numero       string
	Floor        int
	Status       DoorStatus
	PassageCount int
	Comment      string
	BuildingId   uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
