package dto

import (
	"time"

	"github.com/google/uuid"
)

type StartProspectionRequest struct {
	BuildingId   uuid.UUID `json:"buildingId" validate:"required"`
	Mode         string    `json:"mode" validate:"required,oneof=SOLO DUO"`
	PartnerId    uuid.UUID `json:"partnerId"`
	PartnerEmail string    `json:"partnerEmail" validate:"omitempty,email"`

	// Filled from the JWT, not from the request body.
	RequesterEmail string `json:"-"`
}

type StartProspectionResponse struct {
	BuildingId uuid.UUID  `json:"buildingId"`
	Mode       string     `json:"mode"`
	RequestId  *uuid.UUID `json:"requestId,omitempty"`
	Status     string     `json:"status,omitempty"`
}

type CreateRequestBody struct {
	BuildingId     uuid.UUID `json:"buildingId" validate:"required"`
	RequesterId    uuid.UUID `json:"requesterId"`
	RequesterEmail string    `json:"requesterEmail" validate:"omitempty,email"`
	PartnerId      uuid.UUID `json:"partnerId" validate:"required"`
}

type RequestStatusResponse struct {
	RequestId uuid.UUID `json:"requestId"`
	Status    string    `json:"status"`
}

type HandleRequestBody struct {
	RequestId uuid.UUID `json:"requestId" validate:"required"`
	Action    string    `json:"action" validate:"required,oneof=accept refuse"`
}

type UpdateDoorRequest struct {
	Id      uuid.UUID
	Status  string `json:"status" validate:"required"`
	Comment string `json:"comment"`
}

type DoorResponse struct {
	Id                uuid.UUID  `json:"id"`
	Numero            string     `json:"numero"`
	Floor             int        `json:"floor"`
	Status            string     `json:"status"`
	PassageCount      int        `json:"passageCount"`
	Comment           string     `json:"comment"`
	BuildingId        uuid.UUID  `json:"buildingId"`
	FollowUpExhausted bool       `json:"followUpExhausted"`
	UpdatedAt         *time.Time `json:"updatedAt"`
}

type BuildingResponse struct {
	Id               uuid.UUID      `json:"id"`
	Address          string         `json:"address"`
	TotalDoors       int            `json:"totalDoors"`
	Floors           int            `json:"floors"`
	ProspectingMode  string         `json:"prospectingMode"`
	AssignedAgentIds []uuid.UUID    `json:"assignedAgentIds"`
	Doors            []DoorResponse `json:"doors,omitempty"`
}
