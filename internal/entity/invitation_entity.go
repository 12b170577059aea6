package entity

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus is the lifecycle of a duo-prospection request.
// PENDING is the only non-terminal state.
type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "PENDING"
	InvitationAccepted  InvitationStatus = "ACCEPTED"
	InvitationRefused   InvitationStatus = "REFUSED"
	InvitationCancelled InvitationStatus = "CANCELLED"
)

func (s InvitationStatus) Terminal() bool {
	return s != InvitationPending
}

type InvitationRequest struct {
	Id             uuid.UUID
	BuildingId     uuid.UUID
	RequesterId    uuid.UUID
	RequesterEmail string
	PartnerId      uuid.UUID
	Status         InvitationStatus
	CreatedAt      time.Time
	ResolvedAt     *time.Time
}
