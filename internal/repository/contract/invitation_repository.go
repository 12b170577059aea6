package contract

import (
	"context"

	"prospec-live/internal/entity"

	"github.com/google/uuid"
)

type InvitationRepository interface {
	Create(ctx context.Context, request *entity.InvitationRequest) error
	Update(ctx context.Context, request *entity.InvitationRequest) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.InvitationRequest, error)
	// FindPending returns the outstanding request for (building, requester),
	// nil if none exists.
	FindPending(ctx context.Context, buildingId, requesterId uuid.UUID) (*entity.InvitationRequest, error)
	FindByPartner(ctx context.Context, partnerId uuid.UUID, status entity.InvitationStatus) ([]*entity.InvitationRequest, error)
}
