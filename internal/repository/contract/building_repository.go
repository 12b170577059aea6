package contract

import (
	"context"

	"prospec-live/internal/entity"

	"github.com/google/uuid"
)

type BuildingRepository interface {
	Create(ctx context.Context, building *entity.Building) error
	Update(ctx context.Context, building *entity.Building) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Building, error)
	FindByAgent(ctx context.Context, agentId uuid.UUID) ([]*entity.Building, error)
}
