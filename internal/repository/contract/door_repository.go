package contract

import (
	"context"

	"prospec-live/internal/entity"

	"github.com/google/uuid"
)

type DoorRepository interface {
	CreateBulk(ctx context.Context, doors []*entity.Door) error
	Update(ctx context.Context, door *entity.Door) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.Door, error)
	FindByBuilding(ctx context.Context, buildingId uuid.UUID) ([]*entity.Door, error)
	CountByStatus(ctx context.Context, buildingId uuid.UUID, status entity.DoorStatus) (int64, error)
}
