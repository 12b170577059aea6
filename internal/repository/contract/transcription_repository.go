package contract

import (
	"context"

	"prospec-live/internal/entity"

	"github.com/google/uuid"
)

type TranscriptionRepository interface {
	Create(ctx context.Context, session *entity.TranscriptionSession) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.TranscriptionSession, error)
	FindByCommercial(ctx context.Context, commercialId uuid.UUID) ([]*entity.TranscriptionSession, error)
}
