package implementation

import (
	"context"
	"errors"

	"prospec-live/internal/entity"
	"prospec-live/internal/mapper"
	"prospec-live/internal/model"
	"prospec-live/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TranscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TranscriptionMapper
}

func NewTranscriptionRepository(db *gorm.DB) contract.TranscriptionRepository {
	return &TranscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewTranscriptionMapper(),
	}
}

func (r *TranscriptionRepositoryImpl) Create(ctx context.Context, session *entity.TranscriptionSession) error {
	m := r.mapper.ToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.ToEntity(m)
	return nil
}

func (r *TranscriptionRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.TranscriptionSession, error) {
	var m model.TranscriptionSession
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *TranscriptionRepositoryImpl) FindByCommercial(ctx context.Context, commercialId uuid.UUID) ([]*entity.TranscriptionSession, error) {
	var models []*model.TranscriptionSession
	if err := r.db.WithContext(ctx).
		Where("commercial_id = ?", commercialId).
		Order("start_time desc").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
