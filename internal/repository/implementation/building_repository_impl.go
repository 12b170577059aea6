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

type BuildingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BuildingMapper
}

func NewBuildingRepository(db *gorm.DB) contract.BuildingRepository {
	return &BuildingRepositoryImpl{
		db:     db,
		mapper: mapper.NewBuildingMapper(),
	}
}

func (r *BuildingRepositoryImpl) Create(ctx context.Context, building *entity.Building) error {
	m := r.mapper.ToModel(building)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*building = *r.mapper.ToEntity(m)
	return nil
}

func (r *BuildingRepositoryImpl) Update(ctx context.Context, building *entity.Building) error {
	m := r.mapper.ToModel(building)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*building = *r.mapper.ToEntity(m)
	return nil
}

func (r *BuildingRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Building, error) {
	var m model.Building
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BuildingRepositoryImpl) FindByAgent(ctx context.Context, agentId uuid.UUID) ([]*entity.Building, error) {
	var models []*model.Building
	// jsonb containment over the assigned agent list
	if err := r.db.WithContext(ctx).
		Where("assigned_agent_ids @> ?", `["`+agentId.String()+`"]`).
		Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
