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

type DoorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DoorMapper
}

func NewDoorRepository(db *gorm.DB) contract.DoorRepository {
	return &DoorRepositoryImpl{
		db:     db,
		mapper: mapper.NewDoorMapper(),
	}
}

func (r *DoorRepositoryImpl) CreateBulk(ctx context.Context, doors []*entity.Door) error {
	if len(doors) == 0 {
		return nil
	}
	models := r.mapper.ToModels(doors)
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*doors[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *DoorRepositoryImpl) Update(ctx context.Context, door *entity.Door) error {
	m := r.mapper.ToModel(door)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*door = *r.mapper.ToEntity(m)
	return nil
}

func (r *DoorRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.Door, error) {
	var m model.Door
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DoorRepositoryImpl) FindByBuilding(ctx context.Context, buildingId uuid.UUID) ([]*entity.Door, error) {
	var models []*model.Door
	if err := r.db.WithContext(ctx).
		Where("building_id = ?", buildingId).
		Order("floor asc, numero asc").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DoorRepositoryImpl) CountByStatus(ctx context.Context, buildingId uuid.UUID, status entity.DoorStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Door{}).
		Where("building_id = ? AND status = ?", buildingId, string(status)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
