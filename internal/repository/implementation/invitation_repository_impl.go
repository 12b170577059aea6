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

type InvitationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InvitationMapper
}

func NewInvitationRepository(db *gorm.DB) contract.InvitationRepository {
	return &InvitationRepositoryImpl{
		db:     db,
		mapper: mapper.NewInvitationMapper(),
	}
}

func (r *InvitationRepositoryImpl) Create(ctx context.Context, request *entity.InvitationRequest) error {
	m := r.mapper.ToModel(request)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*request = *r.mapper.ToEntity(m)
	return nil
}

func (r *InvitationRepositoryImpl) Update(ctx context.Context, request *entity.InvitationRequest) error {
	m := r.mapper.ToModel(request)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*request = *r.mapper.ToEntity(m)
	return nil
}

func (r *InvitationRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.InvitationRequest, error) {
	var m model.InvitationRequest
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *InvitationRepositoryImpl) FindPending(ctx context.Context, buildingId, requesterId uuid.UUID) (*entity.InvitationRequest, error) {
	var m model.InvitationRequest
	if err := r.db.WithContext(ctx).
		Where("building_id = ? AND requester_id = ? AND status = ?", buildingId, requesterId, string(entity.InvitationPending)).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *InvitationRepositoryImpl) FindByPartner(ctx context.Context, partnerId uuid.UUID, status entity.InvitationStatus) ([]*entity.InvitationRequest, error) {
	var models []*model.InvitationRequest
	if err := r.db.WithContext(ctx).
		Where("partner_id = ? AND status = ?", partnerId, string(status)).
		Order("created_at desc").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
