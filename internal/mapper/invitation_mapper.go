package mapper

import (
	"prospec-live/internal/entity"
	"prospec-live/internal/model"
)

type InvitationMapper struct{}

func NewInvitationMapper() *InvitationMapper {
	return &InvitationMapper{}
}

func (m *InvitationMapper) ToEntity(r *model.InvitationRequest) *entity.InvitationRequest {
	if r == nil {
		return nil
	}
	return &entity.InvitationRequest{
		Id:             r.Id,
		BuildingId:     r.BuildingId,
		RequesterId:    r.RequesterId,
		RequesterEmail: r.RequesterEmail,
		PartnerId:      r.PartnerId,
		Status:         entity.InvitationStatus(r.Status),
		CreatedAt:      r.CreatedAt,
		ResolvedAt:     r.ResolvedAt,
	}
}

func (m *InvitationMapper) ToModel(r *entity.InvitationRequest) *model.InvitationRequest {
	if r == nil {
		return nil
	}
	return &model.InvitationRequest{
		Id:             r.Id,
		BuildingId:     r.BuildingId,
		RequesterId:    r.RequesterId,
		RequesterEmail: r.RequesterEmail,
		PartnerId:      r.PartnerId,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
		ResolvedAt:     r.ResolvedAt,
	}
}

func (m *InvitationMapper) ToEntities(requests []*model.InvitationRequest) []*entity.InvitationRequest {
	entities := make([]*entity.InvitationRequest, len(requests))
	for i, r := range requests {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
