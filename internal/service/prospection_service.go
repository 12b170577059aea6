package service

import (
	"context"
	"fmt"
	"time"

	"prospec-live/internal/doorstate"
	"prospec-live/internal/dto"
	"prospec-live/internal/entity"
	"prospec-live/internal/pkg/logger"
	"prospec-live/internal/pkg/mailer"
	"prospec-live/internal/repository/contract"
	"prospec-live/internal/repository/memory"
	"prospec-live/pkg/events"
	pktNats "prospec-live/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RoomBroadcaster pushes events to a building room. Implemented by the
// websocket hub.
type RoomBroadcaster interface {
	BroadcastRoom(room string, eventType string, payload interface{})
}

type IProspectionService interface {
	StartProspection(ctx context.Context, agentId uuid.UUID, req *dto.StartProspectionRequest) (*dto.StartProspectionResponse, error)
	CreateRequest(ctx context.Context, req *dto.CreateRequestBody, partnerEmail string) (*dto.RequestStatusResponse, error)
	GetRequestStatus(ctx context.Context, requestId uuid.UUID) (*dto.RequestStatusResponse, error)
	GetPendingForPartner(ctx context.Context, partnerId uuid.UUID) ([]*entity.InvitationRequest, error)
	HandleRequest(ctx context.Context, partnerId uuid.UUID, req *dto.HandleRequestBody) (*dto.RequestStatusResponse, error)
	CancelRequest(ctx context.Context, requesterId, requestId uuid.UUID) error
	GetBuilding(ctx context.Context, id uuid.UUID) (*dto.BuildingResponse, error)
	UpdateDoor(ctx context.Context, agentId uuid.UUID, req *dto.UpdateDoorRequest) (*dto.DoorResponse, error)
}

type prospectionService struct {
	buildingRepo   contract.BuildingRepository
	doorRepo       contract.DoorRepository
	invitationRepo contract.InvitationRepository
	requestCache   *memory.RequestCache
	machine        *doorstate.Machine
	hub            RoomBroadcaster
	natsPub        *pktNats.Publisher
	emailService   mailer.IEmailService
	logger         logger.ILogger
}

func NewProspectionService(
	buildingRepo contract.BuildingRepository,
	doorRepo contract.DoorRepository,
	invitationRepo contract.InvitationRepository,
	requestCache *memory.RequestCache,
	hub RoomBroadcaster,
	natsPub *pktNats.Publisher,
	emailService mailer.IEmailService,
	log logger.ILogger,
) IProspectionService {
	return &prospectionService{
		buildingRepo:   buildingRepo,
		doorRepo:       doorRepo,
		invitationRepo: invitationRepo,
		requestCache:   requestCache,
		machine:        doorstate.New(nil),
		hub:            hub,
		natsPub:        natsPub,
		emailService:   emailService,
		logger:         log,
	}
}

// StartProspection opens a session on a building. SOLO sessions claim the
// building immediately; DUO sessions create an invitation request that stays
// PENDING until the partner answers.
func (s *prospectionService) StartProspection(ctx context.Context, agentId uuid.UUID, req *dto.StartProspectionRequest) (*dto.StartProspectionResponse, error) {
	building, err := s.buildingRepo.FindById(ctx, req.BuildingId)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Building not found")
	}

	building.ProspectingMode = entity.ProspectingMode(req.Mode)
	s.assignAgent(building, agentId)

	if req.Mode == string(entity.ModeSolo) {
		if err := s.ensureDoors(ctx, building); err != nil {
			return nil, err
		}
		if err := s.buildingRepo.Update(ctx, building); err != nil {
			return nil, err
		}
		s.logger.Info("ProspectionService", "Solo session started", map[string]interface{}{
			"building_id": building.Id, "agent_id": agentId,
		})
		return &dto.StartProspectionResponse{BuildingId: building.Id, Mode: req.Mode}, nil
	}

	if req.PartnerId == uuid.Nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "A DUO session requires a partner")
	}
	if err := s.buildingRepo.Update(ctx, building); err != nil {
		return nil, err
	}

	res, err := s.CreateRequest(ctx, &dto.CreateRequestBody{
		BuildingId:     req.BuildingId,
		RequesterId:    agentId,
		RequesterEmail: req.RequesterEmail,
		PartnerId:      req.PartnerId,
	}, req.PartnerEmail)
	if err != nil {
		return nil, err
	}

	return &dto.StartProspectionResponse{
		BuildingId: building.Id,
		Mode:       req.Mode,
		RequestId:  &res.RequestId,
		Status:     res.Status,
	}, nil
}

// CreateRequest creates the duo invitation. At most one PENDING request may
// exist per (building, requester).
func (s *prospectionService) CreateRequest(ctx context.Context, req *dto.CreateRequestBody, partnerEmail string) (*dto.RequestStatusResponse, error) {
	existing, err := s.invitationRepo.FindPending(ctx, req.BuildingId, req.RequesterId)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fiber.NewError(fiber.StatusConflict, "A pending invitation already exists for this building")
	}

	request := &entity.InvitationRequest{
		Id:             uuid.New(),
		BuildingId:     req.BuildingId,
		RequesterId:    req.RequesterId,
		RequesterEmail: req.RequesterEmail,
		PartnerId:      req.PartnerId,
		Status:         entity.InvitationPending,
		CreatedAt:      time.Now(),
	}
	if err := s.invitationRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.InvitationCreated, map[string]interface{}{
		"requestId":   request.Id,
		"buildingId":  request.BuildingId,
		"requesterId": request.RequesterId,
		"partnerId":   request.PartnerId,
	})

	if partnerEmail != "" {
		building, _ := s.buildingRepo.FindById(ctx, req.BuildingId)
		address := ""
		if building != nil {
			address = building.Address
		}
		// Fire and forget; a failed mail must not fail the invitation.
		go func() {
			if err := s.emailService.SendInvitation(partnerEmail, req.RequesterId.String(), address); err != nil {
				s.logger.Warn("ProspectionService", "Invitation email failed", map[string]interface{}{
					"request_id": request.Id, "error": err.Error(),
				})
			}
		}()
	}

	return &dto.RequestStatusResponse{RequestId: request.Id, Status: string(request.Status)}, nil
}

// GetRequestStatus answers the client's 2-second poll. Resolved requests are
// served from the in-memory cache.
func (s *prospectionService) GetRequestStatus(ctx context.Context, requestId uuid.UUID) (*dto.RequestStatusResponse, error) {
	if cached, found := s.requestCache.Get(requestId.String()); found {
		return &dto.RequestStatusResponse{RequestId: cached.Id, Status: string(cached.Status)}, nil
	}

	request, err := s.invitationRepo.FindById(ctx, requestId)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Invitation request not found")
	}
	if request.Status.Terminal() {
		s.requestCache.Save(request)
	}
	return &dto.RequestStatusResponse{RequestId: request.Id, Status: string(request.Status)}, nil
}

func (s *prospectionService) GetPendingForPartner(ctx context.Context, partnerId uuid.UUID) ([]*entity.InvitationRequest, error) {
	return s.invitationRepo.FindByPartner(ctx, partnerId, entity.InvitationPending)
}

// HandleRequest is the partner's answer. Accepting assigns the partner to the
// building, generates its doors and notifies the requester's room; terminal
// states are immutable.
func (s *prospectionService) HandleRequest(ctx context.Context, partnerId uuid.UUID, req *dto.HandleRequestBody) (*dto.RequestStatusResponse, error) {
	request, err := s.invitationRepo.FindById(ctx, req.RequestId)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Invitation request not found")
	}
	if request.PartnerId != partnerId {
		return nil, fiber.NewError(fiber.StatusForbidden, "This invitation is addressed to another agent")
	}
	if request.Status.Terminal() {
		return nil, fiber.NewError(fiber.StatusConflict, fmt.Sprintf("Invitation already %s", request.Status))
	}

	now := time.Now()
	request.ResolvedAt = &now

	if req.Action == "accept" {
		request.Status = entity.InvitationAccepted
	} else {
		request.Status = entity.InvitationRefused
	}

	if err := s.invitationRepo.Update(ctx, request); err != nil {
		return nil, err
	}
	s.requestCache.Save(request)

	if request.Status == entity.InvitationAccepted {
		building, err := s.buildingRepo.FindById(ctx, request.BuildingId)
		if err != nil {
			return nil, err
		}
		if building != nil {
			s.assignAgent(building, partnerId)
			if err := s.ensureDoors(ctx, building); err != nil {
				return nil, err
			}
			if err := s.buildingRepo.Update(ctx, building); err != nil {
				return nil, err
			}
		}

		s.hub.BroadcastRoom(request.BuildingId.String(), string(events.InvitationAccepted), map[string]interface{}{
			"buildingId": request.BuildingId,
			"partnerId":  partnerId,
		})
		s.publishEvent(ctx, events.InvitationAccepted, map[string]interface{}{
			"requestId":  request.Id,
			"buildingId": request.BuildingId,
			"partnerId":  partnerId,
		})
	} else {
		s.publishEvent(ctx, events.InvitationRefused, map[string]interface{}{
			"requestId":  request.Id,
			"buildingId": request.BuildingId,
			"partnerId":  partnerId,
		})
	}

	if request.RequesterEmail != "" {
		building, _ := s.buildingRepo.FindById(ctx, request.BuildingId)
		address := ""
		if building != nil {
			address = building.Address
		}
		status := string(request.Status)
		go func() {
			if err := s.emailService.SendInvitationResolved(request.RequesterEmail, partnerId.String(), address, status); err != nil {
				s.logger.Warn("ProspectionService", "Resolution email failed", map[string]interface{}{
					"request_id": request.Id, "error": err.Error(),
				})
			}
		}()
	}

	s.logger.Info("ProspectionService", "Invitation resolved", map[string]interface{}{
		"request_id": request.Id, "status": request.Status,
	})
	return &dto.RequestStatusResponse{RequestId: request.Id, Status: string(request.Status)}, nil
}

// CancelRequest marks a PENDING request CANCELLED. A request the partner
// already resolved stays as resolved; the late cancel is a no-op.
func (s *prospectionService) CancelRequest(ctx context.Context, requesterId, requestId uuid.UUID) error {
	request, err := s.invitationRepo.FindById(ctx, requestId)
	if err != nil {
		return err
	}
	if request == nil {
		return fiber.NewError(fiber.StatusNotFound, "Invitation request not found")
	}
	if request.RequesterId != requesterId {
		return fiber.NewError(fiber.StatusForbidden, "Only the requester may cancel")
	}
	if request.Status.Terminal() {
		return nil
	}

	now := time.Now()
	request.Status = entity.InvitationCancelled
	request.ResolvedAt = &now
	if err := s.invitationRepo.Update(ctx, request); err != nil {
		return err
	}
	s.requestCache.Save(request)

	s.publishEvent(ctx, events.InvitationCancelled, map[string]interface{}{
		"requestId":  request.Id,
		"buildingId": request.BuildingId,
	})
	return nil
}

func (s *prospectionService) GetBuilding(ctx context.Context, id uuid.UUID) (*dto.BuildingResponse, error) {
	building, err := s.buildingRepo.FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if building == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Building not found")
	}

	doors, err := s.doorRepo.FindByBuilding(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &dto.BuildingResponse{
		Id:               building.Id,
		Address:          building.Address,
		TotalDoors:       building.TotalDoors,
		Floors:           building.Floors,
		ProspectingMode:  string(building.ProspectingMode),
		AssignedAgentIds: building.AssignedAgentIds,
	}
	for _, d := range doors {
		res.Doors = append(res.Doors, doorToResponse(d, d.PassageCount == doorstate.MaxPassages))
	}
	return res, nil
}

// UpdateDoor validates the transition, persists the door and pushes the
// updated payload to the building room so both duo partners converge.
func (s *prospectionService) UpdateDoor(ctx context.Context, agentId uuid.UUID, req *dto.UpdateDoorRequest) (*dto.DoorResponse, error) {
	door, err := s.doorRepo.FindById(ctx, req.Id)
	if err != nil {
		return nil, err
	}
	if door == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Door not found")
	}

	result, err := s.machine.Apply(*door, entity.DoorStatus(req.Status), req.Comment)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	updated := result.Door
	if err := s.doorRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}

	res := doorToResponse(&updated, result.FollowUpExhausted)

	s.hub.BroadcastRoom(updated.BuildingId.String(), string(events.DoorUpdated), res)
	s.publishEvent(ctx, events.DoorUpdated, map[string]interface{}{
		"doorId":       updated.Id,
		"buildingId":   updated.BuildingId,
		"status":       updated.Status,
		"passageCount": updated.PassageCount,
		"agentId":      agentId,
	})

	return &res, nil
}

// ensureDoors materializes the door grid the first time a building is opened.
func (s *prospectionService) ensureDoors(ctx context.Context, building *entity.Building) error {
	existing, err := s.doorRepo.FindByBuilding(ctx, building.Id)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	floors := building.Floors
	if floors < 1 {
		floors = 1
	}
	perFloor := building.TotalDoors / floors
	if perFloor < 1 {
		perFloor = 1
	}

	doors := make([]*entity.Door, 0, building.TotalDoors)
	for i := 0; i < building.TotalDoors; i++ {
		doors = append(doors, &entity.Door{
			Id:         uuid.New(),
			Numero:     fmt.Sprintf("%d", i+1),
			Floor:      i / perFloor,
			Status:     entity.StatusNonVisite,
			BuildingId: building.Id,
			CreatedAt:  time.Now(),
		})
	}
	return s.doorRepo.CreateBulk(ctx, doors)
}

func (s *prospectionService) assignAgent(building *entity.Building, agentId uuid.UUID) {
	for _, id := range building.AssignedAgentIds {
		if id == agentId {
			return
		}
	}
	building.AssignedAgentIds = append(building.AssignedAgentIds, agentId)
}

func (s *prospectionService) publishEvent(ctx context.Context, t events.EventType, data map[string]interface{}) {
	if s.natsPub == nil {
		return
	}
	if err := s.natsPub.Publish(ctx, events.New(t, data)); err != nil {
		s.logger.Warn("ProspectionService", "Event publish failed", map[string]interface{}{
			"type": t, "error": err.Error(),
		})
	}
}

func doorToResponse(d *entity.Door, exhausted bool) dto.DoorResponse {
	return dto.DoorResponse{
		Id:                d.Id,
		Numero:            d.Numero,
		Floor:             d.Floor,
		Status:            string(d.Status),
		PassageCount:      d.PassageCount,
		Comment:           d.Comment,
		BuildingId:        d.BuildingId,
		FollowUpExhausted: exhausted,
		UpdatedAt:         d.UpdatedAt,
	}
}
