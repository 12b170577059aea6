package service

import (
	"context"
	"sync"
	"testing"

	"prospec-live/internal/dto"
	"prospec-live/internal/entity"
	"prospec-live/internal/repository/memory"
	"prospec-live/pkg/events"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type svcNopLogger struct{}

func (svcNopLogger) Debug(string, string, map[string]interface{}) {}
func (svcNopLogger) Info(string, string, map[string]interface{})  {}
func (svcNopLogger) Warn(string, string, map[string]interface{})  {}
func (svcNopLogger) Error(string, string, map[string]interface{}) {}
func (svcNopLogger) Sync() error                                  { return nil }

type fakeBuildingRepo struct {
	mu        sync.Mutex
	buildings map[uuid.UUID]*entity.Building
}

func newFakeBuildingRepo() *fakeBuildingRepo {
	return &fakeBuildingRepo{buildings: make(map[uuid.UUID]*entity.Building)}
}

func (r *fakeBuildingRepo) Create(ctx context.Context, b *entity.Building) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.buildings[b.Id] = &cp
	return nil
}

func (r *fakeBuildingRepo) Update(ctx context.Context, b *entity.Building) error {
	return r.Create(ctx, b)
}

func (r *fakeBuildingRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.Building, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buildings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBuildingRepo) FindByAgent(ctx context.Context, agentId uuid.UUID) ([]*entity.Building, error) {
	return nil, nil
}

type fakeDoorRepo struct {
	mu    sync.Mutex
	doors map[uuid.UUID]*entity.Door
}

func newFakeDoorRepo() *fakeDoorRepo {
	return &fakeDoorRepo{doors: make(map[uuid.UUID]*entity.Door)}
}

func (r *fakeDoorRepo) CreateBulk(ctx context.Context, doors []*entity.Door) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range doors {
		cp := *d
		r.doors[d.Id] = &cp
	}
	return nil
}

func (r *fakeDoorRepo) Update(ctx context.Context, d *entity.Door) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *d
	r.doors[d.Id] = &cp
	return nil
}

func (r *fakeDoorRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.Door, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doors[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDoorRepo) FindByBuilding(ctx context.Context, buildingId uuid.UUID) ([]*entity.Door, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Door
	for _, d := range r.doors {
		if d.BuildingId == buildingId {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDoorRepo) CountByStatus(ctx context.Context, buildingId uuid.UUID, status entity.DoorStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, d := range r.doors {
		if d.BuildingId == buildingId && d.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeInvitationRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*entity.InvitationRequest
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{requests: make(map[uuid.UUID]*entity.InvitationRequest)}
}

func (r *fakeInvitationRepo) Create(ctx context.Context, req *entity.InvitationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.requests[req.Id] = &cp
	return nil
}

func (r *fakeInvitationRepo) Update(ctx context.Context, req *entity.InvitationRequest) error {
	return r.Create(ctx, req)
}

func (r *fakeInvitationRepo) FindById(ctx context.Context, id uuid.UUID) (*entity.InvitationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *fakeInvitationRepo) FindPending(ctx context.Context, buildingId, requesterId uuid.UUID) (*entity.InvitationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.BuildingId == buildingId && req.RequesterId == requesterId && req.Status == entity.InvitationPending {
			cp := *req
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeInvitationRepo) FindByPartner(ctx context.Context, partnerId uuid.UUID, status entity.InvitationStatus) ([]*entity.InvitationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.InvitationRequest
	for _, req := range r.requests {
		if req.PartnerId == partnerId && req.Status == status {
			cp := *req
			out = append(out, &cp)
		}
	}
	return out, nil
}

type recordedBroadcast struct {
	Room      string
	EventType string
	Payload   interface{}
}

type fakeHub struct {
	mu         sync.Mutex
	broadcasts []recordedBroadcast
}

func (h *fakeHub) BroadcastRoom(room string, eventType string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcasts = append(h.broadcasts, recordedBroadcast{room, eventType, payload})
}

func (h *fakeHub) all() []recordedBroadcast {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]recordedBroadcast(nil), h.broadcasts...)
}

type fakeMailer struct{}

func (fakeMailer) SendInvitation(string, string, string) error                 { return nil }
func (fakeMailer) SendInvitationResolved(string, string, string, string) error { return nil }

func newTestService(t *testing.T) (IProspectionService, *fakeBuildingRepo, *fakeDoorRepo, *fakeInvitationRepo, *fakeHub) {
	t.Helper()
	buildings := newFakeBuildingRepo()
	doors := newFakeDoorRepo()
	invitations := newFakeInvitationRepo()
	hub := &fakeHub{}
	svc := NewProspectionService(buildings, doors, invitations, memory.NewRequestCache(), hub, nil, fakeMailer{}, svcNopLogger{})
	return svc, buildings, doors, invitations, hub
}

func seedBuilding(t *testing.T, repo *fakeBuildingRepo, totalDoors, floors int) *entity.Building {
	t.Helper()
	b := &entity.Building{
		Id:         uuid.New(),
		Address:    "12 rue des Lilas",
		TotalDoors: totalDoors,
		Floors:     floors,
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func TestStartSoloGeneratesDoors(t *testing.T) {
	svc, buildings, doors, _, _ := newTestService(t)
	b := seedBuilding(t, buildings, 12, 3)
	agent := uuid.New()

	res, err := svc.StartProspection(context.Background(), agent, &dto.StartProspectionRequest{
		BuildingId: b.Id,
		Mode:       "SOLO",
	})
	require.NoError(t, err)
	assert.Nil(t, res.RequestId)

	generated, err := doors.FindByBuilding(context.Background(), b.Id)
	require.NoError(t, err)
	assert.Len(t, generated, 12)
	for _, d := range generated {
		assert.Equal(t, entity.StatusNonVisite, d.Status)
		assert.Zero(t, d.PassageCount)
	}

	stored, _ := buildings.FindById(context.Background(), b.Id)
	assert.Contains(t, stored.AssignedAgentIds, agent)
}

func TestDuplicatePendingInvitationRejected(t *testing.T) {
	svc, buildings, _, _, _ := newTestService(t)
	b := seedBuilding(t, buildings, 6, 2)
	requester, partner := uuid.New(), uuid.New()

	_, err := svc.CreateRequest(context.Background(), &dto.CreateRequestBody{
		BuildingId: b.Id, RequesterId: requester, PartnerId: partner,
	}, "")
	require.NoError(t, err)

	_, err = svc.CreateRequest(context.Background(), &dto.CreateRequestBody{
		BuildingId: b.Id, RequesterId: requester, PartnerId: partner,
	}, "")
	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusConflict, fiberErr.Code)
}

func TestAcceptAssignsPartnerAndNotifiesRoom(t *testing.T) {
	svc, buildings, doors, _, hub := newTestService(t)
	b := seedBuilding(t, buildings, 6, 2)
	requester, partner := uuid.New(), uuid.New()

	created, err := svc.CreateRequest(context.Background(), &dto.CreateRequestBody{
		BuildingId: b.Id, RequesterId: requester, PartnerId: partner,
	}, "")
	require.NoError(t, err)

	res, err := svc.HandleRequest(context.Background(), partner, &dto.HandleRequestBody{
		RequestId: created.RequestId,
		Action:    "accept",
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.InvitationAccepted), res.Status)

	stored, _ := buildings.FindById(context.Background(), b.Id)
	assert.Contains(t, stored.AssignedAgentIds, partner)

	generated, _ := doors.FindByBuilding(context.Background(), b.Id)
	assert.Len(t, generated, 6)

	broadcasts := hub.all()
	require.Len(t, broadcasts, 1)
	assert.Equal(t, b.Id.String(), broadcasts[0].Room)
	assert.Equal(t, string(events.InvitationAccepted), broadcasts[0].EventType)

	// Terminal states are immutable: a second answer is rejected.
	_, err = svc.HandleRequest(context.Background(), partner, &dto.HandleRequestBody{
		RequestId: created.RequestId,
		Action:    "refuse",
	})
	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusConflict, fiberErr.Code)
}

func TestHandleRequestWrongPartnerForbidden(t *testing.T) {
	svc, buildings, _, _, _ := newTestService(t)
	b := seedBuilding(t, buildings, 4, 1)

	created, err := svc.CreateRequest(context.Background(), &dto.CreateRequestBody{
		BuildingId: b.Id, RequesterId: uuid.New(), PartnerId: uuid.New(),
	}, "")
	require.NoError(t, err)

	_, err = svc.HandleRequest(context.Background(), uuid.New(), &dto.HandleRequestBody{
		RequestId: created.RequestId,
		Action:    "accept",
	})
	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusForbidden, fiberErr.Code)
}

func TestCancelAfterResolutionIsNoOp(t *testing.T) {
	svc, buildings, _, invitations, _ := newTestService(t)
	b := seedBuilding(t, buildings, 4, 1)
	requester, partner := uuid.New(), uuid.New()

	created, err := svc.CreateRequest(context.Background(), &dto.CreateRequestBody{
		BuildingId: b.Id, RequesterId: requester, PartnerId: partner,
	}, "")
	require.NoError(t, err)

	_, err = svc.HandleRequest(context.Background(), partner, &dto.HandleRequestBody{
		RequestId: created.RequestId, Action: "refuse",
	})
	require.NoError(t, err)

	// The partner's answer already won; the late cancel changes nothing.
	require.NoError(t, svc.CancelRequest(context.Background(), requester, created.RequestId))

	stored, _ := invitations.FindById(context.Background(), created.RequestId)
	assert.Equal(t, entity.InvitationRefused, stored.Status)
}

func TestUpdateDoorBroadcastsAndIncrements(t *testing.T) {
	svc, buildings, doors, _, hub := newTestService(t)
	b := seedBuilding(t, buildings, 4, 1)

	door := &entity.Door{Id: uuid.New(), Numero: "2", Status: entity.StatusNonVisite, BuildingId: b.Id}
	require.NoError(t, doors.CreateBulk(context.Background(), []*entity.Door{door}))

	res, err := svc.UpdateDoor(context.Background(), uuid.New(), &dto.UpdateDoorRequest{
		Id:      door.Id,
		Status:  string(entity.StatusAbsent),
		Comment: "personne au 2e passage",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PassageCount)
	assert.False(t, res.FollowUpExhausted)

	stored, _ := doors.FindById(context.Background(), door.Id)
	assert.Equal(t, entity.StatusAbsent, stored.Status)
	assert.Equal(t, 1, stored.PassageCount)

	broadcasts := hub.all()
	require.Len(t, broadcasts, 1)
	assert.Equal(t, b.Id.String(), broadcasts[0].Room)
	assert.Equal(t, string(events.DoorUpdated), broadcasts[0].EventType)
}

func TestUpdateDoorRejectsUnknownStatus(t *testing.T) {
	svc, buildings, doors, _, hub := newTestService(t)
	b := seedBuilding(t, buildings, 4, 1)

	door := &entity.Door{Id: uuid.New(), Numero: "3", Status: entity.StatusNonVisite, BuildingId: b.Id}
	require.NoError(t, doors.CreateBulk(context.Background(), []*entity.Door{door}))

	_, err := svc.UpdateDoor(context.Background(), uuid.New(), &dto.UpdateDoorRequest{
		Id:     door.Id,
		Status: "BOGUS",
	})
	var fiberErr *fiber.Error
	require.ErrorAs(t, err, &fiberErr)
	assert.Equal(t, fiber.StatusBadRequest, fiberErr.Code)

	stored, _ := doors.FindById(context.Background(), door.Id)
	assert.Equal(t, entity.StatusNonVisite, stored.Status, "rejected edits must not mutate the door")
	assert.Empty(t, hub.all())
}
