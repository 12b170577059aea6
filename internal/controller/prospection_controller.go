package controller

import (
	"prospec-live/internal/dto"
	"prospec-live/internal/pkg/serverutils"
	"prospec-live/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IProspectionController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	CreateRequest(ctx *fiber.Ctx) error
	RequestStatus(ctx *fiber.Ctx) error
	PendingRequests(ctx *fiber.Ctx) error
	HandleRequest(ctx *fiber.Ctx) error
	CancelRequest(ctx *fiber.Ctx) error
}

type prospectionController struct {
	prospectionService service.IProspectionService
}

func NewProspectionController(prospectionService service.IProspectionService) IProspectionController {
	return &prospectionController{
		prospectionService: prospectionService,
	}
}

func (c *prospectionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/prospection")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/start", c.Start)
	h.Post("/requests", c.CreateRequest)
	h.Get("/requests/pending", c.PendingRequests)
	h.Get("/requests/:id", c.RequestStatus)
	h.Post("/handle-request", c.HandleRequest)
	h.Delete("/requests/:id", c.CancelRequest)
}

func agentIdFromLocals(ctx *fiber.Ctx) uuid.UUID {
	agentIdStr, _ := ctx.Locals("agent_id").(string)
	agentId, _ := uuid.Parse(agentIdStr)
	return agentId
}

func agentEmailFromLocals(ctx *fiber.Ctx) string {
	email, _ := ctx.Locals("agent_email").(string)
	return email
}

func (c *prospectionController) Start(ctx *fiber.Ctx) error {
	agentId := agentIdFromLocals(ctx)

	var req dto.StartProspectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.RequesterEmail = agentEmailFromLocals(ctx)

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.prospectionService.StartProspection(ctx.Context(), agentId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success start prospection", res))
}

func (c *prospectionController) CreateRequest(ctx *fiber.Ctx) error {
	agentId := agentIdFromLocals(ctx)

	var req dto.CreateRequestBody
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.RequesterId = agentId
	if req.RequesterEmail == "" {
		req.RequesterEmail = agentEmailFromLocals(ctx)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.prospectionService.CreateRequest(ctx.Context(), &req, ctx.Query("partnerEmail"))
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create invitation", res))
}

func (c *prospectionController) RequestStatus(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request id")
	}

	res, err := c.prospectionService.GetRequestStatus(ctx.Context(), id)
	if err != nil {
		return err
	}

	// Polled every 2 seconds: keep the body to the bare {requestId, status}.
	return ctx.JSON(res)
}

func (c *prospectionController) PendingRequests(ctx *fiber.Ctx) error {
	agentId := agentIdFromLocals(ctx)

	res, err := c.prospectionService.GetPendingForPartner(ctx.Context(), agentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list pending invitations", res))
}

func (c *prospectionController) HandleRequest(ctx *fiber.Ctx) error {
	agentId := agentIdFromLocals(ctx)

	var req dto.HandleRequestBody
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.prospectionService.HandleRequest(ctx.Context(), agentId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success handle invitation", res))
}

func (c *prospectionController) CancelRequest(ctx *fiber.Ctx) error {
	agentId := agentIdFromLocals(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request id")
	}

	if err := c.prospectionService.CancelRequest(ctx.Context(), agentId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success cancel invitation", nil))
}
