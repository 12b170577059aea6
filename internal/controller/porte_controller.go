package controller

import (
	"prospec-live/internal/dto"
	"prospec-live/internal/pkg/serverutils"
	"prospec-live/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IPorteController interface {
	RegisterRoutes(r fiber.Router)
	Update(ctx *fiber.Ctx) error
	ShowBuilding(ctx *fiber.Ctx) error
}

type porteController struct {
	prospectionService service.IProspectionService
}

func NewPorteController(prospectionService service.IProspectionService) IPorteController {
	return &porteController{
		prospectionService: prospectionService,
	}
}

func (c *porteController) RegisterRoutes(r fiber.Router) {
	portes := r.Group("/portes")
	portes.Use(serverutils.JwtMiddleware)
	portes.Patch(":id", c.Update)

	buildings := r.Group("/buildings")
	buildings.Use(serverutils.JwtMiddleware)
	buildings.Get(":id", c.ShowBuilding)
}

// Update applies a door status edit. The transition is validated server-side
// and the updated payload is pushed to the building room.
func (c *porteController) Update(ctx *fiber.Ctx) error {
	agentId := agentIdFromLocals(ctx)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid door id")
	}

	var req dto.UpdateDoorRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.prospectionService.UpdateDoor(ctx.Context(), agentId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update door", res))
}

func (c *porteController) ShowBuilding(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid building id")
	}

	res, err := c.prospectionService.GetBuilding(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show building", res))
}
