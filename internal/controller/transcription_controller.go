package controller

import (
	"prospec-live/internal/pkg/serverutils"
	"prospec-live/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ITranscriptionController interface {
	RegisterRoutes(r fiber.Router)
	History(ctx *fiber.Ctx) error
	Live(ctx *fiber.Ctx) error
}

type transcriptionController struct {
	transcriptionService service.ITranscriptionService
}

func NewTranscriptionController(transcriptionService service.ITranscriptionService) ITranscriptionController {
	return &transcriptionController{
		transcriptionService: transcriptionService,
	}
}

func (c *transcriptionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/transcriptions")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.History)
	h.Get("live/:sessionId", c.Live)
}

func (c *transcriptionController) History(ctx *fiber.Ctx) error {
	agentId := agentIdFromLocals(ctx)

	res, err := c.transcriptionService.GetHistory(ctx.Context(), agentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list transcription sessions", res))
}

// Live returns the paragraph view of a still-running session, for the
// supervisor screen that refreshes while an agent is canvassing.
func (c *transcriptionController) Live(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	formatted, stats, ok := c.transcriptionService.Formatted(sessionId)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "No live session with this id")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show live transcription", fiber.Map{
		"transcript": formatted,
		"stats":      stats,
	}))
}
