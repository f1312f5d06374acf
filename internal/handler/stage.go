package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vid2scene/api/internal/model"
	"github.com/vid2scene/api/pkg/response"
)

type StageHandler struct {
	stages []model.StageResponse
}

func NewStageHandler(stages []model.ProcessingStage) *StageHandler {
	return &StageHandler{stages: model.ToStageResponses(stages)}
}

// List handles GET /api/stages
func (h *StageHandler) List(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{"stages": h.stages})
}
