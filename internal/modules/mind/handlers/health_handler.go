package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ludapartners/luda-mind/internal/core/llm"
)

type HealthHandler struct {
	llmService *llm.Service
}

func NewHealthHandler(llmService *llm.Service) *HealthHandler {
	return &HealthHandler{llmService: llmService}
}

func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"service":  "luda-mind",
		"provider": h.llmService.GetProviderName(),
	})
}
