package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ludapartners/luda-mind/internal/core/audit"
	"github.com/ludapartners/luda-mind/internal/modules/mind/models"
	"github.com/ludapartners/luda-mind/internal/modules/mind/services"
)

type AskHandler struct {
	askService *services.AskService
	auditSvc   *audit.Service
}

func NewAskHandler(askService *services.AskService, auditSvc *audit.Service) *AskHandler {
	return &AskHandler{
		askService: askService,
		auditSvc:   auditSvc,
	}
}

// Ask answers one natural-language question. Interpretation and execution
// failures still return HTTP 200 with success=false; only a malformed request
// gets a 4xx.
func (h *AskHandler) Ask(c *fiber.Ctx) error {
	var req models.AskRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question is required",
		})
	}

	resp := h.askService.Ask(c.Context(), &req)
	return c.JSON(resp)
}

// RecentLogs returns the newest query log entries, for debugging answer paths.
func (h *AskHandler) RecentLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	logs, err := h.auditSvc.Recent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch query logs",
		})
	}

	return c.JSON(fiber.Map{
		"count": len(logs),
		"logs":  logs,
	})
}
