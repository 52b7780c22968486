package handlers

import (
	"survivor-picks-system/middleware"
	"survivor-picks-system/services"

	"github.com/gofiber/fiber/v2"
)

type ResultHandler struct {
	Results *services.ResultService
}

func SetupResultRoutes(app *fiber.App, results *services.ResultService) {
	h := &ResultHandler{Results: results}

	// 🔐 Admin gateway routes
	admin := app.Group("/admin", middleware.AdminAuthMiddleware())
	admin.Post("/fixtures/:id/result", h.ApplyFixtureResult)
	admin.Post("/rounds/:id/resolve", h.ForceResolveRound)

	// Live resolution feed for players watching a round settle
	app.Get("/rounds/:id/stream", middleware.SSEAuthMiddleware(), results.StreamRoundEventsSSE)
}

type applyResultRequest struct {
	Result string `json:"result"`
}

func (h *ResultHandler) ApplyFixtureResult(c *fiber.Ctx) error {
	var req applyResultRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Result == "" {
		return c.Status(400).JSON(fiber.Map{"error": "result is required"})
	}

	if err := h.Results.ApplyFixtureResult(c.Params("id"), req.Result); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "result recorded"})
}

// ForceResolveRound settles a round even when some fixtures still have no
// result. Idempotent — retriggering after a correction never
// double-deducts lives.
func (h *ResultHandler) ForceResolveRound(c *fiber.Ctx) error {
	if err := h.Results.ResolveRound(c.Params("id"), true); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "round resolution triggered"})
}
