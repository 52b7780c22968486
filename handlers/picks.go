package handlers

import (
	"survivor-picks-system/middleware"
	"survivor-picks-system/services"

	"github.com/gofiber/fiber/v2"
)

type PickHandler struct {
	Picks       *services.PickService
	Eligibility *services.EligibilityService
}

func SetupPickRoutes(app *fiber.App, picks *services.PickService, eligibility *services.EligibilityService) {
	h := &PickHandler{Picks: picks, Eligibility: eligibility}

	// 🔐 Player routes
	secured := app.Group("/", middleware.PlayerAuthMiddleware)
	secured.Get("/competitions/:id/eligible-teams", h.GetEligibleTeams)
	secured.Post("/picks", h.SetPick)
	secured.Post("/rounds/:id/withdraw", h.WithdrawPick)
	secured.Get("/rounds/:id/pick", h.GetCurrentPick)
}

// GetEligibleTeams returns the caller's still-choosable teams, running
// the auto-reset when the set would otherwise come back empty.
func (h *PickHandler) GetEligibleTeams(c *fiber.Ctx) error {
	userID, ok := requestUserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "unauthenticated"})
	}

	result, err := h.Eligibility.GetEligibleTeamsForUser(userID, c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"teams":          result.Teams,
		"reset_occurred": result.ResetOccurred,
		"reset_message":  result.ResetMessage,
	})
}

type setPickRequest struct {
	FixtureID string `json:"fixture_id"`
	Side      string `json:"side"`
}

func (h *PickHandler) SetPick(c *fiber.Ctx) error {
	userID, ok := requestUserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "unauthenticated"})
	}

	var req setPickRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.FixtureID == "" || req.Side == "" {
		return c.Status(400).JSON(fiber.Map{"error": "fixture_id and side are required"})
	}

	pick, err := h.Picks.SetPickForUser(userID, req.FixtureID, req.Side)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"pick": pick})
}

func (h *PickHandler) WithdrawPick(c *fiber.Ctx) error {
	userID, ok := requestUserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "unauthenticated"})
	}

	warning, err := h.Picks.WithdrawPickForUser(userID, c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	resp := fiber.Map{"message": "pick withdrawn"}
	if warning != "" {
		resp["warning"] = warning
	}
	return c.JSON(resp)
}

func (h *PickHandler) GetCurrentPick(c *fiber.Ctx) error {
	userID, ok := requestUserID(c)
	if !ok {
		return c.Status(401).JSON(fiber.Map{"error": "unauthenticated"})
	}

	pick, err := h.Picks.GetCurrentPickForUser(userID, c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"pick": pick})
}
