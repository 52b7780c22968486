package handlers

import (
	"errors"
	"log"

	"survivor-picks-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// respondServiceError maps engine errors onto the wire: business-rule
// violations keep their stable code, anything else stays opaque.
func respondServiceError(c *fiber.Ctx, err error) error {
	var coded *services.CodedError
	if errors.As(err, &coded) {
		return c.Status(statusForCode(coded.Code)).JSON(fiber.Map{
			"error": coded.Message,
			"code":  coded.Code,
		})
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	log.Printf("❌ [API] Internal error on %s: %v", c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func statusForCode(code string) int {
	switch code {
	case "ROUND_LOCKED", "TEAM_NOT_ELIGIBLE", "PLAYER_ELIMINATED",
		"TEAM_ALREADY_USED", "NO_PICK_TO_WITHDRAW", "ROUND_NOT_READY":
		return fiber.StatusConflict
	case "ENTRY_NOT_FOUND":
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadRequest
	}
}

func requestUserID(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals("user_id").(string)
	return userID, ok && userID != ""
}
