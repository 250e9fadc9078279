// handlers/achievement_routes.go
package handlers

import (
	"errors"

	"walk-tracker-system/middleware"
	"walk-tracker-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAchievementRoutes(app *fiber.App, achievementService *services.AchievementService) {
	// 🔓 Public — the catalog is not user-specific (still behind Gateway auth)
	app.Get("/achievements", func(c *fiber.Ctx) error {
		defs, err := achievementService.ActiveDefinitions()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load achievement catalog",
				"cause": err.Error(),
			})
		}
		return c.JSON(defs)
	})

	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Get("/user/achievements", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		badges, err := achievementService.ListUserAchievements(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get achievements",
				"cause": err.Error(),
			})
		}
		if badges == nil {
			badges = []services.UserAchievementView{}
		}
		return c.JSON(badges)
	})

	// Re-runs the scan for the current user; idempotent, so safe to expose
	securedGroup.Post("/user/achievements/evaluate", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		newlyAwarded, err := achievementService.RunEvaluation(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "evaluation failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"newly_unlocked": newlyAwarded})
	})

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware())

	adminGroup.Post("/achievements/grant", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id" validate:"required,uuid"`
			Code   string `json:"code" validate:"required"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if req.UserID == "" || req.Code == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "user_id and code are required",
			})
		}

		if err := achievementService.GrantSpecial(req.UserID, req.Code); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "grant failed",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"message": "achievement granted",
			"user_id": req.UserID,
			"code":    req.Code,
		})
	})
}
