// handlers/walk_routes.go
package handlers

import (
	"errors"
	"strconv"
	"time"

	"walk-tracker-system/middleware"
	"walk-tracker-system/models"
	"walk-tracker-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupWalkRoutes(app *fiber.App, statsService *services.StatsService, achievementService *services.AchievementService) {
	// 🔐 Secured routes — require user context (userID) forwarded by Gateway
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Post("/user/walks", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		type Req struct {
			DistanceKm   float64 `json:"distance_km"`
			WalkedOn     string  `json:"walked_on"` // YYYY-MM-DD, defaults to today
			DurationMins int     `json:"duration_mins"`
			DogName      string  `json:"dog_name"`
			Notes        string  `json:"notes"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		walkedOn := time.Now().UTC()
		if req.WalkedOn != "" {
			parsed, err := time.Parse("2006-01-02", req.WalkedOn)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "walked_on must be YYYY-MM-DD",
					"cause": err.Error(),
				})
			}
			walkedOn = parsed
		}

		stats, err := statsService.RecordWalk(services.WalkInput{
			ExternalUserID: userID,
			DistanceKm:     req.DistanceKm,
			WalkedOn:       walkedOn,
			DurationMins:   req.DurationMins,
			DogName:        req.DogName,
			Notes:          req.Notes,
		})
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidDistance), errors.Is(err, services.ErrInvalidDate):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			case errors.Is(err, services.ErrStatsConflict):
				// Another submission for the same user held the stats row — retry
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "concurrent submission in progress, please retry",
				})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to record walk",
					"cause": err.Error(),
				})
			}
		}

		// The walk is committed — a failed evaluation must not fail the submission
		newlyUnlocked, evalErr := achievementService.RunEvaluation(userID)
		if evalErr != nil {
			newlyUnlocked = nil
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"stats":          stats,
			"newly_unlocked": newlyUnlocked,
		})
	})

	securedGroup.Get("/user/stats", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var prog *models.UserStats
		var dbStats models.UserStats

		if err := statsService.DB.Where("external_user_id = ?", userID).First(&dbStats).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				var createErr error
				prog, createErr = statsService.EnsureStatsRecord(userID)
				if createErr != nil {
					return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
						"error": "failed to create stats record",
						"cause": createErr.Error(),
					})
				}
			} else {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "DB error fetching stats",
					"cause": err.Error(),
				})
			}
		} else {
			prog = &dbStats
		}

		// Confirmed attendances, for the progress panel
		var confirmed int64
		if err := statsService.DB.
			Model(&models.EventParticipation{}).
			Where("external_user_id = ? AND confirmed = ?", userID, true).
			Count(&confirmed).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to count participations",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"id":                prog.ID,
			"total_distance_km": prog.TotalDistanceKm,
			"total_walks":       prog.TotalWalks,
			"current_streak":    prog.CurrentStreak,
			"best_streak":       prog.BestStreak,
			"last_walk_date":    prog.LastWalkDate,
			"events_attended":   confirmed,
		})
	})

	securedGroup.Get("/user/walks", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))
		history, err := statsService.GetWalkHistory(userID, page, size)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get walk history",
				"cause": err.Error(),
			})
		}
		return c.JSON(history)
	})

	securedGroup.Get("/user/walks/recent", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		days, _ := strconv.Atoi(c.Query("days", "7"))
		walks, err := statsService.GetRecentWalks(userID, days)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get recent walks",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"walks": walks})
	})
}
