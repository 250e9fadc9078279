// handlers/event_routes.go
package handlers

import (
	"walk-tracker-system/middleware"
	"walk-tracker-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, eventService *services.EventService) {
	// 🔓 Public routes — *no user context*, but **still require Gateway auth**
	app.Get("/events", eventService.GetAllEvents)
	app.Get("/events/:slug", eventService.GetEventBySlug)

	// 🔐 Secured routes — require user context, enforced via middleware
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/events/:id/join", eventService.JoinEvent)
	secured.Get("/user/participations", eventService.GetUserParticipations)

	// Admin routes
	admin := app.Group("/s/admin", middleware.UserContextMiddleware())

	admin.Post("/events", eventService.CreateEvent)
	admin.Patch("/events/:id/status", eventService.UpdateEventStatus)
	admin.Post("/events/:id/confirm", eventService.ConfirmParticipation)
}
