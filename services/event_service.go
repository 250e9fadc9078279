package services

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"walk-tracker-system/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var validate = validator.New()

type EventService struct {
	DB           *gorm.DB
	Achievements *AchievementService
}

func NewEventService(db *gorm.DB, achievements *AchievementService) *EventService {
	return &EventService{DB: db, Achievements: achievements}
}

// CreateEvent — admin creates a group walk (draft or scheduled)
func (s *EventService) CreateEvent(c *fiber.Ctx) error {
	type Req struct {
		Name            string    `json:"name" validate:"required,max=120"`
		Description     string    `json:"description"`
		RouteName       string    `json:"route_name"`
		MeetingPoint    string    `json:"meeting_point"`
		DistanceKm      float64   `json:"distance_km" validate:"gte=0"`
		MaxParticipants int       `json:"max_participants" validate:"gte=0"`
		StartsAt        time.Time `json:"starts_at" validate:"required"`
		EndsAt          time.Time `json:"ends_at"`
		MainPhotoURL    string    `json:"main_photo_url"`
		Schedule        bool      `json:"schedule"` // true → auto-opens at StartsAt
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "validation failed", "cause": err.Error()})
	}

	status := "draft"
	if req.Schedule {
		status = "scheduled"
	}
	endsAt := req.EndsAt
	if endsAt.IsZero() {
		endsAt = req.StartsAt.Add(3 * time.Hour)
	}

	event := models.GroupEvent{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Slug:            s.uniqueSlug(req.Name),
		Description:     req.Description,
		RouteName:       req.RouteName,
		MeetingPoint:    req.MeetingPoint,
		DistanceKm:      req.DistanceKm,
		MaxParticipants: req.MaxParticipants,
		Status:          status,
		StartsAt:        req.StartsAt,
		EndsAt:          endsAt,
		MainPhotoURL:    req.MainPhotoURL,
	}
	if err := s.DB.Create(&event).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create event", "cause": err.Error()})
	}

	log.Printf("📅 Event created: %s (%s) starts %s", event.Name, event.Slug, event.StartsAt.Format(time.RFC3339))
	return c.Status(201).JSON(event)
}

// uniqueSlug slugifies the name and suffixes a short uuid fragment on collision
func (s *EventService) uniqueSlug(name string) string {
	base := slug.Make(name)
	var count int64
	s.DB.Model(&models.GroupEvent{}).Where("slug = ?", base).Count(&count)
	if count == 0 {
		return base
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
}

// GetAllEvents lists events, optionally filtered by status, newest first
func (s *EventService) GetAllEvents(c *fiber.Ctx) error {
	status := c.Query("status", "")
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	db := s.DB.Model(&models.GroupEvent{}).Limit(limit).Order("starts_at DESC")
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var events []models.GroupEvent
	if err := db.Find(&events).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to list events", "cause": err.Error()})
	}

	for i := range events {
		s.fillCounts(&events[i])
	}
	return c.JSON(events)
}

// GetEventBySlug returns one event with its participant counts
func (s *EventService) GetEventBySlug(c *fiber.Ctx) error {
	var event models.GroupEvent
	if err := s.DB.Where("slug = ?", c.Params("slug")).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event", "cause": err.Error()})
	}
	s.fillCounts(&event)
	return c.JSON(event)
}

func (s *EventService) fillCounts(event *models.GroupEvent) {
	s.DB.Model(&models.EventParticipation{}).
		Where("event_id = ?", event.ID).
		Count(&event.ParticipantsCount)
	if event.MaxParticipants > 0 {
		event.AvailableSlots = int64(event.MaxParticipants) - event.ParticipantsCount
		if event.AvailableSlots < 0 {
			event.AvailableSlots = 0
		}
	}
}

// JoinEvent registers the authenticated user for an open event. One row per
// (user, event) — re-joining is a no-op, not an error.
func (s *EventService) JoinEvent(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	eventID := c.Params("id")
	if eventID == "" {
		return c.Status(400).JSON(fiber.Map{"error": "event id required in URL"})
	}

	var event models.GroupEvent
	if err := s.DB.First(&event, "id = ?", eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event", "cause": err.Error()})
	}

	if event.Status != "open" && event.Status != "scheduled" {
		return c.Status(409).JSON(fiber.Map{"error": ErrEventClosed.Error()})
	}
	if event.MaxParticipants > 0 {
		var count int64
		s.DB.Model(&models.EventParticipation{}).Where("event_id = ?", event.ID).Count(&count)
		if count >= int64(event.MaxParticipants) {
			return c.Status(409).JSON(fiber.Map{"error": ErrEventFull.Error()})
		}
	}

	participation := models.EventParticipation{
		ID:             uuid.NewString(),
		EventID:        event.ID,
		ExternalUserID: userID,
		EventDate:      DayDate(event.StartsAt),
		Confirmed:      false,
	}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "external_user_id"}},
		DoNothing: true,
	}).Create(&participation).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to join event", "cause": err.Error()})
	}

	log.Printf("🐾 %s joined event %s", userID, event.Slug)
	return c.Status(201).JSON(fiber.Map{
		"message":  "joined event",
		"event_id": event.ID,
		"slug":     event.Slug,
	})
}

// ConfirmParticipation — admin marks a walker as actually having attended.
// Confirmed rows feed participation and constancy achievements, so evaluation
// is re-run for the walker right away.
func (s *EventService) ConfirmParticipation(c *fiber.Ctx) error {
	type Req struct {
		ExternalUserID string `json:"external_user_id" validate:"required,uuid"`
	}
	eventID := c.Params("id")

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "validation failed", "cause": err.Error()})
	}

	var participation models.EventParticipation
	err := s.DB.Where("event_id = ? AND external_user_id = ?", eventID, req.ExternalUserID).
		First(&participation).Error
	if err == gorm.ErrRecordNotFound {
		return c.Status(404).JSON(fiber.Map{"error": "participation not found"})
	}
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching participation", "cause": err.Error()})
	}

	if !participation.Confirmed {
		now := time.Now()
		participation.Confirmed = true
		participation.ConfirmedAt = &now
		if err := s.DB.Save(&participation).Error; err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "failed to confirm participation", "cause": err.Error()})
		}
		log.Printf("✅ Participation confirmed: %s at event %s", req.ExternalUserID, eventID)
	}

	newlyAwarded, err := s.Achievements.RunEvaluation(req.ExternalUserID)
	if err != nil {
		// Confirmation stands even if evaluation failed; the next pass catches up
		log.Printf("⚠️ Achievement evaluation after confirmation failed for %s: %v", req.ExternalUserID, err)
	}

	return c.JSON(fiber.Map{
		"message":        "participation confirmed",
		"newly_unlocked": newlyAwarded,
	})
}

// GetUserParticipations returns the authenticated user's event participations
func (s *EventService) GetUserParticipations(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var participations []models.EventParticipation
	if err := s.DB.Where("external_user_id = ?", userID).
		Preload("Event").
		Order("event_date DESC").
		Find(&participations).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to list participations", "cause": err.Error()})
	}
	return c.JSON(participations)
}

// UpdateEventStatus — admin moves an event through its lifecycle
func (s *EventService) UpdateEventStatus(c *fiber.Ctx) error {
	type Req struct {
		Status string `json:"status" validate:"required,oneof=draft scheduled open completed"`
	}

	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "cause": err.Error()})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "validation failed", "cause": err.Error()})
	}

	var event models.GroupEvent
	if err := s.DB.First(&event, "id = ?", c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "event not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error fetching event", "cause": err.Error()})
	}

	event.Status = req.Status
	if req.Status == "open" && event.PublishedAt == nil {
		now := time.Now()
		event.PublishedAt = &now
	}
	if err := s.DB.Save(&event).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to update event", "cause": err.Error()})
	}
	return c.JSON(event)
}
