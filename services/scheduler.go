// services/scheduler.go
package services

import (
	"log"
	"time"

	"walk-tracker-system/models"

	"github.com/go-co-op/gocron/v2"
)

func (s *EventService) StartEventScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: walk events through their lifecycle
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := time.Now()

			// Open scheduled events whose start time has arrived
			var toOpen []models.GroupEvent
			err := s.DB.Where("status = ? AND starts_at <= ?", "scheduled", now).
				Find(&toOpen).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			for _, e := range toOpen {
				e.Status = "open"
				if e.PublishedAt == nil {
					e.PublishedAt = &now
				}
				if err := s.DB.Save(&e).Error; err != nil {
					log.Printf("[Scheduler] Failed to open event %s: %v", e.ID, err)
				} else {
					log.Printf("✅ Auto-opened event: %s", e.Name)
				}
			}

			// Complete open events whose end time has passed
			var toComplete []models.GroupEvent
			err = s.DB.Where("status = ? AND ends_at <= ?", "open", now).
				Find(&toComplete).Error
			if err != nil {
				log.Printf("[Scheduler] DB error: %v", err)
				return
			}
			for _, e := range toComplete {
				e.Status = "completed"
				if err := s.DB.Save(&e).Error; err != nil {
					log.Printf("[Scheduler] Failed to complete event %s: %v", e.ID, err)
				} else {
					log.Printf("🏁 Auto-completed event: %s", e.Name)
				}
			}
		}),
	)
}
