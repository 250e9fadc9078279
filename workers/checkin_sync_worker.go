// workers/checkin_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"walk-tracker-system/models"
	"walk-tracker-system/services"
	"walk-tracker-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// RemoteCheckIn is one confirmed attendance reported by the community service
// (organizers check walkers in on-site from the companion app).
type RemoteCheckIn struct {
	EventID        string    `json:"event_id"`
	ExternalUserID string    `json:"external_user_id"`
	EventDate      time.Time `json:"event_date"`
	CheckedInAt    time.Time `json:"checked_in_at"`
}

// CheckInSyncClient polls the community service and persists confirmations.
type CheckInSyncClient struct {
	BaseURL      string
	Token        string
	Achievements *services.AchievementService
}

func NewCheckInSyncClient(baseURL, token string, achievements *services.AchievementService) *CheckInSyncClient {
	return &CheckInSyncClient{
		BaseURL:      baseURL,
		Token:        token,
		Achievements: achievements,
	}
}

func (c *CheckInSyncClient) GetCheckIns(ctx context.Context, since time.Time) ([]RemoteCheckIn, error) {
	u, err := url.Parse(fmt.Sprintf("%s/api/v1/public/check-ins", c.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := utils.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call community service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("community service returned status %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		CheckIns []RemoteCheckIn `json:"check_ins"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode community service response: %w", err)
	}
	return response.CheckIns, nil
}

// PollCheckIns periodically pulls confirmed check-ins and upserts them as
// confirmed participations, then re-runs achievement evaluation for each
// affected walker (constancy tiers depend on confirmed rows only).
func PollCheckIns(ctx context.Context, client *CheckInSyncClient, pollInterval time.Duration) {
	log.Println("Starting check-in polling (community-service → event_participations)…")
	lastSyncTime := time.Now().UTC().Add(-24 * time.Hour)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Check-in polling stopped.")
			return
		case <-ticker.C:
			logTime := time.Now().UTC()

			checkIns, err := client.GetCheckIns(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ Error polling check-ins: %v", err)
				continue
			}
			if len(checkIns) == 0 {
				continue
			}

			rows := make([]models.EventParticipation, 0, len(checkIns))
			affected := make(map[string]bool)
			for _, ci := range checkIns {
				confirmedAt := ci.CheckedInAt
				rows = append(rows, models.EventParticipation{
					ID:             uuid.NewString(),
					EventID:        ci.EventID,
					ExternalUserID: ci.ExternalUserID,
					EventDate:      services.DayDate(ci.EventDate),
					Confirmed:      true,
					ConfirmedAt:    &confirmedAt,
				})
				affected[ci.ExternalUserID] = true
			}

			// Bulk upsert — walkers who pre-joined get their row confirmed,
			// walk-ups get a fresh confirmed row
			if err := client.Achievements.DB.Clauses(
				clause.OnConflict{
					Columns: []clause.Column{{Name: "event_id"}, {Name: "external_user_id"}},
					DoUpdates: clause.AssignmentColumns([]string{
						"confirmed",
						"confirmed_at",
						"event_date",
						"updated_at",
					}),
				},
			).Create(&rows).Error; err != nil {
				log.Printf("❌ Failed to upsert %d check-in(s): %v", len(rows), err)
				// Do NOT advance lastSyncTime on failure — retry same window next tick
				continue
			}

			lastSyncTime = logTime
			log.Printf("✅ Upserted %d check-in(s) for %d walker(s)", len(rows), len(affected))

			for userID := range affected {
				if _, err := client.Achievements.RunEvaluation(userID); err != nil {
					log.Printf("⚠️ Post-check-in evaluation failed for %s: %v", userID, err)
				}
			}
		}
	}
}
