// services/scheduler.go
package services

import (
	"log"
	"time"

	"duel-arena/realtime"

	"github.com/go-co-op/gocron/v2"
)

// requestTTL is how long a challenge may sit without collecting both
// moves before it is swept.
const requestTTL = 24 * time.Hour

// StartExpiryScheduler sweeps stale duel requests every minute. A
// request pending or half-played past the TTL is declined and both
// parties get refreshed request lists.
func (s *DuelService) StartExpiryScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			expired := s.Registry.ExpireBefore(time.Now().UTC().Add(-requestTTL))
			if len(expired) == 0 {
				return
			}
			log.Printf("[Scheduler] expired %d stale duel request(s)", len(expired))

			for _, view := range expired {
				s.Hub.Push(view.ChallengerID, realtime.Event{
					Type: realtime.EventChallengeResponse,
					Payload: map[string]any{
						"request_id":     view.ID,
						"decision":       "declined",
						"responder_name": "expired",
					},
				})
				s.pushRequestLists(view.ChallengerID, view.DefenderID)
			}
		}),
	)
}
