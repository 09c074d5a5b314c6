// services/duel_service.go
package services

import (
	"errors"
	"log"

	"duel-arena/duel"
	"duel-arena/models"
	"duel-arena/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DuelService struct {
	DB       *gorm.DB
	Registry *duel.Registry
	Hub      *realtime.Hub
}

func NewDuelService(db *gorm.DB, hub *realtime.Hub) *DuelService {
	return &DuelService{
		DB:       db,
		Registry: duel.NewRegistry(),
		Hub:      hub,
	}
}

// statusForDuelError maps engine sentinels onto HTTP statuses. All of
// them are caller errors or lost races; nothing here retries.
func statusForDuelError(err error) int {
	switch {
	case errors.Is(err, duel.ErrNotFound),
		errors.Is(err, duel.ErrHistoryNotFound),
		errors.Is(err, duel.ErrUnknownUser):
		return fiber.StatusNotFound
	case errors.Is(err, duel.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, duel.ErrInvalidMove):
		return fiber.StatusBadRequest
	case errors.Is(err, duel.ErrDuplicateChallenge),
		errors.Is(err, duel.ErrAlreadyResolved),
		errors.Is(err, duel.ErrNotActive),
		errors.Is(err, duel.ErrAlreadyCompleted),
		errors.Is(err, duel.ErrDuplicateMove),
		errors.Is(err, duel.ErrAlreadyDestroyed),
		errors.Is(err, duel.ErrAlreadyUsed):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func respondDuelError(c *fiber.Ctx, err error) error {
	return c.Status(statusForDuelError(err)).JSON(fiber.Map{"error": err.Error()})
}

// CreateChallenge opens a duel over a post.
func (s *DuelService) CreateChallenge(c *fiber.Ctx) error {
	challenger, err := currentUser(s.DB, c)
	if err != nil {
		return respondUserLookup(c, err)
	}

	var body struct {
		DefenderID string    `json:"defender_id"`
		PostID     string    `json:"post_id"`
		Mode       duel.Mode `json:"mode"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	var defender models.DuelUser
	if err := s.DB.First(&defender, "id = ?", body.DefenderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return respondDuelError(c, duel.ErrUnknownUser)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "defender lookup failed"})
	}

	var post models.Post
	if err := s.DB.First(&post, "id = ? AND deleted = false", body.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "post lookup failed"})
	}

	view, err := s.Registry.CreateChallenge(snapshot(challenger), snapshot(&defender), post.ID, body.Mode)
	if err != nil {
		return respondDuelError(c, err)
	}

	s.Hub.Push(challenger.ID, realtime.Event{Type: realtime.EventChallengeSent, Payload: view})
	s.Hub.Push(defender.ID, realtime.Event{Type: realtime.EventChallengeReceived, Payload: view})
	s.pushRequestLists(view.ChallengerID, view.DefenderID)

	log.Printf("[DUEL] challenge %s: %s -> %s over post %s", view.ID, challenger.Username, defender.Username, post.ID)
	return c.Status(fiber.StatusCreated).JSON(view)
}

// RespondToChallenge lets the defender accept or decline.
func (s *DuelService) RespondToChallenge(c *fiber.Ctx) error {
	user, err := currentUser(s.DB, c)
	if err != nil {
		return respondUserLookup(c, err)
	}

	var body struct {
		Decision string `json:"decision"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Decision != "accepted" && body.Decision != "declined" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "decision must be accepted or declined"})
	}

	view, err := s.Registry.Respond(c.Params("id"), user.ID, body.Decision == "accepted")
	if err != nil {
		return respondDuelError(c, err)
	}

	s.Hub.Push(view.ChallengerID, realtime.Event{
		Type: realtime.EventChallengeResponse,
		Payload: fiber.Map{
			"request_id":     view.ID,
			"decision":       body.Decision,
			"responder_name": user.Username,
		},
	})
	s.pushRequestLists(view.ChallengerID, view.DefenderID)

	return c.JSON(view)
}

// SubmitMove records the caller's move and resolves the duel when it
// is the second one in.
func (s *DuelService) SubmitMove(c *fiber.Ctx) error {
	user, err := currentUser(s.DB, c)
	if err != nil {
		return respondUserLookup(c, err)
	}

	var body struct {
		Move duel.Move `json:"move"`
	}
	if err := c.BodyParser(&body); err != nil {
		return respondDuelError(c, duel.ErrInvalidMove)
	}

	result, err := s.Registry.SubmitMove(c.Params("id"), user.ID, body.Move)
	if err != nil {
		return respondDuelError(c, err)
	}

	if !result.Completed {
		// Opponent still to move: both sides get a refreshed list, so
		// the other party sees the submitted flag flip.
		s.pushRequestLists(result.Request.ChallengerID, result.Request.DefenderID)
		return c.JSON(fiber.Map{"completed": false})
	}

	entry, err := s.applyResolution(result.Resolution)
	if err != nil {
		// Ratings and ledger failed to persist; the duel itself is
		// resolved and gone from the registry. Surface loudly.
		log.Printf("[DUEL] FAILED to persist resolution for request %s: %v", result.Resolution.Request.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to persist duel outcome"})
	}

	payload := fiber.Map{
		"history_entry": entry,
		"outcome":       result.Resolution.Outcome,
		"rating_deltas": fiber.Map{
			"challenger": result.Resolution.ChallengerDelta,
			"defender":   result.Resolution.DefenderDelta,
		},
	}
	s.Hub.Push(entry.ChallengerID, realtime.Event{Type: realtime.EventDuelCompleted, Payload: payload})
	s.Hub.Push(entry.DefenderID, realtime.Event{Type: realtime.EventDuelCompleted, Payload: payload})
	s.pushRequestLists(entry.ChallengerID, entry.DefenderID)

	log.Printf("[DUEL] resolved %s: winner=%s (%+d/%+d)",
		entry.ID, entry.WinnerName, result.Resolution.ChallengerDelta, result.Resolution.DefenderDelta)

	return c.JSON(fiber.Map{"completed": true, "resolution": payload})
}

// applyResolution folds one engine resolution into the database:
// rating and record updates for both sides plus the ledger row, in one
// transaction. The engine fires a resolution exactly once per duel, so
// this runs exactly once per duel.
func (s *DuelService) applyResolution(res *duel.Resolution) (*models.DuelHistory, error) {
	req := res.Request

	entry := &models.DuelHistory{
		ID:             uuid.NewString(),
		ChallengerID:   req.ChallengerID,
		ChallengerName: req.ChallengerName,
		DefenderID:     req.DefenderID,
		DefenderName:   req.DefenderName,
		PostID:         req.PostID,
		WinnerID:       res.WinnerID,
		WinnerName:     res.WinnerName,
		ResolvedAt:     res.ResolvedAt,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, "id = ?", req.PostID).Error; err == nil {
			entry.OriginalPostContent = post.Content
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		challengerRec, defenderRec := duel.ResolutionRecords(res.WinnerID, req.ChallengerID)

		if err := applyRecord(tx, req.ChallengerID, res.ChallengerDelta, challengerRec.Wins, challengerRec.Losses); err != nil {
			return err
		}
		if err := applyRecord(tx, req.DefenderID, res.DefenderDelta, defenderRec.Wins, defenderRec.Losses); err != nil {
			return err
		}

		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func applyRecord(tx *gorm.DB, userID string, delta, wins, losses int) error {
	return tx.Model(&models.DuelUser{}).Where("id = ?", userID).
		Updates(map[string]any{
			"rating": gorm.Expr("rating + ?", delta),
			"wins":   gorm.Expr("wins + ?", wins),
			"losses": gorm.Expr("losses + ?", losses),
		}).Error
}

// GetRequests returns the caller's live duel requests, newest first.
func (s *DuelService) GetRequests(c *fiber.Ctx) error {
	user, err := currentUser(s.DB, c)
	if err != nil {
		return respondUserLookup(c, err)
	}
	return c.JSON(s.Registry.RequestsFor(user.ID))
}

// GetHistory returns the caller's resolved duels, newest first.
func (s *DuelService) GetHistory(c *fiber.Ctx) error {
	user, err := currentUser(s.DB, c)
	if err != nil {
		return respondUserLookup(c, err)
	}
	entries, err := historyFor(s.DB, user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load history"})
	}
	return c.JSON(entries)
}

func historyFor(db *gorm.DB, userID string) ([]models.DuelHistory, error) {
	var entries []models.DuelHistory
	err := db.Where("challenger_id = ? OR defender_id = ?", userID, userID).
		Order("resolved_at DESC").Find(&entries).Error
	return entries, err
}

func (s *DuelService) pushRequestLists(userIDs ...string) {
	for _, id := range userIDs {
		s.Hub.Push(id, realtime.Event{
			Type:    realtime.EventDuelRequests,
			Payload: s.Registry.RequestsFor(id),
		})
	}
}

func snapshot(u *models.DuelUser) duel.UserSnapshot {
	return duel.UserSnapshot{ID: u.ID, Username: u.Username, Rating: u.Rating}
}
