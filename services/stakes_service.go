// services/stakes_service.go
package services

import (
	"errors"
	"log"
	"strings"

	"duel-arena/duel"
	"duel-arena/models"
	"duel-arena/realtime"
	"duel-arena/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StakesService drives the post-duel privileges over history entries.
type StakesService struct {
	DB   *gorm.DB
	Hub  *realtime.Hub
	Feed *FeedService
}

func NewStakesService(db *gorm.DB, hub *realtime.Hub, feed *FeedService) *StakesService {
	return &StakesService{DB: db, Hub: hub, Feed: feed}
}

func (s *StakesService) loadEntry(id string) (*models.DuelHistory, error) {
	var entry models.DuelHistory
	if err := s.DB.First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, duel.ErrHistoryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// DestroyPost marks the duel's post deleted. Only the winning
// challenger may, exactly once per entry.
func (s *StakesService) DestroyPost(c *fiber.Ctx) error {
	user, err := currentUser(s.DB, c)
	if err != nil {
		return respondUserLookup(c, err)
	}

	entry, err := s.loadEntry(c.Params("id"))
	if err != nil {
		return respondDuelError(c, err)
	}
	if err := duel.AuthorizeDestroy(entry, user.ID); err != nil {
		return respondDuelError(c, err)
	}

	// The stake flag and the post removal commit together: a failed
	// removal must not consume the single-use privilege.
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Conditional update is the single-use gate: a lost race lands
		// here with zero rows and fails like any other second call.
		res := tx.Model(&models.DuelHistory{}).
			Where("id = ? AND post_destroyed = false", entry.ID).
			Update("post_destroyed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return duel.ErrAlreadyDestroyed
		}
		return tx.Model(&models.Post{}).Where("id = ?", entry.PostID).
			Update("deleted", true).Error
	})
	if err != nil {
		if errors.Is(err, duel.ErrAlreadyDestroyed) {
			return respondDuelError(c, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to destroy post"})
	}

	if url, err := utils.ArchiveDestroyedPost(c.Context(), entry.ID, entry.PostID, entry.OriginalPostContent); err != nil {
		log.Printf("[STAKES] archive of destroyed post %s failed: %v", entry.PostID, err)
	} else {
		log.Printf("[STAKES] destroyed post %s archived at %s", entry.PostID, url)
	}

	s.Hub.Broadcast(realtime.Event{
		Type:    realtime.EventPostDeleted,
		Payload: fiber.Map{"post_id": entry.PostID},
	})
	s.pushHistory(entry)

	return c.JSON(fiber.Map{"success": true, "post_id": entry.PostID})
}

// PostOnBehalf publishes a post authored as the duel's loser. Only the
// winner may, only when the challenger lost, exactly once per entry.
// The produced post is indistinguishable from the loser posting it
// themselves; that is the stake.
func (s *StakesService) PostOnBehalf(c *fiber.Ctx) error {
	user, err := currentUser(s.DB, c)
	if err != nil {
		return respondUserLookup(c, err)
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	content := strings.TrimSpace(body.Content)
	if content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "content is required"})
	}

	entry, err := s.loadEntry(c.Params("id"))
	if err != nil {
		return respondDuelError(c, err)
	}
	if err := duel.AuthorizeHijack(entry, user.ID); err != nil {
		return respondDuelError(c, err)
	}

	// Same contract as destroy: consuming the stake and inserting the
	// post commit together or not at all.
	loserID, loserName := duel.Loser(entry)
	var post *models.Post
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.DuelHistory{}).
			Where("id = ? AND hijack_used = false", entry.ID).
			Update("hijack_used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return duel.ErrAlreadyUsed
		}
		p, err := s.Feed.createPostTx(tx, loserID, loserName, content, nil)
		if err != nil {
			return err
		}
		post = p
		return nil
	})
	if err != nil {
		if errors.Is(err, duel.ErrAlreadyUsed) {
			return respondDuelError(c, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create post", "details": err.Error()})
	}
	s.Feed.announcePost(post)

	s.pushHistory(entry)
	log.Printf("[STAKES] hijack on entry %s: %s posted as %s", entry.ID, user.Username, loserName)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "post": post})
}

// GetActions reports what the caller may still do with an entry.
func (s *StakesService) GetActions(c *fiber.Ctx) error {
	user, err := currentUser(s.DB, c)
	if err != nil {
		return respondUserLookup(c, err)
	}
	entry, err := s.loadEntry(c.Params("id"))
	if err != nil {
		return respondDuelError(c, err)
	}
	return c.JSON(duel.ActionsFor(entry, user.ID))
}

// pushHistory refreshes both participants' history lists after a
// stake action mutated an entry.
func (s *StakesService) pushHistory(entry *models.DuelHistory) {
	for _, id := range []string{entry.ChallengerID, entry.DefenderID} {
		entries, err := historyFor(s.DB, id)
		if err != nil {
			log.Printf("[STAKES] history push failed for %s: %v", id, err)
			continue
		}
		s.Hub.Push(id, realtime.Event{Type: realtime.EventDuelHistory, Payload: entries})
	}
}
