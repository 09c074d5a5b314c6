// services/feed_service.go
package services

import (
	"log"
	"path/filepath"
	"strings"

	"duel-arena/models"
	"duel-arena/realtime"
	"duel-arena/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type FeedService struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

func NewFeedService(db *gorm.DB, hub *realtime.Hub) *FeedService {
	return &FeedService{DB: db, Hub: hub}
}

// postSlug derives a short share slug from the post content.
func postSlug(content string) string {
	snippet := content
	if len(snippet) > 48 {
		snippet = snippet[:48]
	}
	return slug.Make(snippet)
}

// CreatePost publishes a feed post for the caller, with an optional
// media attachment uploaded to R2.
func (s *FeedService) CreatePost(c *fiber.Ctx) error {
	user, err := currentUser(s.DB, c)
	if err != nil {
		return respondUserLookup(c, err)
	}

	content := strings.TrimSpace(c.FormValue("content"))
	if content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "content is required"})
	}

	var mediaURL *string
	if fileHeader, err := c.FormFile("media"); err == nil && fileHeader != nil {
		key := "media/" + uuid.NewString() + filepath.Ext(fileHeader.Filename)
		url, err := utils.UploadFileToR2(fileHeader, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "media upload failed", "details": err.Error()})
		}
		mediaURL = &url
	}

	post, err := s.createPostAs(user.ID, user.Username, content, mediaURL)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create post", "details": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetFeed returns live posts, newest first.
func (s *FeedService) GetFeed(c *fiber.Ctx) error {
	var posts []models.Post
	if err := s.DB.Where("deleted = false").
		Order("created_at DESC").Limit(100).Find(&posts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load feed"})
	}
	return c.JSON(posts)
}

// createPostAs inserts a post attributed to the given author and
// broadcasts it.
func (s *FeedService) createPostAs(userID, username, content string, mediaURL *string) (*models.Post, error) {
	post, err := s.createPostTx(s.DB, userID, username, content, mediaURL)
	if err != nil {
		return nil, err
	}
	s.announcePost(post)
	return post, nil
}

// createPostTx inserts a post attributed to the given author inside
// the caller's transaction. The stakes resolver uses this to post on
// the loser's behalf, with the loser as the attributed author, in the
// same transaction that consumes the stake.
func (s *FeedService) createPostTx(tx *gorm.DB, userID, username, content string, mediaURL *string) (*models.Post, error) {
	post := models.Post{
		ID:       uuid.NewString(),
		UserID:   userID,
		Username: username,
		Content:  content,
		Slug:     postSlug(content),
		MediaURL: mediaURL,
	}
	if err := tx.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// announcePost broadcasts a committed post to connected clients.
func (s *FeedService) announcePost(post *models.Post) {
	s.Hub.Broadcast(realtime.Event{Type: realtime.EventNewPost, Payload: post})
	log.Printf("[FEED] new post %s by %s", post.ID, post.Username)
}
