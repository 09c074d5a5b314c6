// services/users.go
package services

import (
	"errors"
	"strings"

	"duel-arena/duel"
	"duel-arena/middleware"
	"duel-arena/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// searchKey folds a username to its ASCII, lower-cased form so that
// "Zoë" is findable as "zoe".
func searchKey(username string) string {
	return strings.ToLower(unidecode.Unidecode(username))
}

// normalizeUsername trims and NFC-normalizes so visually identical
// names cannot register twice under different byte sequences.
func normalizeUsername(username string) string {
	return norm.NFC.String(strings.TrimSpace(username))
}

// Register creates the local directory row for the authenticated user.
func (s *UserService) Register(c *fiber.Ctx) error {
	externalID := middleware.UserID(c)

	var body struct {
		Username string `json:"username"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	username := normalizeUsername(body.Username)
	if username == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username is required"})
	}

	var count int64
	s.DB.Model(&models.DuelUser{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "username already taken"})
	}

	user := models.DuelUser{
		ExternalUserID: externalID,
		Username:       username,
		Slug:           slug.Make(username),
		SearchKey:      searchKey(username),
		Rating:         duel.InitialRating,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create user", "details": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// SearchUsers finds users by (accent-folded) username fragment,
// excluding the caller.
func (s *UserService) SearchUsers(c *fiber.Ctx) error {
	caller, err := currentUser(s.DB, c)
	if err != nil {
		return respondUserLookup(c, err)
	}

	query := strings.TrimSpace(c.Query("q", ""))
	db := s.DB.Model(&models.DuelUser{}).
		Where("id <> ?", caller.ID).
		Limit(50)
	if query != "" {
		db = db.Where("search_key LIKE ?", "%"+searchKey(query)+"%")
	}

	var users []models.DuelUser
	if err := db.Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "search failed", "details": err.Error()})
	}

	res := make([]models.UserSummary, len(users))
	for i := range users {
		res[i] = users[i].Summary()
	}
	return c.JSON(res)
}

// GetProfile returns a user's public record and their live posts.
func (s *UserService) GetProfile(c *fiber.Ctx) error {
	var user models.DuelUser
	if err := s.DB.First(&user, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "profile lookup failed"})
	}

	var posts []models.Post
	if err := s.DB.Where("user_id = ? AND deleted = false", user.ID).
		Order("created_at DESC").Find(&posts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "profile lookup failed"})
	}

	return c.JSON(fiber.Map{
		"user":  user.Summary(),
		"posts": posts,
	})
}

// currentUser resolves the authenticated caller to their local
// directory row via the gateway-supplied external id.
func currentUser(db *gorm.DB, c *fiber.Ctx) (*models.DuelUser, error) {
	externalID := middleware.UserID(c)
	if externalID == "" {
		return nil, duel.ErrUnknownUser
	}
	var user models.DuelUser
	if err := db.First(&user, "external_user_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, duel.ErrUnknownUser
		}
		return nil, err
	}
	return &user, nil
}

func respondUserLookup(c *fiber.Ctx, err error) error {
	if errors.Is(err, duel.ErrUnknownUser) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown user"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "user lookup failed", "details": err.Error()})
}
