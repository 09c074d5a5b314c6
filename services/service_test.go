// services/service_test.go
package services

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"duel-arena/duel"
	"duel-arena/middleware"
	"duel-arena/models"
	"duel-arena/realtime"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the service schema.
// Postgres-only column defaults (gen_random_uuid) do not port, so the
// tables are created directly and tests supply ids.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	// One connection, or every pool conn gets its own empty :memory: db.
	sqlDB.SetMaxOpenConns(1)

	schema := []string{
		`CREATE TABLE duel_users (
			id TEXT PRIMARY KEY,
			external_user_id TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			slug TEXT,
			search_key TEXT,
			profile_picture_url TEXT,
			rating INTEGER DEFAULT 1000,
			wins INTEGER DEFAULT 0,
			losses INTEGER DEFAULT 0,
			followers INTEGER DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE posts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			username TEXT NOT NULL,
			content TEXT NOT NULL,
			slug TEXT,
			media_url TEXT,
			deleted BOOLEAN DEFAULT false,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE duel_histories (
			id TEXT PRIMARY KEY,
			challenger_id TEXT NOT NULL,
			challenger_name TEXT NOT NULL,
			defender_id TEXT NOT NULL,
			defender_name TEXT NOT NULL,
			post_id TEXT NOT NULL,
			original_post_content TEXT,
			winner_id TEXT NOT NULL,
			winner_name TEXT NOT NULL,
			post_destroyed BOOLEAN DEFAULT false,
			hijack_used BOOLEAN DEFAULT false,
			resolved_at DATETIME
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

type testEnv struct {
	db     *gorm.DB
	hub    *realtime.Hub
	app    *fiber.App
	duels  *DuelService
	stakes *StakesService
	feed   *FeedService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	hub := realtime.NewHub()
	feed := NewFeedService(db, hub)
	duels := NewDuelService(db, hub)
	stakes := NewStakesService(db, hub, feed)

	app := fiber.New()
	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Get("/duels/requests", duels.GetRequests)
	secured.Post("/duels/challenges", duels.CreateChallenge)
	secured.Post("/duels/requests/:id/respond", duels.RespondToChallenge)
	secured.Post("/duels/requests/:id/move", duels.SubmitMove)
	secured.Get("/duels/history", duels.GetHistory)
	secured.Get("/duels/history/:id/actions", stakes.GetActions)
	secured.Post("/duels/history/:id/destroy", stakes.DestroyPost)
	secured.Post("/duels/history/:id/post-on-behalf", stakes.PostOnBehalf)

	return &testEnv{db: db, hub: hub, app: app, duels: duels, stakes: stakes, feed: feed}
}

// do performs a JSON request as the user with the given external id.
func (e *testEnv) do(t *testing.T, method, path, externalID string, body any) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("X-User-ID", externalID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func seedUser(t *testing.T, db *gorm.DB, id, externalID, username string) *models.DuelUser {
	t.Helper()
	u := &models.DuelUser{
		ID:             id,
		ExternalUserID: externalID,
		Username:       username,
		Slug:           username,
		SearchKey:      username,
		Rating:         duel.InitialRating,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func seedPost(t *testing.T, db *gorm.DB, id string, author *models.DuelUser, content string) *models.Post {
	t.Helper()
	p := &models.Post{
		ID:       id,
		UserID:   author.ID,
		Username: author.Username,
		Content:  content,
		Slug:     "s-" + id,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed post %s: %v", id, err)
	}
	return p
}

func seedHistory(t *testing.T, db *gorm.DB, id string, challenger, defender, winner *models.DuelUser, postID, content string) *models.DuelHistory {
	t.Helper()
	entry := &models.DuelHistory{
		ID:                  id,
		ChallengerID:        challenger.ID,
		ChallengerName:      challenger.Username,
		DefenderID:          defender.ID,
		DefenderName:        defender.Username,
		PostID:              postID,
		OriginalPostContent: content,
		WinnerID:            winner.ID,
		WinnerName:          winner.Username,
		ResolvedAt:          time.Now().UTC(),
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("seed history %s: %v", id, err)
	}
	return entry
}

// fakeConn records hub deliveries for assertions.
type fakeConn struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev, ok := v.(realtime.Event); ok {
		c.events = append(c.events, ev)
	}
	return nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) snapshot() []realtime.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]realtime.Event, len(c.events))
	copy(out, c.events)
	return out
}

// waitFor polls until pred holds; hub delivery is asynchronous.
func waitFor(t *testing.T, pred func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}
