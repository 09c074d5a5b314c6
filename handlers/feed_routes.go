// handlers/feed_routes.go
package handlers

import (
	"duel-arena/middleware"
	"duel-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupFeedRoutes(app *fiber.App, feedService *services.FeedService, userService *services.UserService) {
	app.Get("/posts", feedService.GetFeed)
	app.Get("/users/:id/profile", userService.GetProfile)

	secured := app.Group("/", middleware.UserContextMiddleware())
	secured.Post("/posts", feedService.CreatePost)
	secured.Post("/users", userService.Register)
	secured.Get("/users/search", userService.SearchUsers)
}
