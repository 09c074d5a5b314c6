// handlers/duel_routes.go
package handlers

import (
	"duel-arena/middleware"
	"duel-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDuelRoutes(app *fiber.App, duelService *services.DuelService, stakesService *services.StakesService) {
	// All duel routes need a caller identity from the Gateway.
	secured := app.Group("/duels", middleware.UserContextMiddleware())

	secured.Get("/requests", duelService.GetRequests)
	secured.Post("/challenges", duelService.CreateChallenge)
	secured.Post("/requests/:id/respond", duelService.RespondToChallenge)
	secured.Post("/requests/:id/move", duelService.SubmitMove)

	secured.Get("/history", duelService.GetHistory)
	secured.Get("/history/:id/actions", stakesService.GetActions)
	secured.Post("/history/:id/destroy", stakesService.DestroyPost)
	secured.Post("/history/:id/post-on-behalf", stakesService.PostOnBehalf)
}
