package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)

	api := app.Group("/api", handler.AuthRequired)
	api.Get("/profile", handler.GetProfile)
	api.Post("/profile", handler.RegisterProfile)
	api.Patch("/profile/cycle", handler.UpdateCycleSettings)
	api.Put("/profile/language", handler.UpdateLanguage)
	api.Get("/status", handler.GetStatus)
	api.Get("/recommendations", handler.GetRecommendations)
	api.Post("/energy", handler.LogEnergy)
	api.Get("/stats", handler.GetStatistics)
	api.Put("/notifications", handler.UpdateNotifications)
	api.Get("/notifications/deliveries", handler.ListDeliveries)
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
