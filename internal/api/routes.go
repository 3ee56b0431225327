package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dkaraca/briefly/internal/middleware"
)

// SetupRoutes configures all the routes for the application.
func SetupRoutes(app *fiber.App, h *Handlers, adminAPIKey string) {
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	api := app.Group("/api/v1")

	api.Get("/health", h.HealthCheck)
	api.Get("/styles", h.ListStyles)

	digests := api.Group("/digests")
	{
		digests.Get("", h.ListDigests)
		digests.Get("/:id", h.GetDigest)
	}

	api.Post("/digest/run", h.RunDigest)
	api.Get("/jobs", h.ListJobs)

	admin := api.Group("", middleware.AdminOnly(adminAPIKey))
	{
		admin.Delete("/digests/:id", h.DeleteDigest)
		admin.Post("/admin/cache/clear", h.ClearCache)
		admin.Post("/jobs", h.CreateJob)
		admin.Delete("/jobs/:id", h.DeleteJob)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
