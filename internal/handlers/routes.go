package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Register mounts the API routes on router.
func Register(router fiber.Router, sessions *SessionHandler, reports *ReportHandler) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})
	router.Get("/levels", HandleLevels)

	router.Post("/sessions", sessions.HandleCreate)
	router.Get("/sessions/:id", sessions.HandleGet)
	router.Delete("/sessions/:id", sessions.HandleDelete)
	router.Post("/sessions/:id/document", sessions.HandleUpload)
	router.Post("/sessions/:id/profile", sessions.HandleProfile)
	router.Post("/sessions/:id/optimize", sessions.HandleOptimize)
	router.Post("/sessions/:id/restart", sessions.HandleRestart)
	router.Delete("/sessions/:id/error", sessions.HandleDismissError)
	router.Get("/sessions/:id/export", sessions.HandleExport)

	router.Get("/reports", reports.HandleList)
	router.Get("/reports/:id", reports.HandleGet)
	router.Get("/reports/:id/export", reports.HandleExport)
}
