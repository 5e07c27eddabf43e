package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/cv-master-ats/internal/models"
	"alfredoptarigan/cv-master-ats/internal/repositories"
	"alfredoptarigan/cv-master-ats/internal/services"
)

// respondError maps workflow errors onto HTTP statuses. step is included
// when the caller knows which step the session is in.
func respondError(c *fiber.Ctx, err error, step models.Step) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		status, message = fiber.StatusNotFound, "Session not found"
	case errors.Is(err, repositories.ErrReportNotFound):
		status, message = fiber.StatusNotFound, "Report not found"
	case errors.Is(err, services.ErrUnsupportedType),
		errors.Is(err, services.ErrFileTooLarge),
		errors.Is(err, services.ErrEncoding):
		status, message = fiber.StatusBadRequest, services.UserMessage(err)
	case errors.Is(err, services.ErrProfileIncomplete):
		status, message = fiber.StatusUnprocessableEntity, services.UserMessage(err)
	case errors.Is(err, services.ErrInvalidStep):
		status, message = fiber.StatusConflict, "This action is not available right now"
	}

	return c.Status(status).JSON(models.ErrorResponse{
		Error: message,
		Step:  step,
	})
}
