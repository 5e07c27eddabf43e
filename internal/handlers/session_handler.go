package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/cv-master-ats/internal/models"
	"alfredoptarigan/cv-master-ats/internal/services"
)

type SessionHandler struct {
	store  *services.SessionStore
	logger *zap.Logger
}

func NewSessionHandler(store *services.SessionStore, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{store: store, logger: logger}
}

// HandleCreate handles POST /sessions
func (h *SessionHandler) HandleCreate(c *fiber.Ctx) error {
	controller := h.store.Create()
	return c.Status(fiber.StatusCreated).JSON(controller.Snapshot())
}

// HandleGet handles GET /sessions/:id
func (h *SessionHandler) HandleGet(c *fiber.Ctx) error {
	controller, err := h.lookup(c)
	if err != nil {
		return respondError(c, err, "")
	}
	return c.JSON(controller.Snapshot())
}

// HandleDelete handles DELETE /sessions/:id
func (h *SessionHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil || !h.store.Delete(id) {
		return respondError(c, services.ErrSessionNotFound, "")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleUpload handles POST /sessions/:id/document. It accepts a multipart
// field named "cv" or a JSON body with base64 data.
func (h *SessionHandler) HandleUpload(c *fiber.Ctx) error {
	controller, err := h.lookup(c)
	if err != nil {
		return respondError(c, err, "")
	}

	file, err := incomingFile(c)
	if err != nil {
		return respondError(c, controller.RejectUpload(err), controller.Snapshot().Step)
	}
	if err := controller.SubmitFile(file); err != nil {
		return respondError(c, err, controller.Snapshot().Step)
	}

	return c.JSON(controller.Snapshot())
}

// HandleProfile handles POST /sessions/:id/profile. The analysis runs in
// the background and the client polls the session.
func (h *SessionHandler) HandleProfile(c *fiber.Ctx) error {
	controller, err := h.lookup(c)
	if err != nil {
		return respondError(c, err, "")
	}

	var req models.ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request payload",
		})
	}

	if err := controller.SubmitProfile(req); err != nil {
		return respondError(c, err, controller.Snapshot().Step)
	}

	return c.Status(fiber.StatusAccepted).JSON(controller.Snapshot())
}

// HandleOptimize handles POST /sessions/:id/optimize
func (h *SessionHandler) HandleOptimize(c *fiber.Ctx) error {
	controller, err := h.lookup(c)
	if err != nil {
		return respondError(c, err, "")
	}

	if err := controller.RequestOptimization(); err != nil {
		return respondError(c, err, controller.Snapshot().Step)
	}

	return c.Status(fiber.StatusAccepted).JSON(controller.Snapshot())
}

// HandleRestart handles POST /sessions/:id/restart
func (h *SessionHandler) HandleRestart(c *fiber.Ctx) error {
	controller, err := h.lookup(c)
	if err != nil {
		return respondError(c, err, "")
	}

	controller.Restart()
	return c.JSON(controller.Snapshot())
}

// HandleDismissError handles DELETE /sessions/:id/error
func (h *SessionHandler) HandleDismissError(c *fiber.Ctx) error {
	controller, err := h.lookup(c)
	if err != nil {
		return respondError(c, err, "")
	}

	controller.DismissError()
	return c.JSON(controller.Snapshot())
}

// HandleExport handles GET /sessions/:id/export
func (h *SessionHandler) HandleExport(c *fiber.Ctx) error {
	controller, err := h.lookup(c)
	if err != nil {
		return respondError(c, err, "")
	}

	state := controller.Snapshot()
	if state.Step != models.StepDone || state.Optimized == nil {
		return respondError(c, services.ErrInvalidStep, state.Step)
	}

	return sendPlainText(c, state.Optimized)
}

// HandleLevels handles GET /levels
func HandleLevels(c *fiber.Ctx) error {
	return c.JSON(models.LevelOptions())
}

func (h *SessionHandler) lookup(c *fiber.Ctx) (*services.Controller, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, services.ErrSessionNotFound
	}
	return h.store.Get(id)
}

func incomingFile(c *fiber.Ctx) (services.IncomingFile, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		header, err := c.FormFile("cv")
		if err != nil {
			return services.IncomingFile{}, fmt.Errorf("%w: form field cv: %v", services.ErrEncoding, err)
		}
		return services.FromMultipart(header)
	}

	var req models.UploadRequest
	if err := c.BodyParser(&req); err != nil {
		return services.IncomingFile{}, fmt.Errorf("%w: %v", services.ErrEncoding, err)
	}
	return services.IncomingFile{
		Name:      req.Filename,
		MediaType: req.MimeType,
		Encoded:   req.Data,
	}, nil
}

func sendPlainText(c *fiber.Ctx, doc *models.OptimizedDocument) error {
	c.Attachment(services.ExportFilename)
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(services.RenderPlainText(doc))
}
