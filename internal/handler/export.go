package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/vid2scene/api/internal/model"
	"github.com/vid2scene/api/internal/service"
	"github.com/vid2scene/api/internal/session"
	"github.com/vid2scene/api/pkg/response"
)

type ExportHandler struct {
	service    *service.ExportService
	supervisor *session.Supervisor
	lookup     sessionLookup
}

func NewExportHandler(svc *service.ExportService, sessions *service.SessionService, sup *session.Supervisor, v *validator.Validate) *ExportHandler {
	return &ExportHandler{
		service:    svc,
		supervisor: sup,
		lookup:     sessionLookup{sessions: sessions, validator: v},
	}
}

// Payload handles GET /api/sessions/:sessionId/export
func (h *ExportHandler) Payload(c *fiber.Ctx) error {
	ctrl, err := h.lookup.find(c)
	if err != nil {
		return writeError(c, err)
	}

	payload, err := session.Call(h.supervisor, "export", func() (model.ExportPayload, error) {
		return h.service.Payload(ctrl), nil
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, payload)
}

// CameraPaths handles GET /api/sessions/:sessionId/export/camera-paths
func (h *ExportHandler) CameraPaths(c *fiber.Ctx) error {
	ctrl, err := h.lookup.find(c)
	if err != nil {
		return writeError(c, err)
	}

	doc, err := session.Call(h.supervisor, "export_camera_paths", func() ([]byte, error) {
		return h.service.CameraPaths(ctrl)
	})
	if err != nil {
		return writeError(c, err)
	}

	c.Attachment(model.CameraPathsFileName)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(doc)
}

// Artifact handles GET /api/sessions/:sessionId/export/artifact
func (h *ExportHandler) Artifact(c *fiber.Ctx) error {
	ctrl, err := h.lookup.find(c)
	if err != nil {
		return writeError(c, err)
	}

	ref, ok := h.service.Artifact(ctrl)
	if !ok {
		return response.NotFound(c, "No scene artifact available")
	}

	c.Attachment(model.ArtifactFileName)
	return c.Redirect(ref, fiber.StatusFound)
}

// Scene handles GET /api/sessions/:sessionId/scene
func (h *ExportHandler) Scene(c *fiber.Ctx) error {
	ctrl, err := h.lookup.find(c)
	if err != nil {
		return writeError(c, err)
	}

	summary, err := session.Call(h.supervisor, "scene", func() (model.SceneSummary, error) {
		return h.service.Scene(ctrl), nil
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, summary)
}
