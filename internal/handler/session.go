package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/vid2scene/api/internal/model"
	"github.com/vid2scene/api/internal/service"
	"github.com/vid2scene/api/internal/session"
	"github.com/vid2scene/api/pkg/response"
)

type SessionHandler struct {
	sessions   *service.SessionService
	supervisor *session.Supervisor
	lookup     sessionLookup
}

func NewSessionHandler(svc *service.SessionService, sup *session.Supervisor, v *validator.Validate) *SessionHandler {
	return &SessionHandler{
		sessions:   svc,
		supervisor: sup,
		lookup:     sessionLookup{sessions: svc, validator: v},
	}
}

// Create handles POST /api/sessions
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	ctrl, err := session.Call(h.supervisor, "create_session", func() (*session.Controller, error) {
		return h.sessions.Create(c.UserContext())
	})
	if err != nil {
		return writeError(c, err)
	}

	status := ctrl.Status()
	return response.Created(c, model.SessionCreateResponse{
		SessionID: status.SessionID,
		Mode:      status.Mode,
		CreatedAt: status.CreatedAt,
	})
}

// Status handles GET /api/sessions/:sessionId
func (h *SessionHandler) Status(c *fiber.Ctx) error {
	ctrl, err := h.lookup.find(c)
	if err != nil {
		return writeError(c, err)
	}

	status, err := session.Call(h.supervisor, "status", func() (model.SessionStatusResponse, error) {
		return ctrl.Status(), nil
	})
	if err != nil {
		return writeError(c, err)
	}
	return response.OK(c, status)
}

// Cancel handles POST /api/sessions/:sessionId/cancel
func (h *SessionHandler) Cancel(c *fiber.Ctx) error {
	ctrl, err := h.lookup.find(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.supervisor.Do("cancel", func() error { return ctrl.Cancel(c.UserContext()) }); err != nil {
		return writeError(c, err)
	}
	return response.OK(c, ctrl.Status())
}

// Results handles POST /api/sessions/:sessionId/results
func (h *SessionHandler) Results(c *fiber.Ctx) error {
	ctrl, err := h.lookup.find(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.supervisor.Do("confirm_results", func() error { return ctrl.ConfirmResults(c.UserContext()) }); err != nil {
		return writeError(c, err)
	}
	return response.OK(c, ctrl.Status())
}

// Delete handles DELETE /api/sessions/:sessionId
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	ctrl, err := h.lookup.find(c)
	if err != nil {
		return writeError(c, err)
	}

	if err := h.sessions.Remove(ctrl.ID()); err != nil {
		return writeError(c, err)
	}
	return response.NoContent(c)
}

// Video handles GET /api/sessions/:sessionId/video
func (h *SessionHandler) Video(c *fiber.Ctx) error {
	ctrl, err := h.lookup.find(c)
	if err != nil {
		return writeError(c, err)
	}

	ref, ok := ctrl.File()
	if !ok {
		return response.NotFound(c, "No video uploaded")
	}

	if err := c.SendFile(ref.Path); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, ref.MediaType)
	return nil
}
