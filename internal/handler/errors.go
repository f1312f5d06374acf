package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/vid2scene/api/internal/logging"
	"github.com/vid2scene/api/internal/metrics"
	"github.com/vid2scene/api/internal/service"
	"github.com/vid2scene/api/internal/session"
	"github.com/vid2scene/api/pkg/response"
)

type paramError struct {
	message string
	details interface{}
}

func (e *paramError) Error() string {
	return e.message
}

// sessionLookup resolves the :sessionId route param
type sessionLookup struct {
	sessions  *service.SessionService
	validator *validator.Validate
}

func (l sessionLookup) find(c *fiber.Ctx) (*session.Controller, error) {
	id := c.Params("sessionId")
	if err := l.validator.Var(id, "required,uuid"); err != nil {
		return nil, &paramError{message: "Invalid session ID", details: formatValidationErrors(err)}
	}
	return l.sessions.Get(id)
}

// writeError maps service and session errors onto the response envelope
func writeError(c *fiber.Ctx, err error) error {
	var incident *session.IncidentError
	var param *paramError
	switch {
	case errors.As(err, &incident):
		return response.Incident(c, incident.ID, session.IncidentActions)
	case errors.As(err, &param):
		return response.ValidationError(c, param.message, param.details)
	case errors.Is(err, service.ErrSessionNotFound):
		return response.NotFound(c, "Session not found")
	case errors.Is(err, session.ErrInvalidTransition):
		return response.Conflict(c, err.Error())
	default:
		return response.ServiceError(c, err.Error())
	}
}

// ErrorHandler turns fiber errors into the response envelope. Anything else
// reaching here escaped the supervisor and is reported as an incident.
// Uploads refused by the body limit never reach a route, so uploads, when
// set, answers those as gate rejections.
func ErrorHandler(log logging.Logger, uploads *UploadHandler) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := response.CodeServiceError
			switch fe.Code {
			case fiber.StatusNotFound:
				code = response.CodeNotFound
			case fiber.StatusRequestEntityTooLarge:
				if uploads != nil {
					if handled, err := uploads.TooLarge(c); handled {
						return err
					}
				}
				code = response.CodeValidationError
			}
			return response.Error(c, fe.Code, code, fe.Message, nil)
		}

		id := session.NewIncidentID()
		metrics.IncidentsTotal.WithLabelValues("http").Inc()
		logging.ComponentError(log, "HTTP", err, logging.Fields{
			logging.FieldErrorID:   id,
			logging.FieldPath:      c.Path(),
			logging.FieldRequestID: c.Locals("requestid"),
		})
		return response.Incident(c, id, session.IncidentActions)
	}
}

func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			field := e.Field()
			if field == "" {
				field = "sessionId"
			}
			errors[field] = e.Tag()
		}
		return errors
	}
	return nil
}
