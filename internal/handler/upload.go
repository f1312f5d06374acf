package handler

import (
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/vid2scene/api/internal/model"
	"github.com/vid2scene/api/internal/service"
	"github.com/vid2scene/api/internal/session"
	"github.com/vid2scene/api/internal/validation"
	"github.com/vid2scene/api/pkg/response"
)

var uploadPath = regexp.MustCompile(`^/api/sessions/([^/]+)/upload/?$`)

type UploadHandler struct {
	uploads    *service.UploadService
	stages     []model.ProcessingStage
	supervisor *session.Supervisor
	lookup     sessionLookup
}

func NewUploadHandler(sessions *service.SessionService, uploads *service.UploadService, sup *session.Supervisor, v *validator.Validate) *UploadHandler {
	return &UploadHandler{
		uploads:    uploads,
		stages:     sessions.Stages(),
		supervisor: sup,
		lookup:     sessionLookup{sessions: sessions, validator: v},
	}
}

// Upload handles POST /api/sessions/:sessionId/upload
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	ctrl, err := h.lookup.find(c)
	if err != nil {
		return writeError(c, err)
	}

	// Get file
	file, err := c.FormFile("file")
	if err != nil {
		return response.ValidationError(c, "File is required", nil)
	}

	cand := model.UploadCandidate{
		Name:      file.Filename,
		Size:      file.Size,
		MediaType: file.Header.Get("Content-Type"),
	}

	// Open file
	f, err := file.Open()
	if err != nil {
		return response.ServiceError(c, "Failed to open file")
	}
	defer f.Close()

	var (
		result model.ValidationResult
		ref    *model.FileRef
	)
	err = h.supervisor.Do("upload", func() error {
		var err error
		result, ref, err = h.uploads.Submit(c.UserContext(), ctrl, cand, f)
		return err
	})
	if errors.Is(err, session.ErrRejected) {
		return response.Rejected(c, result.Reason, map[string]interface{}{
			"fileName": cand.Name,
			"fileSize": cand.Size,
			"fileType": cand.MediaType,
			"maxSize":  h.uploads.MaxSize(),
		})
	}
	if err != nil {
		return writeError(c, err)
	}

	return response.Accepted(c, model.UploadResponse{
		SessionID: ctrl.ID(),
		Mode:      ctrl.Mode(),
		File:      *ref,
		Stages:    model.ToStageResponses(h.stages),
		Result:    result,
	})
}

// TooLarge answers an upload refused by the server body limit the same way
// the gate answers an oversized file. It reports false for other requests.
func (h *UploadHandler) TooLarge(c *fiber.Ctx) (bool, error) {
	m := uploadPath.FindStringSubmatch(c.Path())
	if m == nil || c.Method() != fiber.MethodPost {
		return false, nil
	}

	cand := model.UploadCandidate{Size: int64(c.Request().Header.ContentLength())}
	result := model.ValidationResult{Valid: false, Reason: validation.SizeLimitReason(h.uploads.MaxSize())}
	if ctrl, err := h.lookup.sessions.Get(m[1]); err == nil {
		ctrl.Reject(cand, result)
	}

	return true, response.Rejected(c, result.Reason, map[string]interface{}{
		"fileSize": cand.Size,
		"maxSize":  h.uploads.MaxSize(),
	})
}
