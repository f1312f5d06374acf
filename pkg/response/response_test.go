package response

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, app *fiber.App, path string) (int, ErrorResponse) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestErrorEnvelopes(t *testing.T) {
	app := fiber.New()
	app.Get("/rejected", func(c *fiber.Ctx) error {
		return Rejected(c, "File appears to be empty", nil)
	})
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return Conflict(c, "busy")
	})
	app.Get("/incident", func(c *fiber.Ctx) error {
		return Incident(c, "error_1_abcdefghi", []string{"retry", "reload", "home"})
	})

	status, body := decode(t, app, "/rejected")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, CodeUploadRejected, body.Error.Code)
	assert.Equal(t, "File appears to be empty", body.Error.Message)

	status, body = decode(t, app, "/conflict")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, CodeInvalidTransition, body.Error.Code)

	status, body = decode(t, app, "/incident")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, CodeIncident, body.Error.Code)
	assert.Equal(t, "error_1_abcdefghi", body.Error.IncidentID)
	assert.Equal(t, []string{"retry", "reload", "home"}, body.Error.Actions)
}
