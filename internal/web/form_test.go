package web

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getForm(t *testing.T, mailEnabled bool) (int, string, string) {
	t.Helper()
	h, err := FormHandler(mailEnabled, "-sertifika.pdf")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", h)
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Content-Type"), string(body)
}

func TestFormHandler_NameOnly(t *testing.T) {
	code, ctype, body := getForm(t, false)
	assert.Equal(t, fiber.StatusOK, code)
	assert.True(t, strings.HasPrefix(ctype, "text/html"))
	assert.Contains(t, body, `id="name"`)
	assert.NotContains(t, body, `id="email"`)
	assert.Contains(t, body, `data-mail="false"`)
	assert.Contains(t, body, `data-suffix="-sertifika.pdf"`)
	assert.Contains(t, body, "/api/generate")
}

func TestFormHandler_WithEmail(t *testing.T) {
	_, _, body := getForm(t, true)
	assert.Contains(t, body, `id="email"`)
	assert.Contains(t, body, `data-mail="true"`)
	assert.Contains(t, body, "revokeObjectURL")
}
