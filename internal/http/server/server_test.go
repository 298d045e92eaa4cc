package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certgen/internal/config"
	"certgen/internal/domain"
)

type fakeRenderer struct{ err error }

func (f fakeRenderer) Render(_ context.Context, name string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 " + name), nil
}

type okAssets struct{}

func (okAssets) Check() error { return nil }

func minimalConfig() config.Config {
	cfg := config.Default()
	cfg.RateLimiter.Enabled = true
	cfg.RateLimiter.UserLimit = 2
	cfg.RateLimiter.Interval = time.Hour
	return cfg
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, string) {
	t.Helper()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	return resp, string(data)
}

func TestNew_RoutesAndJSON404(t *testing.T) {
	app, err := New(Deps{Config: minimalConfig(), Renderer: fakeRenderer{}, Assets: okAssets{}})
	require.NoError(t, err)

	resp, body := do(t, app, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "cert-form")

	resp, _ = do(t, app, http.MethodGet, "/ops/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, app, http.MethodGet, "/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	assert.Contains(t, body, `"error":"Not Found"`)
}

func TestNew_GenerateAndErrorMapping(t *testing.T) {
	app, err := New(Deps{Config: config.Default(), Renderer: fakeRenderer{}})
	require.NoError(t, err)

	resp, body := do(t, app, http.MethodPost, "/api/generate", `{"name":"Jane"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix([]byte(body), []byte("%PDF")))

	broken, err := New(Deps{Config: config.Default(), Renderer: fakeRenderer{err: domain.ErrRenderFailure}})
	require.NoError(t, err)
	resp, body = do(t, broken, http.MethodPost, "/api/generate", `{"name":"Jane"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, domain.ErrRenderFailure.Error())
}

func TestNew_RateLimitsGenerateOnly(t *testing.T) {
	app, err := New(Deps{Config: minimalConfig(), Renderer: fakeRenderer{}, RateStore: memoryStorage.New()})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		resp, _ := do(t, app, http.MethodPost, "/api/generate", `{"name":"Jane"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, _ := do(t, app, http.MethodPost, "/api/generate", `{"name":"Jane"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, _ = do(t, app, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNew_ServesLogo(t *testing.T) {
	logo := filepath.Join(t.TempDir(), "logo.png")
	png := []byte("\x89PNG\r\n\x1a\nlogo")
	require.NoError(t, os.WriteFile(logo, png, 0o644))

	cfg := config.Default()
	cfg.Assets.LogoPath = logo
	app, err := New(Deps{Config: cfg, Renderer: fakeRenderer{}})
	require.NoError(t, err)

	resp, body := do(t, app, http.MethodGet, "/logo.png", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(png), body)
}

func TestNew_MissingLogoIsJSON404(t *testing.T) {
	cfg := config.Default()
	cfg.Assets.LogoPath = filepath.Join(t.TempDir(), "absent.png")
	app, err := New(Deps{Config: cfg, Renderer: fakeRenderer{}})
	require.NoError(t, err)

	resp, body := do(t, app, http.MethodGet, "/logo.png", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, `"error":"Not Found"`)
}

func TestNew_MonitorPage(t *testing.T) {
	app, err := New(Deps{Config: config.Default(), Renderer: fakeRenderer{}})
	require.NoError(t, err)

	resp, body := do(t, app, http.MethodGet, "/ops/monitor", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "certgen metrics")
}
