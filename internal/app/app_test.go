package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-desk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App: config.AppConfig{Backend: config.BackendREST},
		JWT: config.JWTConfig{Secret: "secret", AccessExpiration: "1h"},
		HRAPI: config.HRAPIConfig{
			BaseURL: "https://hr.example.com",
			Token:   "static",
			Timeout: time.Second,
		},
		Session: config.SessionConfig{IdleTimeout: time.Minute, ConfirmationTTL: time.Minute},
	}
}

func TestNew_RESTBackend(t *testing.T) {
	cfg := restConfig(t)
	cfg.Export.ArchivePath = filepath.Join(t.TempDir(), "archive")

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Punches)
	assert.NotNil(t, a.Reports)
	assert.NotNil(t, a.Scheduler)
	assert.Equal(t, 0, a.Sessions.Len())

	_, err = os.Stat(cfg.Export.ArchivePath)
	assert.NoError(t, err)
}

func TestNew_InvalidLayout(t *testing.T) {
	cfg := restConfig(t)
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sheet_name: \"\"\n"), 0o644))
	cfg.Export.LayoutFile = path

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNew_BadBaseURL(t *testing.T) {
	cfg := restConfig(t)
	cfg.HRAPI.BaseURL = "not a url"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := restConfig(t)
	cfg.App.Backend = "soap"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestClose_IsSafeTwice(t *testing.T) {
	a, err := New(context.Background(), restConfig(t))
	require.NoError(t, err)

	a.Close()
	a.Close()
}
