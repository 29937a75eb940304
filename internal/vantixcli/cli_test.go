package vantixcli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out, &out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSetupWritesDefaults(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "conf", ".env")

	out, err := run(t, "setup", "--env-file", envFile, "--api-base-url", "https://api.vantix.pe/api/v1")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+envFile)

	raw, err := os.ReadFile(envFile)
	require.NoError(t, err)
	values, err := godotenv.Unmarshal(string(raw))
	require.NoError(t, err)
	assert.Equal(t, "https://api.vantix.pe/api/v1", values["API_BASE_URL"])
	assert.Equal(t, ":3000", values["CLIENT_ADDR"])
	assert.Equal(t, "5-M", values["LOGIN_RATE"])
}

func TestSetupRefusesOverwriteWithoutForce(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	_, err := run(t, "setup", "--env-file", envFile)
	require.NoError(t, err)

	_, err = run(t, "setup", "--env-file", envFile)
	require.Error(t, err)

	_, err = run(t, "setup", "--env-file", envFile, "--force", "--addr", ":4000")
	require.NoError(t, err)
	values, err := godotenv.Read(envFile)
	require.NoError(t, err)
	assert.Equal(t, ":4000", values["CLIENT_ADDR"])
}

func TestCheckTreatsAnyStatusAsUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("API_BASE_URL", srv.URL+"/api/v1")

	out, err := run(t, "check", "--env-file", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Contains(t, out, "up (status 401")
}

func TestCheckReportsUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	t.Setenv("API_BASE_URL", url+"/api/v1")
	t.Setenv("API_TIMEOUT", "1s")

	_, err := run(t, "check", "--env-file", filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestUnknownCommandIsUsageError(t *testing.T) {
	_, err := run(t, "deploy")
	require.ErrorIs(t, err, ErrUsage)

	_, err = run(t)
	require.ErrorIs(t, err, ErrUsage)

	_, err = run(t, "setup", "--colour")
	require.ErrorIs(t, err, ErrUsage)
}
