package envutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDotEnvMissingFileIsNotAnError(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestWriteThenLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, WriteDotEnv(path, map[string]string{
		"VANTIX_TEST_BASE": "http://api.local/api/v1",
		"VANTIX_TEST_ADDR": ":3000",
	}, false))

	t.Setenv("VANTIX_TEST_ADDR", ":9999")
	os.Unsetenv("VANTIX_TEST_BASE")
	t.Cleanup(func() { os.Unsetenv("VANTIX_TEST_BASE") })

	require.NoError(t, LoadDotEnv(path))
	require.Equal(t, "http://api.local/api/v1", os.Getenv("VANTIX_TEST_BASE"))
	require.Equal(t, ":9999", os.Getenv("VANTIX_TEST_ADDR"), "existing environment must win")
}

func TestWriteDotEnvRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, WriteDotEnv(path, map[string]string{"A": "1"}, false))
	require.Error(t, WriteDotEnv(path, map[string]string{"A": "2"}, false))
	require.NoError(t, WriteDotEnv(path, map[string]string{"A": "2"}, true))
}
