package arguments

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	defer viper.Reset()

	metadata, err := Parse("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", metadata.PublicIPv4)
	assert.Equal(t, "unknown", metadata.Environment)
	assert.Equal(t, 3000, metadata.Port)

	_, err = uuid.Parse(metadata.InstanceID)
	assert.NoError(t, err)
}

func TestParseMissingConfigurationName(t *testing.T) {
	defer viper.Reset()

	metadata, err := Parse("does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, "does-not-exist", metadata.Environment)
}

func TestParseConfigurationFile(t *testing.T) {
	defer viper.Reset()

	path := filepath.Join(t.TempDir(), "staging.yaml")
	content := "Admin:\n  Port: 9100\nLogger:\n  Level: warning\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	metadata, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", metadata.Environment)
	assert.Equal(t, 9100, metadata.Port)
	assert.Equal(t, "warning", viper.GetString("Logger.Level"))
}

func TestParseEnvironmentOverride(t *testing.T) {
	defer viper.Reset()
	t.Setenv("ENV_ADMIN_PORT", "8081")
	t.Setenv("ENV_APP_ENVIRONMENT", "production")

	metadata, err := Parse("")
	require.NoError(t, err)

	assert.Equal(t, 8081, metadata.Port)
	assert.Equal(t, "production", metadata.Environment)
}

func TestParseInvalid(t *testing.T) {
	defer viper.Reset()

	_, err := Parse(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	viper.Reset()
	viper.Set("Admin.Port", 70000)
	_, err = Parse("")
	assert.Error(t, err)
}
