package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "groq", c.DefaultProvider)
	assert.Equal(t, "llama-3.1-8b-instant", c.DefaultModel)
	assert.Equal(t, "data/mammals-sample.csv", c.DatasetPath)
	assert.Equal(t, "mammals_df", c.TableName)
	assert.Equal(t, 15, c.AgentMaxIterations)
	assert.Equal(t, ":8080", c.ServeAddr)
	assert.Equal(t, "warn", c.LogLevel)
}

func TestSaveLoadRoundTripAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	in := &Global{DefaultProvider: "ollama", DefaultModel: "qwen2.5:7b", DatasetPath: "s3://bucket/mammals.csv", TableName: "sightings", AgentMaxIterations: 5}
	require.NoError(t, Save(in, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	t.Setenv("ZOOGIST_TABLE_NAME", "from_env")
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", c.DefaultProvider)
	assert.Equal(t, "qwen2.5:7b", c.DefaultModel)
	assert.Equal(t, "s3://bucket/mammals.csv", c.DatasetPath)
	assert.Equal(t, 5, c.AgentMaxIterations)
	assert.Equal(t, "from_env", c.TableName)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
