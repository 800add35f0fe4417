package providers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildstore/internal/structures"
)

func TestGetLogTypeByRequestType_POST(t *testing.T) {
	assert.Equal(t, TypeEnum(TypePost), GetLogTypeByRequestType("POST"))
}

func TestGetLogTypeByRequestType_GET(t *testing.T) {
	assert.Equal(t, TypeEnum(TypeGet), GetLogTypeByRequestType("GET"))
}

func TestGetLogTypeByRequestType_Other(t *testing.T) {
	assert.Equal(t, TypeEnum(TypeGet), GetLogTypeByRequestType("PUT"))
	assert.Equal(t, TypeEnum(TypeGet), GetLogTypeByRequestType("DELETE"))
}

func TestNewLogProvider_CreatesLogFiles(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   dir,
		},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)

	logger.Infof(TypeApp, "test message")
	logger.Debugf(TypeGet, "get message")
	logger.Warnf(TypePost, "post message %d", 7)
	logger.Close()

	for _, name := range []string{"app.log", "get.log", "post.log"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	app, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(app), "test message")

	// debug is below the configured level
	get, err := os.ReadFile(filepath.Join(dir, "get.log"))
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(string(get)))

	post, err := os.ReadFile(filepath.Join(dir, "post.log"))
	require.NoError(t, err)
	assert.Contains(t, string(post), "post message 7")
	assert.Contains(t, string(post), `"level":"warn"`)
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "loud",
			Mode:  0644,
			Dir:   t.TempDir(),
		},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/nonexistent/directory/path",
		},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}
