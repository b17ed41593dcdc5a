package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Bot.PollTimeout)
	assert.Equal(t, "1200ms", cfg.Album.Window)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.History.Enabled)
}

func TestLoadParsesYAML(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: "12345:abc"
channel: "@minsknews"
admins: [5314321592, 123]
format:
  autosign: "— @minsknews"
  autoTitle: true
links:
  subscribe: https://t.me/minsknews
  suggest: https://t.me/stridiv
album:
  window: 900ms
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "12345:abc", cfg.Bot.Token)
	assert.Equal(t, "@minsknews", cfg.Channel)
	assert.Equal(t, []int64{5314321592, 123}, cfg.Admins)
	assert.Equal(t, "— @minsknews", cfg.Format.Autosign)
	assert.True(t, cfg.Format.AutoTitle)
	assert.Equal(t, 900*time.Millisecond, cfg.AlbumWindow())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "channel: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("CHANNEL", "@fromenv")
	t.Setenv("ALLOWED_ADMINS", "1, 2,nope,3")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Bot.Token)
	assert.Equal(t, "@fromenv", cfg.Channel)
	assert.Equal(t, []int64{1, 2, 3}, cfg.Admins)
}

func TestTokenEnvExpansion(t *testing.T) {
	t.Setenv("MY_SECRET", "tok-123")
	path := writeConfig(t, "bot:\n  token: ${MY_SECRET}\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", cfg.Bot.Token)
}

func TestAlbumWindowFallback(t *testing.T) {
	cfg := Defaults()
	cfg.Album.Window = "garbage"
	assert.Equal(t, DefaultAlbumWindow, cfg.AlbumWindow())

	cfg.Album.Window = ""
	assert.Equal(t, DefaultAlbumWindow, cfg.AlbumWindow())
}

func TestParseAdmins(t *testing.T) {
	assert.Empty(t, ParseAdmins(""))
	assert.Equal(t, []int64{42}, ParseAdmins("42"))
	assert.Equal(t, []int64{1, 2}, ParseAdmins(" 1 , 2 , abc "))
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	issues := Validate(&cfg)
	require.Len(t, issues, 2) // token and channel missing

	cfg.Bot.Token = "t"
	cfg.Channel = "@c"
	assert.Empty(t, Validate(&cfg))

	cfg.Album.Window = "not-a-duration"
	cfg.Logging.Level = "loud"
	issues = Validate(&cfg)
	require.Len(t, issues, 2)
	assert.Equal(t, "album.window", issues[0].Path)
	assert.Equal(t, "logging.level", issues[1].Path)
}
