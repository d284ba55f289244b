package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, `
server:
  data_dir: `+dir+`
db:
  file: `+filepath.Join(dir, "users.db")+`
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d, want 5000", cfg.Server.Port)
	}
	if !cfg.Emotion.Enabled {
		t.Error("emotion should be enabled by default")
	}
	if cfg.Emotion.ScaleFactor != 1.1 {
		t.Errorf("scale_factor = %v, want 1.1", cfg.Emotion.ScaleFactor)
	}
	if cfg.Emotion.MinNeighbors != 5 {
		t.Errorf("min_neighbors = %d, want 5", cfg.Emotion.MinNeighbors)
	}
	if cfg.Emotion.MinSizeWidth != 30 || cfg.Emotion.MinSizeHeight != 30 {
		t.Errorf("min size = %dx%d, want 30x30", cfg.Emotion.MinSizeWidth, cfg.Emotion.MinSizeHeight)
	}
	if cfg.Gemini.Model != "gemini-pro" {
		t.Errorf("gemini model = %q", cfg.Gemini.Model)
	}
	if cfg.Spotify.Enabled {
		t.Error("spotify should be disabled by default")
	}
	if cfg.MQTT.Enabled {
		t.Error("mqtt should be disabled by default")
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("cors origins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, `
server:
  host: 127.0.0.1
  port: 8080
  data_dir: `+dir+`
db:
  file: `+filepath.Join(dir, "users.db")+`
auth:
  jwt_secret: hunter2
  token_ttl_minutes: 15
emotion:
  enabled: false
spotify:
  enabled: true
  client_id: abc
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 8080 {
		t.Errorf("server = %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Auth.JWTSecret != "hunter2" || cfg.Auth.TokenTTLMinutes != 15 {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Emotion.Enabled {
		t.Error("emotion should be disabled")
	}
	if !cfg.Spotify.Enabled || cfg.Spotify.ClientID != "abc" {
		t.Errorf("spotify = %+v", cfg.Spotify)
	}
}

func TestLoadCreatesLogDirectory(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "logs", "server.log")
	path := writeConfigFile(t, `
server:
  data_dir: `+dir+`
db:
  file: `+filepath.Join(dir, "users.db")+`
log:
  file: `+logFile+`
`)

	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(logFile)); err != nil {
		t.Errorf("log directory was not created: %v", err)
	}
}
