package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the root application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Emotion EmotionConfig `mapstructure:"emotion"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Spotify SpotifyConfig `mapstructure:"spotify"`
	MQTT    MQTTConfig    `mapstructure:"mqtt"`
	CORS    CORSConfig    `mapstructure:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	DataDir string `mapstructure:"data_dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// DBConfig holds database settings (SQLite).
type DBConfig struct {
	File string `mapstructure:"file"`
}

// AuthConfig holds settings for user registration and login tokens.
type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	TokenTTLMinutes int    `mapstructure:"token_ttl_minutes"`
}

// EmotionConfig holds settings for face detection and emotion inference.
// The cascade parameters are configuration, not hardcoded policy.
type EmotionConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	CascadePath   string  `mapstructure:"cascade_path"`
	ModelPath     string  `mapstructure:"model_path"`
	ScaleFactor   float64 `mapstructure:"scale_factor"`
	MinNeighbors  int     `mapstructure:"min_neighbors"`
	MinSizeWidth  int     `mapstructure:"min_size_width"`
	MinSizeHeight int     `mapstructure:"min_size_height"`
}

// GeminiConfig holds settings for the LLM recommendation backend.
type GeminiConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SpotifyConfig holds settings for the optional playlist stage.
type SpotifyConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ClientID       string `mapstructure:"client_id"`
	ClientSecret   string `mapstructure:"client_secret"`
	RedirectURL    string `mapstructure:"redirect_url"`
	UserID         string `mapstructure:"user_id"`
	RefreshToken   string `mapstructure:"refresh_token"`
	PlaylistPublic bool   `mapstructure:"playlist_public"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// MQTTConfig holds settings for the optional detection event publisher.
type MQTTConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Broker   string `mapstructure:"broker"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	ClientID string `mapstructure:"client_id"`
	Topic    string `mapstructure:"topic"`
}

// CORSConfig holds cross-origin settings for the browser frontend.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads the configuration from file, environment variables and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			log.Warnf("Config file %s does not exist, using defaults", configPath)
		} else {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			log.Infof("Config loaded from %s", configPath)
		}
	}

	// Environment variables overlay the file, e.g. MOODTUNES_GEMINI_API_KEY.
	v.AutomaticEnv()
	v.SetEnvPrefix("MOODTUNES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ensureDirectories(&cfg); err != nil {
		return nil, fmt.Errorf("failed to create required directories: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.data_dir", "/data")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	// DB defaults
	v.SetDefault("db.file", "/data/users.db")

	// Auth defaults
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl_minutes", 60)

	// Emotion pipeline defaults. The cascade parameters match the values the
	// classifier was trained against.
	v.SetDefault("emotion.enabled", true)
	v.SetDefault("emotion.cascade_path", "/models/haarcascade_frontalface_default.xml")
	v.SetDefault("emotion.model_path", "/models/emotion_basic.onnx")
	v.SetDefault("emotion.scale_factor", 1.1)
	v.SetDefault("emotion.min_neighbors", 5)
	v.SetDefault("emotion.min_size_width", 30)
	v.SetDefault("emotion.min_size_height", 30)

	// Gemini defaults
	v.SetDefault("gemini.model", "gemini-pro")
	v.SetDefault("gemini.timeout_seconds", 60)

	// Spotify defaults
	v.SetDefault("spotify.enabled", false)
	v.SetDefault("spotify.playlist_public", true)
	v.SetDefault("spotify.timeout_seconds", 30)

	// MQTT defaults
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.client_id", "moodtunes")
	v.SetDefault("mqtt.topic", "moodtunes/detections")

	// CORS defaults: the frontend runs on a separate dev server.
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// ensureDirectories creates the directories the server writes to.
func ensureDirectories(cfg *Config) error {
	dirs := []string{cfg.Server.DataDir}
	if cfg.DB.File != "" {
		dirs = append(dirs, filepath.Dir(cfg.DB.File))
	}
	if cfg.Log.File != "" {
		dirs = append(dirs, filepath.Dir(cfg.Log.File))
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("could not create directory %s: %w", dir, err)
		}
	}
	return nil
}
