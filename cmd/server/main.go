package main

import (
	"context"
	"fmt"
	"os"

	"moodtunes/config"
	"moodtunes/internal/api/handlers"
	"moodtunes/internal/api/middleware"
	"moodtunes/internal/core/pipeline"
	"moodtunes/internal/db"
	"moodtunes/internal/integrations/gemini"
	"moodtunes/internal/integrations/mqtt"
	"moodtunes/internal/integrations/opencv"
	"moodtunes/internal/integrations/spotify"
	"moodtunes/internal/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const defaultConfigPath = "/config/config.yaml"

func main() {
	configPath := os.Getenv("MOODTUNES_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Init(cfg.Log); err != nil {
		log.Errorf("Failed to initialize logger completely: %v", err)
	}

	if cfg.Auth.JWTSecret == "" {
		log.Warn("auth.jwt_secret is empty; issued tokens are not secure")
	}

	log.Info("Initializing database...")
	database, err := db.Initialize(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	ctx := context.Background()

	// The detection pipeline only comes up when the emotion stage is enabled;
	// a model that fails to load is fatal rather than served broken.
	var detectionPipeline *pipeline.Pipeline
	var publisher *mqtt.Publisher

	if cfg.Emotion.Enabled {
		visionService, err := opencv.NewService(cfg.Emotion)
		if err != nil {
			log.Fatalf("Failed to initialize emotion detection: %v", err)
		}
		defer visionService.Close()

		geminiClient, err := gemini.NewClient(ctx, cfg.Gemini)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}

		var playlistMaker pipeline.PlaylistMaker
		if cfg.Spotify.Enabled {
			spotifyClient, err := spotify.NewClient(ctx, cfg.Spotify)
			if err != nil {
				log.Warnf("Failed to initialize Spotify client: %v. Continuing without the playlist stage.", err)
			} else {
				playlistMaker = spotifyClient
			}
		} else {
			log.Info("Playlist stage is disabled in config.")
		}

		detectionPipeline = pipeline.New(visionService, visionService, visionService, geminiClient, playlistMaker)

		if cfg.MQTT.Enabled {
			publisher, err = mqtt.NewPublisher(cfg.MQTT)
			if err != nil {
				log.Warnf("Failed to initialize MQTT publisher: %v. Continuing without MQTT.", err)
				publisher = nil
			} else {
				defer publisher.Stop()
			}
		} else {
			log.Info("MQTT is disabled in config.")
		}
	} else {
		log.Warn("Emotion detection is disabled; only auth and status endpoints are served.")
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORS.AllowedOrigins) == 1 && cfg.CORS.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	systemHandler := handlers.NewSystemHandler(cfg)
	systemHandler.RegisterRoutes(router)

	authHandler := handlers.NewAuthHandler(database, cfg.Auth)
	authHandler.RegisterRoutes(router)

	protected := router.Group("/api")
	protected.Use(middleware.RequireAuth(cfg.Auth))
	authHandler.RegisterProtectedRoutes(protected)

	if detectionPipeline != nil {
		var eventPublisher handlers.EventPublisher
		if publisher != nil {
			eventPublisher = publisher
		}
		emotionHandler := handlers.NewEmotionHandler(detectionPipeline, eventPublisher)
		emotionHandler.RegisterRoutes(router)
	}

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Infof("Starting server on %s", serverAddr)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}

	log.Info("Server stopped.")
}
