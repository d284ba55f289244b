package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"moodtunes/internal/core/pipeline"
	"moodtunes/internal/integrations/mqtt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Runner executes the detection pipeline; the concrete pipeline and test
// fakes both satisfy it.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// EventPublisher publishes detection events; nil disables publishing.
type EventPublisher interface {
	Publish(event mqtt.DetectionEvent)
}

// EmotionHandler serves the detection endpoint.
type EmotionHandler struct {
	pipeline  Runner
	publisher EventPublisher
}

// NewEmotionHandler creates the emotion handler. publisher may be nil.
func NewEmotionHandler(p Runner, publisher EventPublisher) *EmotionHandler {
	return &EmotionHandler{pipeline: p, publisher: publisher}
}

// RegisterRoutes registers the detection endpoint.
func (h *EmotionHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/emotion/detect_emotion", h.DetectEmotion)
}

// DetectEmotion handles a multipart request with an image and the user's
// artist and language preferences, and responds with the detected emotion
// and song recommendations.
func (h *EmotionHandler) DetectEmotion(c *gin.Context) {
	file, _, err := c.Request.FormFile("image")
	artist := c.PostForm("artist")
	lang := c.PostForm("language")

	if err != nil || artist == "" || lang == "" {
		if file != nil {
			file.Close()
		}
		log.Error("Missing image, artist, or language")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image, artist, or language"})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image data"})
		return
	}

	// Accept BCP 47 tags ("en", "pt-BR") as well as plain names ("English");
	// tags are canonicalized to their English display name for the prompt.
	if tag, err := language.Parse(lang); err == nil {
		if name := languageDisplayName(tag); name != "" {
			lang = name
		}
	}

	result, err := h.pipeline.Run(c.Request.Context(), pipeline.Request{
		ImageData: imageData,
		Artist:    artist,
		Language:  lang,
	})
	if err != nil {
		c.JSON(statusForPipelineError(err), gin.H{"error": messageForPipelineError(err)})
		return
	}

	response := gin.H{
		"success":          true,
		"emotion_detected": result.Emotion,
		"detailed_emotion": result.Detail,
	}
	if result.Playlist != nil {
		response["playlist_url"] = result.Playlist.URL
	}

	if h.publisher != nil {
		event := mqtt.DetectionEvent{
			RequestID: uuid.New().String(),
			Emotion:   string(result.Emotion),
			Artist:    artist,
			Language:  lang,
			Timestamp: time.Now(),
		}
		if result.Playlist != nil {
			event.PlaylistURL = result.Playlist.URL
		}
		h.publisher.Publish(event)
	}

	c.JSON(http.StatusOK, response)
}

// languageDisplayName returns the English display name of a language tag,
// e.g. "en" -> "English", or "" when unknown.
func languageDisplayName(tag language.Tag) string {
	return display.English.Tags().Name(tag)
}

// messageForPipelineError returns the user-facing message for a pipeline
// failure. The well-known failures have fixed response strings that clients
// match on.
func messageForPipelineError(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest):
		return "Missing image, artist, or language"
	case errors.Is(err, pipeline.ErrInvalidImage):
		return "Invalid image format"
	case errors.Is(err, pipeline.ErrNoFaceDetected):
		return "No face detected in the image"
	case errors.Is(err, pipeline.ErrRecommendationUnavailable):
		return "Failed to get response from LLM"
	default:
		return err.Error()
	}
}

// statusForPipelineError maps the pipeline failure taxonomy to HTTP status
// codes: client-side input problems are 400, downstream failures are 500.
func statusForPipelineError(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest),
		errors.Is(err, pipeline.ErrInvalidImage),
		errors.Is(err, pipeline.ErrNoFaceDetected):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
