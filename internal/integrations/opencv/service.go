// Package opencv implements face localization, normalization and emotion
// inference on top of the OpenCV bindings. The detector and classifier are
// process-wide singletons constructed at startup and injected into the
// pipeline.
package opencv

import (
	"context"
	"fmt"
	"image"

	"moodtunes/config"
	"moodtunes/internal/core/emotion"

	log "github.com/sirupsen/logrus"
)

// Service owns the detector and classifier lifecycle and satisfies the
// pipeline's FaceLocator, FaceNormalizer and Classifier interfaces.
type Service struct {
	cfg        config.EmotionConfig
	detector   *Detector
	classifier *Classifier
}

// NewService initializes the cascade and the model. Both must load for the
// service to come up; the server refuses pipeline requests otherwise.
func NewService(cfg config.EmotionConfig) (*Service, error) {
	if !cfg.Enabled {
		log.Info("Emotion detection is disabled in configuration")
		return nil, fmt.Errorf("emotion detection is disabled")
	}

	detector, err := NewDetector(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not initialize face detector: %w", err)
	}

	classifier, err := NewClassifier(cfg)
	if err != nil {
		detector.Close()
		return nil, fmt.Errorf("could not initialize emotion classifier: %w", err)
	}

	return &Service{cfg: cfg, detector: detector, classifier: classifier}, nil
}

// Locate finds a face in the encoded image.
func (s *Service) Locate(ctx context.Context, imageData []byte) (image.Rectangle, error) {
	return s.detector.Locate(ctx, imageData)
}

// Normalize produces the classifier input for the given face region.
func (s *Service) Normalize(ctx context.Context, imageData []byte, region image.Rectangle) ([]float32, error) {
	return s.detector.Normalize(ctx, imageData, region)
}

// Classify scores a normalized face.
func (s *Service) Classify(ctx context.Context, face []float32) (emotion.Prediction, error) {
	return s.classifier.Classify(ctx, face)
}

// Close releases all OpenCV resources.
func (s *Service) Close() error {
	if err := s.detector.Close(); err != nil {
		return err
	}
	return s.classifier.Close()
}
