// Package pipeline composes face localization, emotion inference, song
// recommendation and the optional playlist stage into a single per-request
// execution. All collaborators are injected as interfaces so the pipeline can
// be exercised with fakes.
package pipeline

import (
	"context"
	"fmt"
	"image"

	"moodtunes/internal/core/emotion"
	"moodtunes/internal/core/recommend"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// FaceLocator finds the bounding box of a face in a raw encoded image.
// Implementations return ErrNoFaceDetected when zero candidates are found
// and ErrInvalidImage when the buffer cannot be decoded.
type FaceLocator interface {
	Locate(ctx context.Context, imageData []byte) (image.Rectangle, error)
}

// FaceNormalizer crops a face region and produces the normalized 48x48
// grayscale input the classifier expects, values scaled to [0,1].
type FaceNormalizer interface {
	Normalize(ctx context.Context, imageData []byte, region image.Rectangle) ([]float32, error)
}

// Classifier scores a normalized face against the emotion label set.
type Classifier interface {
	Classify(ctx context.Context, face []float32) (emotion.Prediction, error)
}

// Recommender sends a prompt to the LLM backend and returns its raw reply.
type Recommender interface {
	Recommend(ctx context.Context, prompt string) (string, error)
}

// PlaylistMaker materializes recommendations as a provider playlist.
type PlaylistMaker interface {
	CreateMoodPlaylist(ctx context.Context, mood emotion.Label, songs []recommend.Song) (*Playlist, error)
}

// Request carries the per-request inputs. All data is owned by the request
// and discarded once the response is written.
type Request struct {
	ImageData []byte
	Artist    string
	Language  string
}

// Playlist is the outcome of a successful playlist stage.
type Playlist struct {
	ID         string
	URL        string
	TrackCount int
}

// Result is the assembled pipeline output.
type Result struct {
	Emotion emotion.Label
	Detail  string // raw LLM reply
	Songs   []recommend.Song

	// Playlist is nil when the stage is disabled or failed. PlaylistErr
	// records a degraded stage; it never fails the request.
	Playlist    *Playlist
	PlaylistErr error
}

// Pipeline runs the end-to-end emotion detection flow. The playlist maker is
// optional; pass nil to skip that stage.
type Pipeline struct {
	locator     FaceLocator
	normalizer  FaceNormalizer
	classifier  Classifier
	recommender Recommender
	playlists   PlaylistMaker
}

// New wires the pipeline from its collaborators.
func New(locator FaceLocator, normalizer FaceNormalizer, classifier Classifier, recommender Recommender, playlists PlaylistMaker) *Pipeline {
	return &Pipeline{
		locator:     locator,
		normalizer:  normalizer,
		classifier:  classifier,
		recommender: recommender,
		playlists:   playlists,
	}
}

// Run executes one request through the pipeline. The first failing step
// short-circuits; no later step is attempted. The playlist stage alone is
// best-effort and only degrades the result.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if len(req.ImageData) == 0 || req.Artist == "" || req.Language == "" {
		return nil, ErrInvalidRequest
	}

	logger := log.WithField("request_id", uuid.New().String())

	region, err := p.locator.Locate(ctx, req.ImageData)
	if err != nil {
		logger.WithError(err).Warn("Face localization failed")
		return nil, err
	}
	logger.Debugf("Face detected at x=%d y=%d w=%d h=%d",
		region.Min.X, region.Min.Y, region.Dx(), region.Dy())

	face, err := p.normalizer.Normalize(ctx, req.ImageData, region)
	if err != nil {
		logger.WithError(err).WithField("region", region).Error("Face normalization failed")
		return nil, err
	}

	pred, err := p.classifier.Classify(ctx, face)
	if err != nil {
		logger.WithError(err).WithField("region", region).Error("Emotion inference failed")
		return nil, err
	}
	mood := pred.Top()
	logger.Infof("Predicted emotion: %s", mood)

	prompt := recommend.BuildPrompt(mood, req.Artist, req.Language)

	reply, err := p.recommender.Recommend(ctx, prompt)
	if err != nil {
		logger.WithError(err).Error("Recommendation call failed")
		return nil, fmt.Errorf("%w: %v", ErrRecommendationUnavailable, err)
	}

	result := &Result{
		Emotion: mood,
		Detail:  reply,
		Songs:   recommend.ParseSongs(reply),
	}
	if len(result.Songs) == 0 {
		logger.Error("Recommendation reply contained no usable lines")
		return nil, ErrRecommendationUnavailable
	}

	if p.playlists == nil {
		logger.Debug("Playlist stage disabled, skipping")
		return result, nil
	}

	playlist, err := p.playlists.CreateMoodPlaylist(ctx, mood, result.Songs)
	if err != nil {
		// Degrade gracefully: recommendations are the acceptance-critical
		// output, the playlist is best-effort.
		logger.WithError(err).Warn("Playlist creation failed, continuing without playlist")
		result.PlaylistErr = fmt.Errorf("%w: %v", ErrPlaylistUnavailable, err)
		return result, nil
	}
	logger.Infof("Playlist created: %s (%d tracks)", playlist.URL, playlist.TrackCount)
	result.Playlist = playlist

	return result, nil
}
