package pipeline

import "errors"

// Failure kinds of the detection pipeline. Every error an external call can
// raise is converted into one of these at the boundary of the step that
// issued it; handlers map them to HTTP status codes.
var (
	// ErrInvalidRequest covers missing form fields, before any step runs.
	ErrInvalidRequest = errors.New("missing image, artist, or language")

	// ErrInvalidImage covers undecodable or empty image buffers and crop
	// regions outside the image bounds.
	ErrInvalidImage = errors.New("invalid image format")

	// ErrNoFaceDetected is returned when the detector finds zero candidates.
	ErrNoFaceDetected = errors.New("no face detected in the image")

	// ErrModelUnavailable means the model artifact failed to load; the server
	// must not accept pipeline requests in this state.
	ErrModelUnavailable = errors.New("emotion model unavailable")

	// ErrInferenceFailed means a tensor could not be scored.
	ErrInferenceFailed = errors.New("emotion inference failed")

	// ErrRecommendationUnavailable means the LLM call failed, timed out, or
	// returned an unusable body.
	ErrRecommendationUnavailable = errors.New("failed to get response from LLM")

	// ErrPlaylistUnavailable marks the best-effort playlist stage failing.
	// It degrades the response, it never fails the request.
	ErrPlaylistUnavailable = errors.New("playlist creation unavailable")
)
