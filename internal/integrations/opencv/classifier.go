package opencv

import (
	"context"
	"fmt"
	"image"
	"math"
	"sync"

	"moodtunes/config"
	"moodtunes/internal/core/emotion"
	"moodtunes/internal/core/pipeline"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Classifier scores normalized faces with the trained CNN, loaded once at
// startup through the OpenCV DNN module and shared read-only afterwards.
type Classifier struct {
	net gocv.Net

	// The DNN forward pass is not assumed thread-safe; a single inference
	// lock is sufficient here, throughput is not a requirement.
	mu sync.Mutex
}

// NewClassifier loads the serialized model artifact. A load failure is fatal
// for the pipeline: the caller must not accept detection requests without a
// working classifier.
func NewClassifier(cfg config.EmotionConfig) (*Classifier, error) {
	net := gocv.ReadNet(cfg.ModelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("%w: could not load model from %s",
			pipeline.ErrModelUnavailable, cfg.ModelPath)
	}
	log.Infof("Emotion model loaded from %s", cfg.ModelPath)
	return &Classifier{net: net}, nil
}

// Classify runs the CNN over a normalized face and returns the score
// distribution over the emotion label set. The input must be exactly
// FaceSize*FaceSize values in [0,1]; a shape mismatch is a hard error,
// never silently reshaped.
func (c *Classifier) Classify(ctx context.Context, face []float32) (emotion.Prediction, error) {
	if len(face) != FaceSize*FaceSize {
		return nil, fmt.Errorf("%w: input has %d values, want %d",
			pipeline.ErrInferenceFailed, len(face), FaceSize*FaceSize)
	}

	input := gocv.NewMatWithSize(FaceSize, FaceSize, gocv.MatTypeCV32F)
	defer input.Close()
	for row := 0; row < FaceSize; row++ {
		for col := 0; col < FaceSize; col++ {
			input.SetFloatAt(row, col, face[row*FaceSize+col])
		}
	}

	// Values are already scaled to [0,1]; BlobFromImage only adds the batch
	// and channel dimensions, giving the (1,1,48,48) input the model expects.
	blob := gocv.BlobFromImage(input, 1.0, image.Pt(FaceSize, FaceSize),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	c.mu.Lock()
	c.net.SetInput(blob, "")
	prob := c.net.Forward("")
	c.mu.Unlock()
	defer prob.Close()

	if prob.Empty() || prob.Total() < len(emotion.Labels) {
		return nil, fmt.Errorf("%w: model returned %d scores, want %d",
			pipeline.ErrInferenceFailed, prob.Total(), len(emotion.Labels))
	}

	scores := make([]float32, len(emotion.Labels))
	for i := range scores {
		scores[i] = prob.GetFloatAt(0, i)
	}
	return emotion.Prediction(softmaxIfNeeded(scores)), nil
}

// Close releases the network resources.
func (c *Classifier) Close() error {
	return c.net.Close()
}

// softmaxIfNeeded turns raw logits into a probability distribution. Models
// exported with a softmax output layer already sum to one and pass through
// unchanged; the arg-max is identical either way.
func softmaxIfNeeded(scores []float32) []float32 {
	var sum float32
	valid := true
	for _, s := range scores {
		if s < 0 || s > 1 {
			valid = false
			break
		}
		sum += s
	}
	if valid && math.Abs(float64(sum)-1.0) < 0.01 {
		return scores
	}

	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	var total float64
	exps := make([]float64, len(scores))
	for i, s := range scores {
		exps[i] = math.Exp(float64(s - maxScore))
		total += exps[i]
	}
	out := make([]float32, len(scores))
	for i := range exps {
		out[i] = float32(exps[i] / total)
	}
	return out
}
