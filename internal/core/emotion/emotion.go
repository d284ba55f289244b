// Package emotion defines the closed label set the trained classifier
// predicts over and the prediction type shared by the pipeline.
package emotion

import (
	"fmt"
	"strings"
)

// Label is one of the seven emotion categories the classifier was trained on.
type Label string

// The label order matches the output index order of the trained model.
// Changing it desynchronizes predictions from labels.
const (
	Angry    Label = "Angry"
	Disgust  Label = "Disgust"
	Fear     Label = "Fear"
	Happy    Label = "Happy"
	Sad      Label = "Sad"
	Surprise Label = "Surprise"
	Neutral  Label = "Neutral"
)

// Labels lists all labels in model output order.
var Labels = []Label{Angry, Disgust, Fear, Happy, Sad, Surprise, Neutral}

// ParseLabel maps a string to a known label, case-insensitively.
func ParseLabel(s string) (Label, error) {
	for _, l := range Labels {
		if strings.EqualFold(string(l), s) {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown emotion label: %q", s)
}

// Prediction is a dense score distribution over Labels, in label order.
type Prediction []float32

// Top returns the arg-max label. Ties break toward the lower index, which
// matches the intrinsic label ordering of the model.
func (p Prediction) Top() Label {
	best := 0
	for i := 1; i < len(p) && i < len(Labels); i++ {
		if p[i] > p[best] {
			best = i
		}
	}
	return Labels[best]
}

// Score returns the predicted score for a label, or 0 if absent.
func (p Prediction) Score(l Label) float32 {
	for i, label := range Labels {
		if label == l && i < len(p) {
			return p[i]
		}
	}
	return 0
}
