package opencv

import (
	"context"
	"fmt"
	"image"
	"sync"

	"moodtunes/config"
	"moodtunes/internal/core/pipeline"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// FaceSize is the side length of the normalized face input.
const FaceSize = 48

// Detector locates faces with a Haar cascade and normalizes them into the
// fixed grid the classifier expects.
type Detector struct {
	cfg     config.EmotionConfig
	cascade gocv.CascadeClassifier

	// detectMultiScale is not safe for concurrent use on a shared cascade.
	mu sync.Mutex
}

// NewDetector loads the cascade from the configured path.
func NewDetector(cfg config.EmotionConfig) (*Detector, error) {
	cascade := gocv.NewCascadeClassifier()
	if !cascade.Load(cfg.CascadePath) {
		cascade.Close()
		return nil, fmt.Errorf("could not load face cascade from %s", cfg.CascadePath)
	}
	log.Infof("Face cascade loaded from %s", cfg.CascadePath)
	return &Detector{cfg: cfg, cascade: cascade}, nil
}

// Locate finds the bounding box of a face in the encoded image. When several
// candidates exist the first one in the detector's native scan order wins;
// when none exist it returns pipeline.ErrNoFaceDetected.
func (d *Detector) Locate(ctx context.Context, imageData []byte) (image.Rectangle, error) {
	img, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil {
		return image.Rectangle{}, pipeline.ErrInvalidImage
	}
	// Undecodable bytes yield an allocated empty Mat with no error; it still
	// owns native memory and must be closed.
	defer img.Close()
	if img.Empty() {
		return image.Rectangle{}, pipeline.ErrInvalidImage
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	minSize := image.Pt(d.cfg.MinSizeWidth, d.cfg.MinSizeHeight)

	d.mu.Lock()
	faces := d.cascade.DetectMultiScaleWithParams(
		gray, d.cfg.ScaleFactor, d.cfg.MinNeighbors, 0, minSize, image.Pt(0, 0))
	d.mu.Unlock()

	if len(faces) == 0 {
		return image.Rectangle{}, pipeline.ErrNoFaceDetected
	}
	if len(faces) > 1 {
		log.Debugf("Detected %d faces, using the first", len(faces))
	}
	return faces[0], nil
}

// Normalize crops the region out of the grayscale image, resizes it to
// FaceSize x FaceSize with bilinear interpolation and rescales the pixel
// intensities to [0,1]. The returned slice is row-major, length FaceSize^2.
func (d *Detector) Normalize(ctx context.Context, imageData []byte, region image.Rectangle) ([]float32, error) {
	img, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil {
		return nil, pipeline.ErrInvalidImage
	}
	defer img.Close()
	if img.Empty() {
		return nil, pipeline.ErrInvalidImage
	}

	bounds := image.Rect(0, 0, img.Cols(), img.Rows())
	if region.Dx() <= 0 || region.Dy() <= 0 || !region.In(bounds) {
		return nil, fmt.Errorf("%w: face region %v outside image bounds %v",
			pipeline.ErrInvalidImage, region, bounds)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	face := gray.Region(region)
	defer face.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(face, &resized, image.Pt(FaceSize, FaceSize), 0, 0, gocv.InterpolationLinear)

	scaled := gocv.NewMat()
	defer scaled.Close()
	resized.ConvertToWithParams(&scaled, gocv.MatTypeCV32F, 1.0/255.0, 0)

	data, err := scaled.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("could not read normalized face data: %w", err)
	}
	out := make([]float32, len(data))
	copy(out, data)

	if len(out) != FaceSize*FaceSize {
		return nil, fmt.Errorf("normalized face has %d values, want %d", len(out), FaceSize*FaceSize)
	}
	return out, nil
}

// Close releases the cascade resources.
func (d *Detector) Close() error {
	return d.cascade.Close()
}
