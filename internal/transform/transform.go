package transform

import (
	"fmt"
	"math"

	"upright/internal/services"
)

// Target frame dimensions for vertical output.
const (
	TargetWidth  = 1080
	TargetHeight = 1920
)

// Plan describes the crop and scale that turn a source frame into the
// vertical target frame. All fields are derived; a Plan is never mutated
// after construction.
type Plan struct {
	SourceWidth  int
	SourceHeight int

	CropX      int
	CropY      int
	CropWidth  int
	CropHeight int

	Zoom   float64
	ScaleX float64
	ScaleY float64

	TargetWidth  int
	TargetHeight int
}

// Compute builds the transform plan for a source frame. The crop is the
// minimal centered region matching the 9:16 target aspect, shrunk further by
// zoomHint. A zoomHint below 1.0 is clamped to 1.0; the crop is clamped so it
// never leaves source bounds nor drops below one pixel.
func Compute(srcWidth, srcHeight int, zoomHint float64) (Plan, error) {
	if srcWidth <= 0 || srcHeight <= 0 {
		return Plan{}, services.Wrap(services.ErrValidation, "transform", "compute",
			fmt.Sprintf("source dimensions %dx%d are invalid", srcWidth, srcHeight), nil)
	}

	zoom := zoomHint
	if zoom < 1.0 || math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		zoom = 1.0
	}

	cropWidth := srcWidth
	cropHeight := srcHeight
	if srcWidth*TargetHeight > srcHeight*TargetWidth {
		// Source is wider than 9:16: keep full height, crop the sides.
		cropWidth = srcHeight * TargetWidth / TargetHeight
	} else {
		// Source is narrower than 9:16: keep full width, crop top and bottom.
		cropHeight = srcWidth * TargetHeight / TargetWidth
	}

	zoomedWidth := clampInt(int(math.Round(float64(cropWidth)/zoom)), 1, srcWidth)
	zoomedHeight := clampInt(int(math.Round(float64(cropHeight)/zoom)), 1, srcHeight)

	plan := Plan{
		SourceWidth:  srcWidth,
		SourceHeight: srcHeight,
		CropX:        (srcWidth - zoomedWidth) / 2,
		CropY:        (srcHeight - zoomedHeight) / 2,
		CropWidth:    zoomedWidth,
		CropHeight:   zoomedHeight,
		Zoom:         zoom,
		ScaleX:       float64(TargetWidth) / float64(zoomedWidth),
		ScaleY:       float64(TargetHeight) / float64(zoomedHeight),
		TargetWidth:  TargetWidth,
		TargetHeight: TargetHeight,
	}
	return plan, nil
}

func clampInt(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
