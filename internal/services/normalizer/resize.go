package normalizer

import "math"

// FitDimensions returns the size of a width x height image scaled to fit
// inside maxWidth x maxHeight. Sizes already inside the box are returned
// unchanged. Otherwise the axis that overflows most is clamped to its bound
// and the other shrinks by the same ratio, rounded to the nearest pixel.
func FitDimensions(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	ratio := math.Min(
		float64(maxWidth)/float64(width),
		float64(maxHeight)/float64(height),
	)

	return int(math.Round(float64(width) * ratio)), int(math.Round(float64(height) * ratio))
}
