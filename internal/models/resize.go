package models

// ResizeRequest is the bounding box and quality for one normalization.
// Quality is a fraction in (0, 1]; output is always JPEG.
type ResizeRequest struct {
	MaxWidth  int     `json:"max_width"`
	MaxHeight int     `json:"max_height"`
	Quality   float64 `json:"quality"`
}

type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

const ContentTypeJPEG = "image/jpeg"
