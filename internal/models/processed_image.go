package models

// SourceImage is a caller-owned image payload. Its pixel dimensions are
// unknown until it is decoded.
type SourceImage struct {
	Data     []byte
	MIMEType string
}

// NormalizedImage is the re-encoded JPEG output of a normalization.
type NormalizedImage struct {
	Data        []byte
	Width       int
	Height      int
	ContentType string
}

func (n *NormalizedImage) Size() ImageSize {
	return ImageSize{Width: n.Width, Height: n.Height}
}
