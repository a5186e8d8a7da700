package normalizer

import "errors"

// ErrInvalidRequest is returned for non-positive bounds or a quality outside (0, 1].
var ErrInvalidRequest = errors.New("invalid resize request")

// ErrTooManyPixels is wrapped by a DecodeError when the declared dimensions
// exceed the configured pixel limit.
var ErrTooManyPixels = errors.New("image has too many pixels")

// DecodeError reports that the source could not be decoded as an image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "failed to decode image: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports that the JPEG output could not be produced.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return "failed to encode image: " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err, or anything it wraps, is a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// IsEncodeError reports whether err, or anything it wraps, is an *EncodeError.
func IsEncodeError(err error) bool {
	var ee *EncodeError
	return errors.As(err, &ee)
}
