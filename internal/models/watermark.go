package models

// WatermarkRequest describes a text credit. A nil Opacity means the default;
// an explicit 0 is honored.
type WatermarkRequest struct {
	Text     string   `json:"text"`
	Position string   `json:"position" binding:"omitempty,oneof=top-left top-right bottom-left bottom-right center"`
	Opacity  *float64 `json:"opacity,omitempty" binding:"omitempty,min=0,max=1"`
}
