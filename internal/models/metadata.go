package models

import "time"

// PhotoMetadata describes a decoded source photo. EXIF fields are zero when
// the file carries no EXIF block.
type PhotoMetadata struct {
	Format      string     `json:"format"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
	CameraMake  string     `json:"camera_make,omitempty"`
	CameraModel string     `json:"camera_model,omitempty"`
	DateTaken   *time.Time `json:"date_taken,omitempty"`
	Latitude    float64    `json:"latitude,omitempty"`
	Longitude   float64    `json:"longitude,omitempty"`
	HasGPS      bool       `json:"has_gps"`
}
