package models

import "time"

type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageVariant is one stored rendition of an uploaded photo.
type ImageVariant struct {
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	FileSize    int64  `json:"file_size"`
	ContentType string `json:"content_type"`
}

type UploadResult struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"owner_id"`
	FileName    string         `json:"file_name"`
	Original    ImageSize      `json:"original"`
	Display     ImageVariant   `json:"display"`
	Thumbnail   ImageVariant   `json:"thumbnail"`
	Metadata    *PhotoMetadata `json:"metadata,omitempty"`
	ProcessedAt time.Time      `json:"processed_at"`
}
