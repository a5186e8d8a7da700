package models

import "time"

type JobRequest struct {
	ImageURL  string            `json:"image_url" binding:"required,url"`
	OwnerID   string            `json:"owner_id" binding:"required"`
	Watermark *WatermarkRequest `json:"watermark,omitempty"`
}

type ProcessingJob struct {
	ID        string        `json:"id"`
	ImageURL  string        `json:"image_url"`
	OwnerID   string        `json:"owner_id"`
	Request   JobRequest    `json:"request"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Result    *UploadResult `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
