package domain

import "time"

type ScreenshotStatus string

const (
	StatusPending ScreenshotStatus = "pending"
	StatusDone    ScreenshotStatus = "done"
)

// Screenshot is one imported asset. ID is the storage identity and is never
// reused; AssetIdentifier is the opaque dedup key from the asset source and is
// empty for ad-hoc single imports.
type Screenshot struct {
	ID              string           `json:"id"`
	AssetIdentifier string           `json:"asset_identifier,omitempty"`
	OCRText         string           `json:"ocr_text,omitempty"`
	CategoryID      string           `json:"category_id,omitempty"`
	Status          ScreenshotStatus `json:"status"`
	Thumbnail       []byte           `json:"-"`
	ImagePath       string           `json:"image_path,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Classification is the final outcome attached to a screenshot: the cleaned
// text and the resolved category.
type Classification struct {
	OCRText    string `json:"ocr_text"`
	CategoryID string `json:"category_id"`
}
