package model

import "time"

// SEOSetting holds per-page metadata consumed by the public site.
type SEOSetting struct {
	ID           string    `json:"id"`
	PagePath     string    `json:"page_path"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Keywords     []string  `json:"keywords"`
	OGImageURL   *string   `json:"og_image_url,omitempty"`
	CanonicalURL *string   `json:"canonical_url,omitempty"`
	NoIndex      bool      `json:"no_index"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateSEOSettingRequest is the payload for creating page metadata.
type CreateSEOSettingRequest struct {
	PagePath     string   `json:"page_path" binding:"required,startswith=/,max=255"`
	Title        string   `json:"title" binding:"required,max=120"`
	Description  string   `json:"description" binding:"max=320"`
	Keywords     []string `json:"keywords" binding:"max=30,dive,max=60"`
	OGImageURL   *string  `json:"og_image_url" binding:"omitempty,max=500"`
	CanonicalURL *string  `json:"canonical_url" binding:"omitempty,url,max=500"`
	NoIndex      bool     `json:"no_index"`
	IsActive     *bool    `json:"is_active"`
}

// UpdateSEOSettingRequest is a partial update; nil fields are left unchanged.
type UpdateSEOSettingRequest struct {
	PagePath     *string  `json:"page_path" binding:"omitempty,startswith=/,max=255"`
	Title        *string  `json:"title" binding:"omitempty,min=1,max=120"`
	Description  *string  `json:"description" binding:"omitempty,max=320"`
	Keywords     []string `json:"keywords" binding:"omitempty,max=30,dive,max=60"`
	OGImageURL   *string  `json:"og_image_url" binding:"omitempty,max=500"`
	CanonicalURL *string  `json:"canonical_url" binding:"omitempty,url,max=500"`
	NoIndex      *bool    `json:"no_index"`
	IsActive     *bool    `json:"is_active"`
}
