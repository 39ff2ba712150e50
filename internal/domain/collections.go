package domain

import "time"

// Collection is a named group of saved ads.
type Collection struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// DisplayName returns the description when set, otherwise the name.
func (c Collection) DisplayName() string {
	if c.Description != "" {
		return c.Description
	}
	return c.Name
}

// SavedAd is a canonical record persisted into a collection.
type SavedAd struct {
	ID         int64             `json:"id"`
	Collection string            `json:"collection"`
	Ad         CanonicalAdRecord `json:"ad"`
	Notes      string            `json:"notes"`
	SavedAt    time.Time         `json:"saved_at"`
}

// GeneratedImage records where an AI variant came from.
type GeneratedImage struct {
	ID          string    `json:"id"`
	Collection  string    `json:"collection"`
	SavedAdID   int64     `json:"saved_ad_id"`
	VariantName string    `json:"variant_name"`
	PromptText  string    `json:"prompt_text"`
	FilePath    string    `json:"file_path"`
	CreatedAt   time.Time `json:"created_at"`
}
