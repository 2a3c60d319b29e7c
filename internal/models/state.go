package models

import (
	"time"

	"gorm.io/gorm"
)

// RNGStateRecord stores a serialized RNG snapshot under a store-level tag
type RNGStateRecord struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Tag       string         `gorm:"uniqueIndex;not null" json:"tag"` // e.g. "rng-store-v3"
	Payload   string         `gorm:"type:text;not null" json:"payload"`
}

// SoundModel is an entry of the sound-model bank.
// Only ID and Name are consumed by model selection.
type SoundModel struct {
	ID        string         `gorm:"primarykey;size:64" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"not null" json:"name"`
	Tags      string         `json:"tags,omitempty"` // comma separated
	Source    string         `json:"source,omitempty"`
}
