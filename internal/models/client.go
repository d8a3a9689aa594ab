package models

import "time"

// Client represents a customer being invoiced.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Name string `gorm:"size:255;not null;index" json:"name"`
	// Identification is the legal id (tax number, national id). Unique.
	Identification string `gorm:"size:50;not null;uniqueIndex" json:"identification"`

	Email   string `gorm:"size:255" json:"email,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Address string `gorm:"size:500" json:"address,omitempty"`
}
