package models

import (
	"time"

	"gorm.io/gorm"
)

// Observation is a logged sky observation with its attached images
type Observation struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `gorm:"not null" json:"title"`
	Details   string    `gorm:"type:text" json:"details"`
	Location  string    `json:"location"`
	Date      time.Time `json:"date"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`

	// Relationships
	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Images []Image `gorm:"foreignKey:ObservationID;constraint:OnDelete:CASCADE" json:"images"`
}

func (o *Observation) BeforeCreate(tx *gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
