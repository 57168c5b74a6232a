package models

import (
	"time"

	"gorm.io/gorm"
)

// Image is an uploaded picture. At most one of the owner references is
// normally set, matching Category.
type Image struct {
	ID            string        `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt     time.Time     `json:"created_at"`
	URL           string        `gorm:"not null" json:"url"`
	Title         string        `json:"title,omitempty"`
	Category      ImageCategory `gorm:"type:varchar(20);default:'OTHER';index" json:"category"`
	UserID        *string       `gorm:"size:36;index" json:"user_id,omitempty"`
	GroupID       *string       `gorm:"size:36;index" json:"group_id,omitempty"`
	ObservationID *string       `gorm:"size:36;index" json:"observation_id,omitempty"`
	EventID       *string       `gorm:"size:36;index" json:"event_id,omitempty"`

	// Relationships
	Group *Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	Event *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
}

func (i *Image) BeforeCreate(tx *gorm.DB) error {
	ensureID(&i.ID)
	if i.Category == "" {
		i.Category = ImageCategoryOther
	}
	return nil
}

// Event is only stored so images can reference it
type Event struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Type        string    `gorm:"size:50" json:"type"`
	CreatedByID *string   `gorm:"size:36" json:"created_by_id,omitempty"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
