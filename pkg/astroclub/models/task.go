package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `json:"description"`
	Status       TaskStatus `gorm:"type:varchar(20);default:'PENDING'" json:"status"`
	AssignedToID *string    `gorm:"size:36;index" json:"assigned_to_id,omitempty"`

	// Relationships
	AssignedTo *User `gorm:"foreignKey:AssignedToID;constraint:OnDelete:SET NULL" json:"assigned_to,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
