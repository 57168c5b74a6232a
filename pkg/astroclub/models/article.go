package models

import (
	"time"

	"gorm.io/gorm"
)

type Article struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Title     string        `gorm:"not null" json:"title"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	Image     string        `json:"image,omitempty"`
	Category  Category      `gorm:"type:varchar(32)" json:"category,omitempty"`
	Tags      []string      `gorm:"serializer:json;type:text" json:"tags"`
	Status    ArticleStatus `gorm:"type:varchar(20);default:'DRAFT'" json:"status"`
	AuthorID  string        `gorm:"size:36;not null;index" json:"author_id"`

	// Relationships
	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
