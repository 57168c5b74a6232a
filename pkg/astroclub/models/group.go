package models

import (
	"time"

	"gorm.io/gorm"
)

// Group is a club group. Members are removed together with the group.
type Group struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Name        string      `gorm:"size:191;not null" json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image,omitempty"`
	Status      GroupStatus `gorm:"type:varchar(20);default:'ACTIVE'" json:"status"`
	Rating      float64     `json:"rating"`

	// Relationships
	Members []GroupMember `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	ensureID(&g.ID)
	return nil
}

// Leader returns the earliest-joined ADMIN member, or nil when the group
// has none. Members must be loaded.
func (g Group) Leader() *GroupMember {
	var leader *GroupMember
	for i := range g.Members {
		m := &g.Members[i]
		if m.Role != GroupRoleAdmin {
			continue
		}
		if leader == nil || m.JoinedAt.Before(leader.JoinedAt) {
			leader = m
		}
	}
	return leader
}

// GroupMember links a user to a group
type GroupMember struct {
	ID       string       `gorm:"primaryKey;size:36" json:"id"`
	UserID   string       `gorm:"size:36;not null;uniqueIndex:idx_member_user_group" json:"user_id"`
	GroupID  string       `gorm:"size:36;not null;uniqueIndex:idx_member_user_group" json:"group_id"`
	Role     GroupRole    `gorm:"type:varchar(20);default:'MEMBER'" json:"role"`
	Status   MemberStatus `gorm:"type:varchar(20);default:'OFFLINE'" json:"status"`
	JoinedAt time.Time    `gorm:"index" json:"joined_at"`

	// Relationships
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (m *GroupMember) BeforeCreate(tx *gorm.DB) error {
	ensureID(&m.ID)
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return nil
}
