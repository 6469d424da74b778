package models

import (
	"time"

	"github.com/google/uuid"
)

type Family struct {
	ID        uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string         `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Members   []FamilyMember `gorm:"foreignKey:FamilyID" json:"members,omitempty"`
}

// FamilyMember joins users to families. The composite key keeps a user in a
// family at most once.
type FamilyMember struct {
	FamilyID  uuid.UUID `gorm:"type:char(36);primaryKey" json:"family_id"`
	UserID    uuid.UUID `gorm:"type:char(36);primaryKey;index" json:"user_id"`
	IsAdmin   bool      `gorm:"not null" json:"is_admin"`
	CreatedAt time.Time `json:"joined_at"`
	Family    *Family   `gorm:"foreignKey:FamilyID" json:"-"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
