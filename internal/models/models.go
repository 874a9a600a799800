package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the credential-store record. PasswordHash never leaves the
// store boundary: it is excluded from JSON and from every projection.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	FullName     string `gorm:"size:128;not null"`
	Email        string `gorm:"uniqueIndex;size:254;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	ProfilePic   string `gorm:"size:512"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Message is a direct message between two users. Immutable after
// creation; at least one of Content and Image is non-empty.
type Message struct {
	ID         string `gorm:"primaryKey;size:36"`
	SenderID   string `gorm:"index:idx_msg_pair;size:36;not null"`
	ReceiverID string `gorm:"index:idx_msg_pair;size:36;not null"`
	Content    string `gorm:"type:text"`
	Image      string `gorm:"size:512"`
	CreatedAt  time.Time
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
