package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account. A user always has a password hash; accounts
// provisioned from an external provider carry a random placeholder hash that
// is never disclosed, alongside their ExternalID.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	ExternalID   *string   `json:"googleId" gorm:"column:google_id;uniqueIndex;size:255"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"-"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasExternalID reports whether the account is bound to a provider identity.
func (u *User) HasExternalID() bool {
	return u.ExternalID != nil && *u.ExternalID != ""
}

// Identity returns the minimal identity of the user.
func (u *User) Identity() *Identity {
	return &Identity{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Identity is the minimal view of a user handed out after credential
// verification. It never carries secrets.
type Identity struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// ExternalProfile is the subset of a provider's profile used for sign-in.
type ExternalProfile struct {
	Provider    string
	ExternalID  string
	Email       string
	DisplayName string
}
