package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. Handle and email are unique.
type User struct {
	ID        string `gorm:"primaryKey;size:36" json:"userId"`
	Handle    string `gorm:"size:64;not null;uniqueIndex" json:"handle"`
	Email     string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	ImageURL  string `json:"imageUrl"`
	CreatedAt string `gorm:"size:32;not null" json:"createdAt"`
}

// BeforeCreate assigns an opaque identifier when the caller did not set one.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Identity returns the public identity derived from the account.
func (u *User) Identity() *Identity {
	return &Identity{Handle: u.Handle, ImageURL: u.ImageURL}
}

// Identity is what a verified bearer credential resolves to.
type Identity struct {
	Handle   string `json:"handle"`
	ImageURL string `json:"imageUrl"`
}
