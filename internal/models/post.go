// Package models contains the domain types shared across the firenet API.
package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a short text published by a user. Counters are maintained by the
// store and never drop below zero.
type Post struct {
	ID           string `gorm:"primaryKey;size:36" json:"postId"`
	Body         string `gorm:"type:text;not null" json:"body"`
	UserHandle   string `gorm:"size:64;not null;index" json:"userHandle"`
	UserImage    string `json:"userImage"`
	CreatedAt    string `gorm:"size:32;not null;index" json:"createdAt"`
	LikeCount    int    `gorm:"not null" json:"likeCount"`
	CommentCount int    `gorm:"not null" json:"commentCount"`
}

// BeforeCreate assigns an opaque identifier when the caller did not set one.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PostDetail is a post together with its comments, newest first.
type PostDetail struct {
	*Post
	Comments []*Comment `json:"comments"`
}
