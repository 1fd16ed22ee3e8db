package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a reply attached to a post.
type Comment struct {
	ID         string `gorm:"primaryKey;size:36" json:"commentId"`
	Body       string `gorm:"type:text;not null" json:"body"`
	PostID     string `gorm:"size:36;not null;index" json:"postId"`
	UserHandle string `gorm:"size:64;not null" json:"userHandle"`
	UserImage  string `json:"userImage"`
	CreatedAt  string `gorm:"size:32;not null;index" json:"createdAt"`
}

// BeforeCreate assigns an opaque identifier when the caller did not set one.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
