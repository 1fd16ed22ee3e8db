package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Like records that a user liked a post. At most one exists per
// (userHandle, postId) pair.
type Like struct {
	ID         string `gorm:"primaryKey;size:36" json:"likeId"`
	PostID     string `gorm:"size:36;not null;uniqueIndex:idx_like_user_post,priority:2;index" json:"postId"`
	UserHandle string `gorm:"size:64;not null;uniqueIndex:idx_like_user_post,priority:1" json:"userHandle"`
}

func (l *Like) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
