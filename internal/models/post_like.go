package models

import (
	"time"
)

// PostLike 是普通推荐功能的记录，与 hit/bomb 投票账本相互独立。
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_post_user,priority:1" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_post_user,priority:2" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
