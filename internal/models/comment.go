package models

import (
	"time"
)

type Comment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	PostID    uint       `gorm:"not null;index" json:"post_id"`
	Author    string     `gorm:"not null" json:"author"` // 作者昵称
	Content   string     `gorm:"type:text;not null" json:"content"`
	Deleted   bool       `gorm:"default:false;index" json:"deleted"`
	CreatedAt time.Time  `json:"created_at"`
	EditedAt  *time.Time `json:"edited_at"` // 仅在被编辑后填充
}
