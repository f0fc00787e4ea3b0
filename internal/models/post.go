package models

import (
	"time"
)

type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Board    string `gorm:"size:20;not null;index" json:"board"` // 板块 slug (invest, humor...)
	Title    string `gorm:"not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Author   string `gorm:"not null" json:"author"` // 作者昵称快照
	UserID   *uint  `gorm:"index" json:"user_id"`   // 历史数据可能没有归属用户
	Category string `gorm:"size:50" json:"category"` // 板块内的标签页（选填）

	Views    int `gorm:"default:0" json:"views"`
	Likes    int `gorm:"default:0" json:"likes"`    // hit 票计数，与 post_votes 行数保持一致
	Dislikes int `gorm:"default:0" json:"dislikes"` // bomb 票计数

	Deleted     bool  `gorm:"default:false;index" json:"deleted"`
	IsPublished *bool `json:"is_published"` // NULL 视为已发布（历史数据兼容）

	Attachments string `gorm:"size:500" json:"attachments"` // 上传文件名，逗号分隔

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 非数据库字段，用于查询时填充
	CommentCount int `gorm:"-" json:"comment_count"`
}
