package models

import (
	"time"
)

type User struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	UserID   string  `gorm:"uniqueIndex;size:50;not null" json:"user_id"` // 登录用外部 ID
	Name     string  `gorm:"size:50" json:"name"`
	Nickname string  `gorm:"uniqueIndex;size:50;not null" json:"nickname"`
	Email    *string `gorm:"uniqueIndex" json:"email"` // 可选，填写时唯一
	Password string  `gorm:"not null" json:"-"`        // bcrypt Hash
	Role     string  `gorm:"size:20;default:'user';not null" json:"role"` // user, admin
	Status   string  `gorm:"size:20;default:'active'" json:"status"`
	Deleted  bool    `gorm:"default:false;index" json:"deleted"` // 软删除标记

	// 积分/等级系统
	Points        int `gorm:"default:0" json:"points"` // 投票用积分，不允许为负
	Level         int `gorm:"default:1" json:"level"`  // 1-10，始终由 Exp 重新推导
	Exp           int `gorm:"default:0" json:"exp"`
	TotalPosts    int `gorm:"default:0" json:"total_posts"`
	TotalComments int `gorm:"default:0" json:"total_comments"`
	TotalLikes    int `gorm:"default:0" json:"total_likes"` // 收到的推荐数

	LastLoginAt *time.Time `json:"last_login_at"` // 用于每日登录经验
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
