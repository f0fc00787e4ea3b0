package models

import (
	"time"
)

// 投票类型
const (
	VoteHit  = "hit"
	VoteBomb = "bomb"
)

// PostVote 是 (post, user) 投票状态的唯一事实来源。
// 联合唯一索引保证同一用户对同一帖子至多一行。
type PostVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_votes_post_user,priority:1" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_votes_post_user,priority:2" json:"user_id"`
	VoteType  string    `gorm:"size:10;not null" json:"vote_type"` // hit / bomb
	CreatedAt time.Time `json:"created_at"`
}
