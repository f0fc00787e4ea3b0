package services

import (
	"errors"
	"fmt"

	"moaboard/internal/db"
	"moaboard/internal/level"
	"moaboard/internal/models"

	"gorm.io/gorm"
)

// EventKind 是会产生经验值的活动事件。
type EventKind string

const (
	EventPostCreated    EventKind = "post_created"
	EventCommentCreated EventKind = "comment_created"
	EventPostLiked      EventKind = "post_liked"
	EventCommentLiked   EventKind = "comment_liked"
	EventDailyLogin     EventKind = "daily_login"
	EventWeeklyActive   EventKind = "weekly_active"
)

// 每类事件的经验值
var expRules = map[EventKind]int{
	EventPostCreated:    10,
	EventCommentCreated: 3,
	EventPostLiked:      5,
	EventCommentLiked:   2,
	EventDailyLogin:     1,
	EventWeeklyActive:   5,
}

// StatKind 是用户活动计数的类别。
type StatKind string

const (
	StatPosts    StatKind = "posts"
	StatComments StatKind = "comments"
	StatLikes    StatKind = "likes"
)

var statColumns = map[StatKind]string{
	StatPosts:    "total_posts",
	StatComments: "total_comments",
	StatLikes:    "total_likes",
}

// Accrue 给用户累加事件经验并重算等级，返回是否升级。
// 调用方把它当作尽力而为的副通道：失败只记日志，不影响主操作。
func Accrue(userID uint, kind EventKind) (bool, error) {
	amount, ok := expRules[kind]
	if !ok {
		return false, fmt.Errorf("%w: event kind %q", ErrInvalidInput, kind)
	}

	leveledUp := false
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		up, err := addExpTx(tx, userID, amount)
		leveledUp = up
		return err
	})
	return leveledUp, err
}

// addExpTx 在事务内原子累加经验，并按累加后的经验重算等级。
// 经验累加是单条 exp = exp + ? 语句，等级永远由新经验推导，
// 保证任何变动之后 level == level.Of(exp) 成立。
func addExpTx(tx *gorm.DB, userID uint, amount int) (bool, error) {
	res := tx.Model(&models.User{}).
		Where("id = ? AND deleted = ?", userID, false).
		UpdateColumn("exp", gorm.Expr("exp + ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	var user models.User
	if err := tx.Select("exp", "level").First(&user, userID).Error; err != nil {
		return false, err
	}

	newLevel := level.Of(user.Exp)
	if newLevel != user.Level {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("level", newLevel).Error; err != nil {
			return false, err
		}
	}
	return newLevel > user.Level, nil
}

// IncrementStat 给用户的某项活动计数原子加一。
func IncrementStat(userID uint, kind StatKind) error {
	return incrementStatTx(db.DB, userID, kind)
}

func incrementStatTx(tx *gorm.DB, userID uint, kind StatKind) error {
	column, ok := statColumns[kind]
	if !ok {
		return fmt.Errorf("%w: stat kind %q", ErrInvalidInput, kind)
	}
	res := tx.Model(&models.User{}).
		Where("id = ? AND deleted = ?", userID, false).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	return nil
}

// LevelSummary 汇总用户的等级信息，供个人页展示。
type LevelSummary struct {
	UserID          uint    `json:"user_id"`
	Nickname        string  `json:"nickname"`
	Level           int     `json:"level"`
	LevelName       string  `json:"level_name"`
	Exp             int     `json:"exp"`
	NextLevelExp    int     `json:"next_level_exp"`
	ProgressPercent float64 `json:"progress_percent"`
	TotalPosts      int     `json:"total_posts"`
	TotalComments   int     `json:"total_comments"`
	TotalLikes      int     `json:"total_likes"`
	Points          int     `json:"points"`
}

// LevelInfo 查询用户的等级信息。
func LevelInfo(userID uint) (*LevelSummary, error) {
	var user models.User
	if err := db.DB.Where("id = ? AND deleted = ?", userID, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}

	return &LevelSummary{
		UserID:          user.ID,
		Nickname:        user.Nickname,
		Level:           user.Level,
		LevelName:       level.Name(user.Level),
		Exp:             user.Exp,
		NextLevelExp:    level.NextExp(user.Level),
		ProgressPercent: level.Progress(user.Exp, user.Level),
		TotalPosts:      user.TotalPosts,
		TotalComments:   user.TotalComments,
		TotalLikes:      user.TotalLikes,
		Points:          user.Points,
	}, nil
}
