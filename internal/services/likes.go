package services

import (
	"errors"
	"fmt"
	"log"

	"moaboard/internal/db"
	"moaboard/internal/models"

	"gorm.io/gorm"
)

// 推荐动作
const (
	LikeActionLiked   = "liked"
	LikeActionUnliked = "unliked"
)

// LikeResult 返回给 web 层。
type LikeResult struct {
	Action string `json:"action"`
	Likes  int64  `json:"likes_count"` // post_likes 的当前行数
}

// LikeToggle 切换普通推荐。与 hit/bomb 投票账本互不相干：
// 推荐数只按 post_likes 行数统计，不碰帖子的 likes/dislikes 计数列。
func LikeToggle(postID, userID uint) (*LikeResult, error) {
	var result *LikeResult
	var authorID *uint

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Where("id = ? AND deleted = ?", postID, false).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: post %d", ErrNotFound, postID)
			}
			return err
		}

		if post.UserID != nil && *post.UserID == userID {
			return fmt.Errorf("%w: cannot like own post", ErrForbidden)
		}
		authorID = post.UserID

		var existing models.PostLike
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&models.PostLike{}, existing.ID).Error; err != nil {
				return err
			}
			result = &LikeResult{Action: LikeActionUnliked}
		case errors.Is(err, gorm.ErrRecordNotFound):
			like := models.PostLike{PostID: postID, UserID: userID}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
			result = &LikeResult{Action: LikeActionLiked}
		default:
			return err
		}

		return tx.Model(&models.PostLike{}).
			Where("post_id = ?", postID).Count(&result.Likes).Error
	})
	if err != nil {
		return nil, err
	}

	// 被推荐的作者获得经验和获赞数，尽力而为，失败不影响推荐本身
	if result.Action == LikeActionLiked && authorID != nil {
		if _, err := Accrue(*authorID, EventPostLiked); err != nil {
			log.Printf("like accrual failed for user %d: %v", *authorID, err)
		}
		if err := IncrementStat(*authorID, StatLikes); err != nil {
			log.Printf("like stat failed for user %d: %v", *authorID, err)
		}
	}

	return result, nil
}

// LikeStatusOf 查询某用户是否推荐过某帖及当前推荐数。
func LikeStatusOf(postID, userID uint) (liked bool, likes int64, err error) {
	if err = db.DB.Model(&models.PostLike{}).
		Where("post_id = ?", postID).Count(&likes).Error; err != nil {
		return false, 0, err
	}
	if userID == 0 {
		return false, likes, nil
	}
	var existing models.PostLike
	e := db.DB.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
	return e == nil, likes, nil
}
