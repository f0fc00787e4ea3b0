package services

import (
	"errors"
	"fmt"

	"moaboard/internal/db"
	"moaboard/internal/models"

	"gorm.io/gorm"
)

// 投票经济参数
const (
	VoteStake      = 5  // 每票消耗/转移的积分
	expHitReceived = 10 // 帖子收到 hit 票时作者获得的经验
)

// 投票结果动作
const (
	VoteActionVoted     = "voted"
	VoteActionCancelled = "cancelled"
	VoteActionSwitched  = "switched"
)

// 积分流水动作描述
const (
	ActionVoteCast     = "投票消耗"
	ActionVoteRefund   = "取消投票返还"
	ActionPostHit      = "帖子被推"
	ActionPostBomb     = "帖子被踩"
	ActionHitReversed  = "推票撤销"
	ActionBombReversed = "踩票撤销"
)

// VoteState 表示某个 (post, user) 对的投票状态。
type VoteState int

const (
	NoVote VoteState = iota
	VotedHit
	VotedBomb
)

func voteStateOf(voteType string) VoteState {
	switch voteType {
	case models.VoteHit:
		return VotedHit
	case models.VoteBomb:
		return VotedBomb
	}
	return NoVote
}

// voteOutcome 描述一次状态转移要执行的全部变动。
// authorDelta 按原值增减；authorClampDebit 是需要裁剪到 0 的扣除额度，
// 两者分开执行：只有 bomb 的扣除路径会裁剪，撤销推票的扣除不裁剪。
// authorRefund 单独记录旧 bomb 扣除的返还，流水里一笔一行。
type voteOutcome struct {
	next             VoteState
	action           string
	voterDelta       int
	authorDelta      int
	authorRefund     int
	authorClampDebit int
	likesDelta       int
	dislikesDelta    int
	needsStake       bool // 需要投票者余额 >= VoteStake
	grantExp         bool // 新落地的 hit 票给作者发经验
}

// resolveVote 是纯状态机：给定当前状态和新票型，返回转移结果。
// 取消不收费；换票不退旧票的积分，需要再付一次。
func resolveVote(state VoteState, voteType string) (voteOutcome, error) {
	if voteType != models.VoteHit && voteType != models.VoteBomb {
		return voteOutcome{}, fmt.Errorf("%w: vote type %q", ErrInvalidInput, voteType)
	}

	switch state {
	case NoVote:
		if voteType == models.VoteHit {
			return voteOutcome{
				next: VotedHit, action: VoteActionVoted,
				voterDelta: -VoteStake, authorDelta: VoteStake,
				likesDelta: 1, needsStake: true, grantExp: true,
			}, nil
		}
		return voteOutcome{
			next: VotedBomb, action: VoteActionVoted,
			voterDelta: -VoteStake, authorClampDebit: VoteStake,
			dislikesDelta: 1, needsStake: true,
		}, nil

	case VotedHit:
		if voteType == models.VoteHit {
			return voteOutcome{
				next: NoVote, action: VoteActionCancelled,
				voterDelta: VoteStake, authorDelta: -VoteStake,
				likesDelta: -1,
			}, nil
		}
		// hit -> bomb：先回退 hit 的作者收益，再按 bomb 扣
		return voteOutcome{
			next: VotedBomb, action: VoteActionSwitched,
			voterDelta: -VoteStake, authorDelta: -VoteStake, authorClampDebit: VoteStake,
			likesDelta: -1, dislikesDelta: 1, needsStake: true,
		}, nil

	case VotedBomb:
		if voteType == models.VoteBomb {
			return voteOutcome{
				next: NoVote, action: VoteActionCancelled,
				voterDelta: VoteStake, authorDelta: VoteStake,
				dislikesDelta: -1,
			}, nil
		}
		// bomb -> hit：返还 bomb 扣除，再按 hit 入账，流水各记一笔
		return voteOutcome{
			next: VotedHit, action: VoteActionSwitched,
			voterDelta: -VoteStake, authorRefund: VoteStake, authorDelta: VoteStake,
			likesDelta: 1, dislikesDelta: -1, needsStake: true, grantExp: true,
		}, nil
	}
	return voteOutcome{}, fmt.Errorf("%w: vote state %d", ErrInvalidInput, state)
}

// VoteResult 返回给 web 层。
type VoteResult struct {
	Action      string `json:"action"`
	PointsDelta int    `json:"points_delta"` // 投票者本次积分变动
}

// Vote 对帖子投 hit/bomb 票。整个读—改—写序列在单个事务里完成：
// 投票行、双方积分、帖子计数要么全部落地要么全部回滚。
// 余额扣除用带条件的原子 UPDATE 执行（WHERE points >= stake），
// 不在应用内存中读余额再写回，避免并发丢失更新。
func Vote(postID, voterID uint, voteType string) (*VoteResult, error) {
	var result *VoteResult
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Where("id = ? AND deleted = ?", postID, false).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: post %d", ErrNotFound, postID)
			}
			return err
		}

		if post.UserID != nil && *post.UserID == voterID {
			return fmt.Errorf("%w: cannot vote on own post", ErrForbidden)
		}

		state := NoVote
		var existing models.PostVote
		err := tx.Where("post_id = ? AND user_id = ?", postID, voterID).First(&existing).Error
		if err == nil {
			state = voteStateOf(existing.VoteType)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		out, err := resolveVote(state, voteType)
		if err != nil {
			return err
		}

		// 投票者积分：扣除带余额条件，入账直接累加
		if out.voterDelta < 0 {
			res := tx.Model(&models.User{}).
				Where("id = ? AND points >= ?", voterID, -out.voterDelta).
				UpdateColumn("points", gorm.Expr("points - ?", -out.voterDelta))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: need %d points", ErrInsufficientBalance, VoteStake)
			}
			if err := logPoints(tx, voterID, out.voterDelta, ActionVoteCast); err != nil {
				return err
			}
		} else if out.voterDelta > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", voterID).
				UpdateColumn("points", gorm.Expr("points + ?", out.voterDelta)).Error; err != nil {
				return err
			}
			if err := logPoints(tx, voterID, out.voterDelta, ActionVoteRefund); err != nil {
				return err
			}
		}

		// 投票行：状态机的唯一事实来源
		switch out.action {
		case VoteActionVoted:
			vote := models.PostVote{PostID: postID, UserID: voterID, VoteType: voteType}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		case VoteActionCancelled:
			res := tx.Delete(&models.PostVote{}, existing.ID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("vote row %d disappeared", existing.ID)
			}
		case VoteActionSwitched:
			if err := tx.Delete(&models.PostVote{}, existing.ID).Error; err != nil {
				return err
			}
			vote := models.PostVote{PostID: postID, UserID: voterID, VoteType: voteType}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		}

		// 帖子计数与投票行保持一致
		if out.likesDelta != 0 {
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes", gorm.Expr("likes + ?", out.likesDelta)).Error; err != nil {
				return err
			}
		}
		if out.dislikesDelta != 0 {
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("dislikes", gorm.Expr("dislikes + ?", out.dislikesDelta)).Error; err != nil {
				return err
			}
		}

		// 作者积分：只有 bomb 的扣除路径裁剪到 0，其余按原值增减。
		// 返还与入账合并成一条 UPDATE，但流水一笔一行。
		if post.UserID != nil {
			authorID := *post.UserID
			if total := out.authorRefund + out.authorDelta; total != 0 {
				if err := tx.Model(&models.User{}).Where("id = ?", authorID).
					UpdateColumn("points", gorm.Expr("points + ?", total)).Error; err != nil {
					return err
				}
			}
			if out.authorRefund != 0 {
				if err := logPoints(tx, authorID, out.authorRefund, ActionBombReversed); err != nil {
					return err
				}
			}
			if out.authorDelta != 0 {
				action := ActionPostHit
				if out.authorDelta < 0 {
					action = ActionHitReversed
				} else if out.action == VoteActionCancelled {
					action = ActionBombReversed
				}
				if err := logPoints(tx, authorID, out.authorDelta, action); err != nil {
					return err
				}
			}
			if out.authorClampDebit > 0 {
				if err := tx.Model(&models.User{}).Where("id = ?", authorID).
					UpdateColumn("points", gorm.Expr(
						"CASE WHEN points >= ? THEN points - ? ELSE 0 END",
						out.authorClampDebit, out.authorClampDebit)).Error; err != nil {
					return err
				}
				if err := logPoints(tx, authorID, -out.authorClampDebit, ActionPostBomb); err != nil {
					return err
				}
			}

			// 新落地的 hit 票给作者发经验并累计获赞数
			if out.grantExp {
				if _, err := addExpTx(tx, authorID, expHitReceived); err != nil {
					return err
				}
				if err := incrementStatTx(tx, authorID, StatLikes); err != nil {
					return err
				}
			}
		}

		result = &VoteResult{Action: out.action, PointsDelta: out.voterDelta}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// logPoints 在事务内追加一条积分流水。裁剪路径按名义额度记录。
func logPoints(tx *gorm.DB, userID uint, amount int, action string) error {
	entry := models.PointLog{UserID: userID, Amount: amount, Action: action}
	return tx.Create(&entry).Error
}

// VoteStatus 是投票状态查询的返回。
type VoteStatus struct {
	Voted    bool   `json:"voted"`
	VoteType string `json:"vote_type,omitempty"`
	Likes    int    `json:"likes_count"`
	Dislikes int    `json:"dislikes_count"`
	CanVote  bool   `json:"can_vote"`
}

// VoteStatusOf 查询某用户对某帖的投票状态及当前计数。
func VoteStatusOf(postID, userID uint) (*VoteStatus, error) {
	var post models.Post
	if err := db.DB.Select("likes", "dislikes").
		Where("id = ? AND deleted = ?", postID, false).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
		}
		return nil, err
	}

	status := &VoteStatus{Likes: post.Likes, Dislikes: post.Dislikes}

	var vote models.PostVote
	if err := db.DB.Where("post_id = ? AND user_id = ?", postID, userID).First(&vote).Error; err == nil {
		status.Voted = true
		status.VoteType = vote.VoteType
	}

	var user models.User
	if err := db.DB.Select("points").First(&user, userID).Error; err == nil {
		status.CanVote = user.Points >= VoteStake
	}

	return status, nil
}
