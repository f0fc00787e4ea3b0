package services

import (
	"errors"
	"testing"

	"moaboard/internal/db"
	"moaboard/internal/models"
)

func TestResolveVoteTransitions(t *testing.T) {
	cases := []struct {
		name     string
		state    VoteState
		voteType string
		want     voteOutcome
	}{
		{
			name: "首次推", state: NoVote, voteType: models.VoteHit,
			want: voteOutcome{
				next: VotedHit, action: VoteActionVoted,
				voterDelta: -5, authorDelta: 5,
				likesDelta: 1, needsStake: true, grantExp: true,
			},
		},
		{
			name: "首次踩", state: NoVote, voteType: models.VoteBomb,
			want: voteOutcome{
				next: VotedBomb, action: VoteActionVoted,
				voterDelta: -5, authorClampDebit: 5,
				dislikesDelta: 1, needsStake: true,
			},
		},
		{
			name: "取消推", state: VotedHit, voteType: models.VoteHit,
			want: voteOutcome{
				next: NoVote, action: VoteActionCancelled,
				voterDelta: 5, authorDelta: -5, likesDelta: -1,
			},
		},
		{
			name: "推换踩", state: VotedHit, voteType: models.VoteBomb,
			want: voteOutcome{
				next: VotedBomb, action: VoteActionSwitched,
				voterDelta: -5, authorDelta: -5, authorClampDebit: 5,
				likesDelta: -1, dislikesDelta: 1, needsStake: true,
			},
		},
		{
			name: "取消踩", state: VotedBomb, voteType: models.VoteBomb,
			want: voteOutcome{
				next: NoVote, action: VoteActionCancelled,
				voterDelta: 5, authorDelta: 5, dislikesDelta: -1,
			},
		},
		{
			name: "踩换推", state: VotedBomb, voteType: models.VoteHit,
			want: voteOutcome{
				next: VotedHit, action: VoteActionSwitched,
				voterDelta: -5, authorRefund: 5, authorDelta: 5,
				likesDelta: 1, dislikesDelta: -1, needsStake: true, grantExp: true,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveVote(tc.state, tc.voteType)
			if err != nil {
				t.Fatalf("resolveVote: %v", err)
			}
			if got != tc.want {
				t.Errorf("resolveVote(%d, %s) = %+v, want %+v", tc.state, tc.voteType, got, tc.want)
			}
		})
	}
}

func TestResolveVoteInvalidType(t *testing.T) {
	if _, err := resolveVote(NoVote, "up"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

// 推票的完整往返：先推后取消，双方积分回到原点，计数归零。
func TestVoteHitRoundTrip(t *testing.T) {
	setupTestDB(t)

	voter := createUser(t, "voter", 10)
	author := createUser(t, "author", 0)
	post := createPost(t, author, "free", "hello")

	res, err := Vote(post.ID, voter.ID, models.VoteHit)
	if err != nil {
		t.Fatalf("vote hit: %v", err)
	}
	if res.Action != VoteActionVoted || res.PointsDelta != -5 {
		t.Errorf("got action=%s delta=%d, want voted/-5", res.Action, res.PointsDelta)
	}

	if got := reloadUser(t, voter.ID).Points; got != 5 {
		t.Errorf("voter points = %d, want 5", got)
	}
	a := reloadUser(t, author.ID)
	if a.Points != 5 {
		t.Errorf("author points = %d, want 5", a.Points)
	}
	if a.Exp != 10 {
		t.Errorf("author exp = %d, want 10", a.Exp)
	}
	if a.TotalLikes != 1 {
		t.Errorf("author total_likes = %d, want 1", a.TotalLikes)
	}
	p := reloadPost(t, post.ID)
	if p.Likes != 1 || p.Dislikes != 0 {
		t.Errorf("post counters = %d/%d, want 1/0", p.Likes, p.Dislikes)
	}
	if n := countVotes(t, post.ID, models.VoteHit); n != int64(p.Likes) {
		t.Errorf("likes counter %d != vote rows %d", p.Likes, n)
	}

	// 同票型再投一次即取消
	res, err = Vote(post.ID, voter.ID, models.VoteHit)
	if err != nil {
		t.Fatalf("cancel hit: %v", err)
	}
	if res.Action != VoteActionCancelled || res.PointsDelta != 5 {
		t.Errorf("got action=%s delta=%d, want cancelled/5", res.Action, res.PointsDelta)
	}

	if got := reloadUser(t, voter.ID).Points; got != 10 {
		t.Errorf("voter points after cancel = %d, want 10", got)
	}
	a = reloadUser(t, author.ID)
	if a.Points != 0 {
		t.Errorf("author points after cancel = %d, want 0", a.Points)
	}
	// 经验和获赞数不随取消回退
	if a.Exp != 10 || a.TotalLikes != 1 {
		t.Errorf("author exp/likes after cancel = %d/%d, want 10/1", a.Exp, a.TotalLikes)
	}
	p = reloadPost(t, post.ID)
	if p.Likes != 0 || p.Dislikes != 0 {
		t.Errorf("post counters after cancel = %d/%d, want 0/0", p.Likes, p.Dislikes)
	}
	if n := countVotes(t, post.ID, models.VoteHit); n != 0 {
		t.Errorf("vote rows after cancel = %d, want 0", n)
	}
}

// 踩票对作者的扣除在余额不足时裁剪到 0，不会扣成负数。
func TestVoteBombClampsAuthor(t *testing.T) {
	setupTestDB(t)

	voter := createUser(t, "voter", 5)
	author := createUser(t, "author", 3)
	post := createPost(t, author, "free", "unlucky")

	if _, err := Vote(post.ID, voter.ID, models.VoteBomb); err != nil {
		t.Fatalf("vote bomb: %v", err)
	}

	if got := reloadUser(t, voter.ID).Points; got != 0 {
		t.Errorf("voter points = %d, want 0", got)
	}
	a := reloadUser(t, author.ID)
	if a.Points != 0 {
		t.Errorf("author points = %d, want 0 (clamped)", a.Points)
	}
	if a.Exp != 0 || a.TotalLikes != 0 {
		t.Errorf("bomb must not grant exp: exp=%d likes=%d", a.Exp, a.TotalLikes)
	}
	p := reloadPost(t, post.ID)
	if p.Likes != 0 || p.Dislikes != 1 {
		t.Errorf("post counters = %d/%d, want 0/1", p.Likes, p.Dislikes)
	}
}

func TestVoteInsufficientBalance(t *testing.T) {
	setupTestDB(t)

	voter := createUser(t, "poor", 4)
	author := createUser(t, "author", 0)
	post := createPost(t, author, "free", "hello")

	if _, err := Vote(post.ID, voter.ID, models.VoteHit); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// 失败的投票不留任何痕迹
	if got := reloadUser(t, voter.ID).Points; got != 4 {
		t.Errorf("voter points = %d, want 4", got)
	}
	if got := reloadUser(t, author.ID).Points; got != 0 {
		t.Errorf("author points = %d, want 0", got)
	}
	if n := countVotes(t, post.ID, models.VoteHit); n != 0 {
		t.Errorf("vote rows = %d, want 0", n)
	}
	var logs int64
	db.DB.Model(&models.PointLog{}).Count(&logs)
	if logs != 0 {
		t.Errorf("point logs = %d, want 0", logs)
	}
}

// 取消不需要余额：余额为 0 也能取消已投的票并拿回押注。
func TestVoteCancelNeedsNoBalance(t *testing.T) {
	setupTestDB(t)

	voter := createUser(t, "voter", 5)
	author := createUser(t, "author", 0)
	post := createPost(t, author, "free", "hello")

	if _, err := Vote(post.ID, voter.ID, models.VoteHit); err != nil {
		t.Fatalf("vote hit: %v", err)
	}
	if got := reloadUser(t, voter.ID).Points; got != 0 {
		t.Fatalf("voter points = %d, want 0", got)
	}

	res, err := Vote(post.ID, voter.ID, models.VoteHit)
	if err != nil {
		t.Fatalf("cancel with zero balance: %v", err)
	}
	if res.Action != VoteActionCancelled {
		t.Errorf("action = %s, want cancelled", res.Action)
	}
	if got := reloadUser(t, voter.ID).Points; got != 5 {
		t.Errorf("voter points after cancel = %d, want 5", got)
	}
}

// 换票要再付一次押注，旧押注不退。
func TestVoteSwitchHitToBomb(t *testing.T) {
	setupTestDB(t)

	voter := createUser(t, "voter", 10)
	author := createUser(t, "author", 0)
	post := createPost(t, author, "free", "hello")

	if _, err := Vote(post.ID, voter.ID, models.VoteHit); err != nil {
		t.Fatalf("vote hit: %v", err)
	}
	res, err := Vote(post.ID, voter.ID, models.VoteBomb)
	if err != nil {
		t.Fatalf("switch to bomb: %v", err)
	}
	if res.Action != VoteActionSwitched || res.PointsDelta != -5 {
		t.Errorf("got action=%s delta=%d, want switched/-5", res.Action, res.PointsDelta)
	}

	if got := reloadUser(t, voter.ID).Points; got != 0 {
		t.Errorf("voter points = %d, want 0", got)
	}
	// hit 的 +5 被回退，bomb 再扣 5，但此时作者只有 0，裁剪生效
	if got := reloadUser(t, author.ID).Points; got != 0 {
		t.Errorf("author points = %d, want 0", got)
	}
	p := reloadPost(t, post.ID)
	if p.Likes != 0 || p.Dislikes != 1 {
		t.Errorf("post counters = %d/%d, want 0/1", p.Likes, p.Dislikes)
	}
	if n := countVotes(t, post.ID, models.VoteBomb); n != 1 {
		t.Errorf("bomb rows = %d, want 1", n)
	}
	if n := countVotes(t, post.ID, models.VoteHit); n != 0 {
		t.Errorf("hit rows = %d, want 0", n)
	}
}

func TestVoteSwitchBombToHit(t *testing.T) {
	setupTestDB(t)

	voter := createUser(t, "voter", 10)
	author := createUser(t, "author", 20)
	post := createPost(t, author, "free", "hello")

	if _, err := Vote(post.ID, voter.ID, models.VoteBomb); err != nil {
		t.Fatalf("vote bomb: %v", err)
	}
	if got := reloadUser(t, author.ID).Points; got != 15 {
		t.Fatalf("author points after bomb = %d, want 15", got)
	}

	res, err := Vote(post.ID, voter.ID, models.VoteHit)
	if err != nil {
		t.Fatalf("switch to hit: %v", err)
	}
	if res.Action != VoteActionSwitched {
		t.Errorf("action = %s, want switched", res.Action)
	}

	if got := reloadUser(t, voter.ID).Points; got != 0 {
		t.Errorf("voter points = %d, want 0", got)
	}
	// bomb 的 -5 返还，hit 再 +5
	a := reloadUser(t, author.ID)
	if a.Points != 25 {
		t.Errorf("author points = %d, want 25", a.Points)
	}
	if a.Exp != 10 || a.TotalLikes != 1 {
		t.Errorf("switched hit must grant exp: exp=%d likes=%d", a.Exp, a.TotalLikes)
	}
	p := reloadPost(t, post.ID)
	if p.Likes != 1 || p.Dislikes != 0 {
		t.Errorf("post counters = %d/%d, want 1/0", p.Likes, p.Dislikes)
	}

	// 流水一笔一行：返还和入账分别记一条，而不是合并成 +10
	var logs []models.PointLog
	if err := db.DB.Where("user_id = ? AND amount > 0", author.ID).
		Order("id ASC").Find(&logs).Error; err != nil {
		t.Fatalf("load author logs: %v", err)
	}
	var refund, credit int
	for _, l := range logs {
		switch l.Action {
		case ActionBombReversed:
			refund += l.Amount
		case ActionPostHit:
			credit += l.Amount
		}
		if l.Amount == 10 {
			t.Errorf("composite +10 log entry found: %+v", l)
		}
	}
	if refund != 5 || credit != 5 {
		t.Errorf("author logs refund/credit = %d/%d, want 5/5", refund, credit)
	}
}

func TestVoteSelfForbidden(t *testing.T) {
	setupTestDB(t)

	author := createUser(t, "author", 100)
	post := createPost(t, author, "free", "mine")

	if _, err := Vote(post.ID, author.ID, models.VoteHit); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if got := reloadUser(t, author.ID).Points; got != 100 {
		t.Errorf("author points = %d, want 100", got)
	}
	p := reloadPost(t, post.ID)
	if p.Likes != 0 || p.Dislikes != 0 {
		t.Errorf("post counters = %d/%d, want 0/0", p.Likes, p.Dislikes)
	}
}

func TestVotePostNotFound(t *testing.T) {
	setupTestDB(t)
	voter := createUser(t, "voter", 10)

	if _, err := Vote(999, voter.ID, models.VoteHit); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// 无归属用户的历史帖子也能投票，只是没有作者侧的积分变动。
func TestVoteOrphanPost(t *testing.T) {
	setupTestDB(t)

	voter := createUser(t, "voter", 10)
	post := createPost(t, nil, "free", "orphan")

	if _, err := Vote(post.ID, voter.ID, models.VoteHit); err != nil {
		t.Fatalf("vote on orphan post: %v", err)
	}
	if got := reloadUser(t, voter.ID).Points; got != 5 {
		t.Errorf("voter points = %d, want 5", got)
	}
	if got := reloadPost(t, post.ID).Likes; got != 1 {
		t.Errorf("post likes = %d, want 1", got)
	}
}

func TestVoteWritesPointLogs(t *testing.T) {
	setupTestDB(t)

	voter := createUser(t, "voter", 10)
	author := createUser(t, "author", 0)
	post := createPost(t, author, "free", "hello")

	if _, err := Vote(post.ID, voter.ID, models.VoteHit); err != nil {
		t.Fatalf("vote hit: %v", err)
	}

	var voterLog models.PointLog
	if err := db.DB.Where("user_id = ? AND action = ?", voter.ID, ActionVoteCast).
		First(&voterLog).Error; err != nil {
		t.Fatalf("voter log missing: %v", err)
	}
	if voterLog.Amount != -5 {
		t.Errorf("voter log amount = %d, want -5", voterLog.Amount)
	}

	var authorLog models.PointLog
	if err := db.DB.Where("user_id = ? AND action = ?", author.ID, ActionPostHit).
		First(&authorLog).Error; err != nil {
		t.Fatalf("author log missing: %v", err)
	}
	if authorLog.Amount != 5 {
		t.Errorf("author log amount = %d, want 5", authorLog.Amount)
	}
}

func TestVoteStatusOf(t *testing.T) {
	setupTestDB(t)

	voter := createUser(t, "voter", 7)
	author := createUser(t, "author", 0)
	post := createPost(t, author, "free", "hello")

	status, err := VoteStatusOf(post.ID, voter.ID)
	if err != nil {
		t.Fatalf("status before vote: %v", err)
	}
	if status.Voted || !status.CanVote {
		t.Errorf("before vote: voted=%v canVote=%v, want false/true", status.Voted, status.CanVote)
	}

	if _, err := Vote(post.ID, voter.ID, models.VoteHit); err != nil {
		t.Fatalf("vote hit: %v", err)
	}

	status, err = VoteStatusOf(post.ID, voter.ID)
	if err != nil {
		t.Fatalf("status after vote: %v", err)
	}
	if !status.Voted || status.VoteType != models.VoteHit {
		t.Errorf("after vote: voted=%v type=%s", status.Voted, status.VoteType)
	}
	if status.Likes != 1 || status.Dislikes != 0 {
		t.Errorf("counters = %d/%d, want 1/0", status.Likes, status.Dislikes)
	}
	// 余额只剩 2，不够再投
	if status.CanVote {
		t.Error("canVote should be false with 2 points")
	}

	if _, err := VoteStatusOf(999, voter.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing post, got %v", err)
	}
}
