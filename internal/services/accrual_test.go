package services

import (
	"errors"
	"testing"

	"moaboard/internal/db"
	"moaboard/internal/models"
)

func TestAccrueExpRules(t *testing.T) {
	cases := []struct {
		kind EventKind
		exp  int
	}{
		{EventPostCreated, 10},
		{EventCommentCreated, 3},
		{EventPostLiked, 5},
		{EventCommentLiked, 2},
		{EventDailyLogin, 1},
		{EventWeeklyActive, 5},
	}

	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			setupTestDB(t)
			user := createUser(t, "u", 0)

			leveledUp, err := Accrue(user.ID, tc.kind)
			if err != nil {
				t.Fatalf("accrue: %v", err)
			}
			if leveledUp {
				t.Error("should not level up from zero exp")
			}
			if got := reloadUser(t, user.ID).Exp; got != tc.exp {
				t.Errorf("exp = %d, want %d", got, tc.exp)
			}
		})
	}
}

func TestAccrueUnknownKind(t *testing.T) {
	setupTestDB(t)
	user := createUser(t, "u", 0)

	if _, err := Accrue(user.ID, EventKind("mystery")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAccrueMissingUser(t *testing.T) {
	setupTestDB(t)

	if _, err := Accrue(42, EventPostCreated); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// 经验跨过门槛时升级，等级始终与经验一致。
func TestAccrueLevelUp(t *testing.T) {
	setupTestDB(t)
	user := createUser(t, "u", 0)
	db.DB.Model(user).Updates(map[string]interface{}{"exp": 95, "level": 1})

	leveledUp, err := Accrue(user.ID, EventPostCreated)
	if err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if !leveledUp {
		t.Error("expected level up crossing 100 exp")
	}
	u := reloadUser(t, user.ID)
	if u.Exp != 105 || u.Level != 2 {
		t.Errorf("exp/level = %d/%d, want 105/2", u.Exp, u.Level)
	}

	// 再来一次不跨门槛，不算升级
	leveledUp, err = Accrue(user.ID, EventDailyLogin)
	if err != nil {
		t.Fatalf("accrue: %v", err)
	}
	if leveledUp {
		t.Error("no threshold crossed, should not report level up")
	}
}

func TestIncrementStat(t *testing.T) {
	setupTestDB(t)
	user := createUser(t, "u", 0)

	for i := 0; i < 3; i++ {
		if err := IncrementStat(user.ID, StatPosts); err != nil {
			t.Fatalf("increment posts: %v", err)
		}
	}
	if err := IncrementStat(user.ID, StatComments); err != nil {
		t.Fatalf("increment comments: %v", err)
	}

	u := reloadUser(t, user.ID)
	if u.TotalPosts != 3 || u.TotalComments != 1 || u.TotalLikes != 0 {
		t.Errorf("stats = %d/%d/%d, want 3/1/0", u.TotalPosts, u.TotalComments, u.TotalLikes)
	}

	if err := IncrementStat(user.ID, StatKind("bogus")); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if err := IncrementStat(42, StatPosts); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLevelInfo(t *testing.T) {
	setupTestDB(t)
	user := createUser(t, "bamboo", 33)
	db.DB.Model(user).Updates(map[string]interface{}{
		"exp": 150, "level": 2, "total_posts": 4, "total_likes": 7,
	})

	info, err := LevelInfo(user.ID)
	if err != nil {
		t.Fatalf("level info: %v", err)
	}
	if info.Nickname != "bamboo" || info.Level != 2 || info.Exp != 150 {
		t.Errorf("info = %+v", info)
	}
	if info.NextLevelExp != 300 {
		t.Errorf("next level exp = %d, want 300", info.NextLevelExp)
	}
	if info.ProgressPercent != 25.0 {
		t.Errorf("progress = %.1f, want 25.0", info.ProgressPercent)
	}
	if info.TotalPosts != 4 || info.TotalLikes != 7 || info.Points != 33 {
		t.Errorf("stats in info = %+v", info)
	}

	// 软删除用户查不到
	var deleted models.User
	db.DB.First(&deleted, user.ID)
	db.DB.Model(&deleted).Update("deleted", true)
	if _, err := LevelInfo(user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for deleted user, got %v", err)
	}
}
