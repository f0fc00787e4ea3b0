package services

import (
	"fmt"
	"testing"

	"moaboard/internal/db"
	"moaboard/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 建一个测试私有的内存库并替换全局连接。
// 每个测试用独立的共享缓存库名，互不串数据。
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	old := db.DB
	db.DB = gdb
	t.Cleanup(func() {
		sqlDB, _ := gdb.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		db.DB = old
	})
}

func createUser(t *testing.T, nickname string, points int) *models.User {
	t.Helper()
	user := models.User{
		UserID:   nickname,
		Name:     nickname,
		Nickname: nickname,
		Password: "x",
		Points:   points,
		Level:    1,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", nickname, err)
	}
	return &user
}

func createPost(t *testing.T, author *models.User, board, title string) *models.Post {
	t.Helper()
	published := true
	post := models.Post{
		Board:       board,
		Title:       title,
		Content:     "content of " + title,
		IsPublished: &published,
	}
	if author != nil {
		post.Author = author.Nickname
		post.UserID = &author.ID
	} else {
		post.Author = "ghost"
	}
	if err := db.DB.Create(&post).Error; err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return &post
}

func reloadUser(t *testing.T, id uint) *models.User {
	t.Helper()
	var user models.User
	if err := db.DB.First(&user, id).Error; err != nil {
		t.Fatalf("reload user %d: %v", id, err)
	}
	return &user
}

func reloadPost(t *testing.T, id uint) *models.Post {
	t.Helper()
	var post models.Post
	if err := db.DB.First(&post, id).Error; err != nil {
		t.Fatalf("reload post %d: %v", id, err)
	}
	return &post
}

func countVotes(t *testing.T, postID uint, voteType string) int64 {
	t.Helper()
	var n int64
	db.DB.Model(&models.PostVote{}).
		Where("post_id = ? AND vote_type = ?", postID, voteType).Count(&n)
	return n
}
