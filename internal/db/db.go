package db

import (
	"log"
	"os"

	"moaboard/internal/models"
	"moaboard/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=moaboard port=5432 sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedAdmin()
}

// Migrate 执行表结构迁移，测试环境也复用。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.PostVote{},
		&models.PostLike{},
		&models.PointLog{},
	)
}

// seedAdmin 按环境变量创建初始管理员账号（已存在则跳过）。
func seedAdmin() {
	var count int64
	DB.Model(&models.User{}).Where("role = ?", "admin").Count(&count)
	if count > 0 {
		return
	}

	adminID := os.Getenv("ADMIN_USER")
	adminPW := os.Getenv("ADMIN_PASSWORD")
	if adminID == "" || adminPW == "" {
		log.Println("ADMIN_USER/ADMIN_PASSWORD not set, skipping admin seed")
		return
	}

	hash, err := utils.HashPassword(adminPW)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}
	admin := models.User{
		UserID:   adminID,
		Name:     adminID,
		Nickname: adminID,
		Password: hash,
		Role:     "admin",
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("Failed to create admin user: %v", err)
		return
	}
	log.Printf("Initial admin user %q created", adminID)
}
