package handlers

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"moaboard/internal/db"
	"moaboard/internal/middleware"
	"moaboard/internal/models"
	"moaboard/internal/services"
	"moaboard/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// safeNext 只允许站内相对路径，防止开放重定向
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	if u, err := url.Parse(next); err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, safeNext(c.Query("next")))
		return
	}
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Next": c.Query("next")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	userID := strings.TrimSpace(c.PostForm("user_id"))
	password := c.PostForm("password")
	next := c.DefaultPostForm("next", "/")

	if userID == "" {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "请输入账号", "Next": next})
		return
	}

	var user models.User
	err := db.DB.Where("user_id = ? AND deleted = ?", userID, false).First(&user).Error
	if err != nil || !utils.CheckPassword(password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "账号或密码不正确", "Next": next})
		return
	}

	session := sessions.DefaultMany(c, middleware.UserSessionName)
	session.Set("user_id", user.ID)
	if err := session.Save(); err != nil {
		RenderError(c, http.StatusInternalServerError, "登录失败，请重试")
		return
	}

	// 当天首次登录发经验，失败只记日志
	if firstLoginToday(&user) {
		now := time.Now()
		db.DB.Model(&user).UpdateColumn("last_login_at", now)
		go func(uid uint) {
			if _, err := services.Accrue(uid, services.EventDailyLogin); err != nil {
				log.Printf("daily login accrual failed for user %d: %v", uid, err)
			}
		}(user.ID)
	} else {
		db.DB.Model(&user).UpdateColumn("last_login_at", time.Now())
	}

	c.Redirect(http.StatusFound, safeNext(next))
}

func firstLoginToday(user *models.User) bool {
	if user.LastLoginAt == nil {
		return true
	}
	now := time.Now()
	y1, m1, d1 := user.LastLoginAt.Date()
	y2, m2, d2 := now.Date()
	return y1 != y2 || m1 != m2 || d1 != d2
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, safeNext(c.Query("next")))
		return
	}
	Render(c, http.StatusOK, "auth/register.html", gin.H{"Next": c.Query("next")})
}

func (h *AuthHandler) Register(c *gin.Context) {
	userID := strings.TrimSpace(c.PostForm("user_id"))
	nickname := strings.TrimSpace(c.PostForm("nickname"))
	email := strings.ToLower(strings.TrimSpace(c.PostForm("email")))
	password := c.PostForm("password")
	confirm := c.PostForm("password_confirm")
	next := c.DefaultPostForm("next", "/")

	fail := func(msg string) {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{
			"Error": msg, "Next": next,
			"UserID": userID, "Nickname": nickname, "Email": email,
		})
	}

	if len(userID) < 3 {
		fail("账号至少 3 个字符")
		return
	}
	if len(nickname) < 2 {
		fail("昵称至少 2 个字符")
		return
	}
	if len(password) < 6 {
		fail("密码至少 6 位")
		return
	}
	if password != confirm {
		fail("两次输入的密码不一致")
		return
	}

	var count int64
	db.DB.Model(&models.User{}).Where("user_id = ? AND deleted = ?", userID, false).Count(&count)
	if count > 0 {
		fail("账号已被使用")
		return
	}
	db.DB.Model(&models.User{}).Where("nickname = ? AND deleted = ?", nickname, false).Count(&count)
	if count > 0 {
		fail("昵称已被使用")
		return
	}
	var emailPtr *string
	if email != "" {
		db.DB.Model(&models.User{}).Where("email = ? AND deleted = ?", email, false).Count(&count)
		if count > 0 {
			fail("邮箱已被注册")
			return
		}
		emailPtr = &email
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "注册失败，请重试")
		return
	}

	user := models.User{
		UserID:   userID,
		Name:     nickname,
		Nickname: nickname,
		Email:    emailPtr,
		Password: hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		fail("注册失败，账号或昵称可能已被占用")
		return
	}

	session := sessions.DefaultMany(c, middleware.UserSessionName)
	session.Set("user_id", user.ID)
	session.Save()

	c.Redirect(http.StatusFound, safeNext(next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.DefaultMany(c, middleware.UserSessionName)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}

// CheckDuplicate 注册页的重名检查接口
func (h *AuthHandler) CheckDuplicate(c *gin.Context) {
	kind := c.Query("type")
	value := strings.TrimSpace(c.Query("value"))
	if len(value) < 2 {
		c.JSON(http.StatusOK, gin.H{"available": false, "message": "至少输入 2 个字符"})
		return
	}

	var column string
	switch kind {
	case "user_id":
		column = "user_id"
	case "nickname":
		column = "nickname"
	case "email":
		column = "email"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"available": false, "message": "未知的检查类型"})
		return
	}

	var count int64
	db.DB.Model(&models.User{}).
		Where(column+" = ? AND deleted = ?", value, false).Count(&count)
	if count > 0 {
		c.JSON(http.StatusOK, gin.H{"available": false, "message": "已被使用"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true, "message": "可以使用"})
}
