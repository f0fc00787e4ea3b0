package handlers

import (
	"net/http"
	"strings"

	"moaboard/internal/boards"
	"moaboard/internal/db"
	"moaboard/internal/level"
	"moaboard/internal/middleware"
	"moaboard/internal/models"
	"moaboard/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// ShowLogin 管理后台登录页 GET /admin/login
func (h *AdminHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "admin/login.html", gin.H{"Title": "管理员登录"})
}

// Login 管理后台登录 POST /admin/login
// 只有 role=admin 的账号可以进入，会话与前台独立
func (h *AdminHandler) Login(c *gin.Context) {
	userID := strings.TrimSpace(c.PostForm("user_id"))
	password := c.PostForm("password")

	var user models.User
	err := db.DB.Where("user_id = ? AND deleted = ?", userID, false).First(&user).Error
	if err != nil || user.Role != "admin" || !utils.CheckPassword(password, user.Password) {
		c.HTML(http.StatusUnauthorized, "admin/login.html", gin.H{
			"Title": "管理员登录",
			"Error": "账号或密码错误",
		})
		return
	}

	session := sessions.DefaultMany(c, middleware.AdminSessionName)
	session.Set("admin_logged_in", true)
	session.Set("admin_user_id", user.ID)
	if err := session.Save(); err != nil {
		c.HTML(http.StatusInternalServerError, "admin/login.html", gin.H{
			"Title": "管理员登录",
			"Error": "会话保存失败",
		})
		return
	}

	c.Redirect(http.StatusFound, adminNext(c.Query("next")))
}

// adminNext 校正后台登录的跳转目标：站外或空值一律回后台首页
func adminNext(raw string) string {
	next := safeNext(raw)
	if next == "/" {
		return "/admin"
	}
	return next
}

// Logout 管理后台退出 GET /admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	session := sessions.DefaultMany(c, middleware.AdminSessionName)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/admin/login")
}

// Dashboard 后台首页 GET /admin
func (h *AdminHandler) Dashboard(c *gin.Context) {
	var userCount, postCount, commentCount int64
	db.DB.Model(&models.User{}).Where("deleted = ?", false).Count(&userCount)
	db.DB.Model(&models.Post{}).Where("deleted = ?", false).Count(&postCount)
	db.DB.Model(&models.Comment{}).Where("deleted = ?", false).Count(&commentCount)

	c.HTML(http.StatusOK, "admin/dashboard.html", gin.H{
		"Title":        "管理后台",
		"UserCount":    userCount,
		"PostCount":    postCount,
		"CommentCount": commentCount,
		"Boards":       boards.All(),
	})
}

// Users 用户管理列表 GET /admin/users
func (h *AdminHandler) Users(c *gin.Context) {
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	const pageSize = 30

	q := strings.TrimSpace(c.Query("q"))
	query := db.DB.Model(&models.User{})
	if q != "" {
		pattern := "%" + q + "%"
		query = query.Where("user_id LIKE ? OR nickname LIKE ?", pattern, pattern)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&users)

	c.HTML(http.StatusOK, "admin/users.html", gin.H{
		"Title": "用户管理",
		"Users": users,
		"Page":  page,
		"Total": total,
		"Query": q,
	})
}

// CreateUser 后台创建用户 POST /admin/users
func (h *AdminHandler) CreateUser(c *gin.Context) {
	userID := strings.TrimSpace(c.PostForm("user_id"))
	nickname := strings.TrimSpace(c.PostForm("nickname"))
	password := c.PostForm("password")
	role := c.DefaultPostForm("role", "user")

	if userID == "" || nickname == "" || len(password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "参数不完整"})
		return
	}
	if role != "user" && role != "admin" {
		role = "user"
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "密码加密失败"})
		return
	}

	user := models.User{
		UserID:   userID,
		Name:     nickname,
		Nickname: nickname,
		Password: hashed,
		Role:     role,
		Status:   "active",
		Level:    1,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "账号或昵称已存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user_id": user.ID})
}

// UpdateUser 后台修改用户 POST /admin/users/:id
// 支持管理员直接改点数/经验，经验变动后等级按阈值重算
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	var user models.User
	if err := db.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "用户不存在"})
		return
	}

	updates := map[string]interface{}{}
	if v, ok := c.GetPostForm("nickname"); ok && strings.TrimSpace(v) != "" {
		updates["nickname"] = strings.TrimSpace(v)
	}
	if v, ok := c.GetPostForm("role"); ok && (v == "user" || v == "admin") {
		updates["role"] = v
	}
	if v, ok := c.GetPostForm("status"); ok && (v == "active" || v == "banned") {
		updates["status"] = v
	}
	if v, ok := c.GetPostForm("points"); ok {
		points := utils.StringToInt(v)
		if points < 0 {
			points = 0
		}
		updates["points"] = points
	}
	if v, ok := c.GetPostForm("exp"); ok {
		exp := utils.StringToInt(v)
		if exp < 0 {
			exp = 0
		}
		updates["exp"] = exp
		updates["level"] = level.Of(exp)
	}
	if v, ok := c.GetPostForm("password"); ok && v != "" {
		if len(v) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "密码太短"})
			return
		}
		hashed, err := utils.HashPassword(v)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "密码加密失败"})
			return
		}
		updates["password"] = hashed
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "没有可更新的字段"})
		return
	}
	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "更新失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteUser 软删除用户 POST /admin/users/:id/delete
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	result := db.DB.Model(&models.User{}).Where("id = ?", id).Update("deleted", true)
	if result.Error != nil || result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "用户不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Posts 帖子管理列表 GET /admin/posts
func (h *AdminHandler) Posts(c *gin.Context) {
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	const pageSize = 30

	query := db.DB.Model(&models.Post{})
	if board := c.Query("board"); board != "" && boards.Valid(board) {
		query = query.Where("board = ?", board)
	}
	if c.Query("deleted") == "1" {
		query = query.Where("deleted = ?", true)
	}

	var total int64
	query.Count(&total)

	var posts []models.Post
	query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&posts)

	c.HTML(http.StatusOK, "admin/posts.html", gin.H{
		"Title":  "帖子管理",
		"Posts":  posts,
		"Page":   page,
		"Total":  total,
		"Boards": boards.All(),
	})
}

// DeletePost 软删除帖子 POST /admin/posts/:id/delete
func (h *AdminHandler) DeletePost(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	var post models.Post
	if err := db.DB.First(&post, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "帖子不存在"})
		return
	}
	if err := db.DB.Model(&post).Update("deleted", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "删除失败"})
		return
	}
	invalidateBoardCache(post.Board)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// TogglePublish 切换帖子发布状态 POST /admin/posts/:id/publish
func (h *AdminHandler) TogglePublish(c *gin.Context) {
	id := utils.StringToUint(c.Param("id"))

	var post models.Post
	if err := db.DB.First(&post, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "帖子不存在"})
		return
	}

	// 历史数据 is_published 为 NULL 时视同已发布
	published := post.IsPublished == nil || *post.IsPublished
	next := !published
	if err := db.DB.Model(&post).Update("is_published", next).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "更新失败"})
		return
	}
	invalidateBoardCache(post.Board)
	c.JSON(http.StatusOK, gin.H{"success": true, "is_published": next})
}
