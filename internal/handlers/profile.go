package handlers

import (
	"net/http"

	"moaboard/internal/db"
	"moaboard/internal/models"
	"moaboard/internal/services"
	"moaboard/internal/utils"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// Profile 个人主页 GET /profile
func (h *ProfileHandler) Profile(c *gin.Context) {
	user := currentUser(c)

	info, err := services.LevelInfo(user.ID)
	if err != nil {
		RenderError(c, statusOf(err), "用户不存在")
		return
	}

	// 最近发的帖子
	var posts []models.Post
	db.DB.Where("user_id = ? AND deleted = ?", user.ID, false).
		Order("created_at DESC").Limit(20).Find(&posts)

	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"Title":     user.Nickname,
		"Info":      info,
		"Posts":     posts,
		"DaysSince": utils.GetDaysSinceJoined(user.CreatedAt),
	})
}

// PublicProfile 公开主页 GET /u/:id
func (h *ProfileHandler) PublicProfile(c *gin.Context) {
	userID := utils.StringToUint(c.Param("id"))

	info, err := services.LevelInfo(userID)
	if err != nil {
		RenderError(c, statusOf(err), "用户不存在")
		return
	}

	var user models.User
	if err := db.DB.Where("deleted = ?", false).First(&user, userID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "用户不存在")
		return
	}

	var posts []models.Post
	db.DB.Where("user_id = ? AND deleted = ?", userID, false).
		Order("created_at DESC").Limit(20).Find(&posts)

	Render(c, http.StatusOK, "user/profile.html", gin.H{
		"Title":     user.Nickname,
		"Info":      info,
		"Posts":     posts,
		"DaysSince": utils.GetDaysSinceJoined(user.CreatedAt),
	})
}

// LevelInfo 当前用户等级信息 GET /api/level-info
func (h *ProfileHandler) LevelInfo(c *gin.Context) {
	user := currentUser(c)
	info, err := services.LevelInfo(user.ID)
	if err != nil {
		JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// PointLogs 积分流水 GET /profile/points
func (h *ProfileHandler) PointLogs(c *gin.Context) {
	user := currentUser(c)

	var logs []models.PointLog
	db.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").Limit(100).Find(&logs)

	Render(c, http.StatusOK, "user/points.html", gin.H{
		"Title": "积分明细",
		"Logs":  logs,
	})
}
