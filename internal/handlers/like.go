package handlers

import (
	"net/http"

	"moaboard/internal/services"
	"moaboard/internal/utils"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct{}

func NewLikeHandler() *LikeHandler {
	return &LikeHandler{}
}

// Toggle 推荐/取消推荐 POST /b/:board/like/:id
func (h *LikeHandler) Toggle(c *gin.Context) {
	user := currentUser(c)
	postID := utils.StringToUint(c.Param("id"))

	result, err := services.LikeToggle(postID, user.ID)
	if err != nil {
		JSONError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"action":      result.Action,
		"likes_count": result.Likes,
	})
}

// Status 推荐状态，未登录也可查 GET /b/:board/like/:id/status
func (h *LikeHandler) Status(c *gin.Context) {
	postID := utils.StringToUint(c.Param("id"))

	userID := uint(0)
	if user := currentUser(c); user != nil {
		userID = user.ID
	}

	liked, likes, err := services.LikeStatusOf(postID, userID)
	if err != nil {
		JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes_count": likes})
}
