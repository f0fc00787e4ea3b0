package handlers

import (
	"net/http"

	"moaboard/internal/services"
	"moaboard/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct{}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{}
}

// Vote 对帖子投 hit/bomb 票 POST /api/vote
func (h *VoteHandler) Vote(c *gin.Context) {
	user := currentUser(c)
	postID := utils.StringToUint(c.PostForm("post_id"))
	voteType := c.PostForm("vote_type")

	result, err := services.Vote(postID, user.ID, voteType)
	if err != nil {
		JSONError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"action":       result.Action,
		"points_delta": result.PointsDelta,
	})
}

// VoteStatus 查询投票状态 GET /api/vote-status/:id
func (h *VoteHandler) VoteStatus(c *gin.Context) {
	postID := utils.StringToUint(c.Param("id"))

	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusOK, gin.H{
			"voted": false, "vote_type": nil,
			"likes_count": 0, "dislikes_count": 0, "can_vote": false,
		})
		return
	}

	status, err := services.VoteStatusOf(postID, user.ID)
	if err != nil {
		JSONError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Points 当前用户积分 GET /api/points
func (h *VoteHandler) Points(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{"points": user.Points})
}
