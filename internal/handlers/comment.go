package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"moaboard/internal/db"
	"moaboard/internal/models"
	"moaboard/internal/services"
	"moaboard/internal/utils"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

// Create 发表评论 POST /b/:board/comment/:id
func (h *CommentHandler) Create(c *gin.Context) {
	user := currentUser(c)
	board := c.Param("board")
	postID := utils.StringToUint(c.Param("id"))

	content := strings.TrimSpace(c.PostForm("content"))
	if content == "" {
		RenderError(c, http.StatusBadRequest, "评论内容不能为空")
		return
	}

	var post models.Post
	if err := db.DB.Where("id = ? AND deleted = ?", postID, false).First(&post).Error; err != nil {
		RenderError(c, http.StatusNotFound, "帖子不存在")
		return
	}

	comment := models.Comment{
		PostID:  post.ID,
		Author:  user.Nickname,
		Content: content,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "评论失败")
		return
	}

	// 评论经验与计数尽力而为，失败不影响评论落地
	go func(uid uint) {
		if _, err := services.Accrue(uid, services.EventCommentCreated); err != nil {
			log.Printf("comment accrual failed for user %d: %v", uid, err)
		}
		if err := services.IncrementStat(uid, services.StatComments); err != nil {
			log.Printf("comment stat failed for user %d: %v", uid, err)
		}
	}(user.ID)

	c.Redirect(http.StatusFound, fmt.Sprintf("/b/%s/view/%d", board, post.ID))
}

// Edit 编辑评论 POST /b/:board/comment/:id/edit/:commentID
func (h *CommentHandler) Edit(c *gin.Context) {
	user := currentUser(c)
	board := c.Param("board")
	postID := utils.StringToUint(c.Param("id"))
	commentID := utils.StringToUint(c.Param("commentID"))

	content := strings.TrimSpace(c.PostForm("content"))
	if content == "" {
		RenderError(c, http.StatusBadRequest, "评论内容不能为空")
		return
	}

	var comment models.Comment
	if err := db.DB.Where("id = ? AND post_id = ? AND deleted = ?", commentID, postID, false).First(&comment).Error; err != nil {
		RenderError(c, http.StatusNotFound, "评论不存在")
		return
	}
	if !canEditComment(user, &comment) {
		RenderError(c, http.StatusForbidden, "没有编辑权限")
		return
	}

	now := time.Now()
	if err := db.DB.Model(&comment).Updates(map[string]interface{}{
		"content":   content,
		"edited_at": now,
	}).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "保存失败")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/b/%s/view/%d", board, postID))
}

// Delete 软删除评论 POST /b/:board/comment/:id/delete/:commentID
func (h *CommentHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	board := c.Param("board")
	postID := utils.StringToUint(c.Param("id"))
	commentID := utils.StringToUint(c.Param("commentID"))

	var comment models.Comment
	if err := db.DB.Where("id = ? AND post_id = ? AND deleted = ?", commentID, postID, false).First(&comment).Error; err != nil {
		RenderError(c, http.StatusNotFound, "评论不存在")
		return
	}
	if !canEditComment(user, &comment) {
		RenderError(c, http.StatusForbidden, "没有删除权限")
		return
	}

	if err := db.DB.Model(&comment).Update("deleted", true).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "删除失败")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/b/%s/view/%d", board, postID))
}

// canEditComment 作者昵称匹配或管理员
func canEditComment(user *models.User, comment *models.Comment) bool {
	if user == nil {
		return false
	}
	if user.Role == "admin" {
		return true
	}
	return comment.Author == user.Nickname
}
