package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"moaboard/internal/boards"
	"moaboard/internal/db"
	"moaboard/internal/models"
	"moaboard/internal/services"
	"moaboard/internal/utils"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct{}

func NewBoardHandler() *BoardHandler {
	return &BoardHandler{}
}

// Index 首页重定向到默认板块 GET /
func (h *BoardHandler) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, "/b/free")
}

// List 板块帖子列表 GET /b/:board
func (h *BoardHandler) List(c *gin.Context) {
	board := c.Param("board")
	if !boards.Valid(board) {
		RenderError(c, http.StatusNotFound, "板块不存在")
		return
	}

	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	size := utils.StringToInt(c.DefaultQuery("size", "20"))
	sort := c.DefaultQuery("sort", services.SortNew)
	q := strings.TrimSpace(c.Query("q"))
	category := c.Query("category")

	// 无搜索词的页面可缓存，避免 key 无限膨胀
	cacheKey := ""
	if q == "" {
		cacheKey = fmt.Sprintf("board:%s:list:%s:%s:p%d:s%d", board, category, sort, page, size)
		if cached := utils.GetCache().Get(cacheKey); cached != nil {
			if hData, ok := cached.(gin.H); ok {
				Render(c, http.StatusOK, "board/list.html", hData)
				return
			}
		}
	}

	result, err := services.ListPosts(services.ListParams{
		Board:    board,
		Category: category,
		Query:    q,
		Sort:     sort,
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		RenderError(c, statusOf(err), "板块不存在")
		return
	}

	renderData := gin.H{
		"Board":       board,
		"BoardLabel":  boards.Label(board),
		"Tabs":        boards.TabsOf(board),
		"Category":    category,
		"Posts":       result.Posts,
		"Total":       result.Total,
		"TotalPages":  result.TotalPages,
		"CurrentPage": result.Page,
		"PageSize":    result.PageSize,
		"Sort":        sort,
		"Query":       q,
		"Title":       boards.Label(board),
	}

	if cacheKey != "" {
		utils.GetCache().Set(cacheKey, renderData, 1*time.Minute)
	}
	Render(c, http.StatusOK, "board/list.html", renderData)
}

// View 帖子详情 GET /b/:board/view/:id
func (h *BoardHandler) View(c *gin.Context) {
	board := c.Param("board")
	if !boards.Valid(board) {
		RenderError(c, http.StatusNotFound, "板块不存在")
		return
	}
	postID := utils.StringToUint(c.Param("id"))

	view, err := services.ViewPost(postID)
	if err != nil {
		RenderError(c, statusOf(err), "帖子不存在")
		return
	}

	type renderedComment struct {
		models.Comment
		ContentHTML interface{}
		Floor       int
	}
	comments := make([]renderedComment, len(view.Comments))
	for i, com := range view.Comments {
		comments[i] = renderedComment{
			Comment:     com,
			ContentHTML: utils.RenderMarkdown(com.Content),
			Floor:       i + 1,
		}
	}

	data := gin.H{
		"Board":           board,
		"BoardLabel":      boards.Label(board),
		"Tabs":            boards.TabsOf(board),
		"Post":            view.Post,
		"PostContent":     utils.RenderMarkdown(view.Post.Content),
		"AuthorLevel":     view.AuthorLevel,
		"AuthorLevelName": view.AuthorLevelName,
		"Comments":        comments,
		"Title":           view.Post.Title,
	}

	// 登录用户带上自己的投票/推荐状态
	if user := currentUser(c); user != nil {
		if status, err := services.VoteStatusOf(postID, user.ID); err == nil {
			data["VoteStatus"] = status
		}
		liked, likes, _ := services.LikeStatusOf(postID, user.ID)
		data["Liked"] = liked
		data["LikeCount"] = likes
		data["CanEdit"] = canEditPost(user, &view.Post)
	}

	Render(c, http.StatusOK, "board/view.html", data)
}

// ShowWrite 发帖表单
func (h *BoardHandler) ShowWrite(c *gin.Context) {
	board := c.Param("board")
	if !boards.Valid(board) {
		RenderError(c, http.StatusNotFound, "板块不存在")
		return
	}
	Render(c, http.StatusOK, "board/write.html", gin.H{
		"Board":      board,
		"BoardLabel": boards.Label(board),
		"Tabs":       boards.TabsOf(board),
		"Title":      "发帖",
	})
}

// Write 保存新帖 POST /b/:board/write
func (h *BoardHandler) Write(c *gin.Context) {
	user := currentUser(c)
	board := c.Param("board")
	if !boards.Valid(board) {
		RenderError(c, http.StatusNotFound, "板块不存在")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	content := strings.TrimSpace(c.PostForm("content"))
	category := boards.NormalizeCategory(board, c.PostForm("category"))

	if len([]rune(title)) < 2 || len([]rune(content)) < 10 {
		Render(c, http.StatusBadRequest, "board/write.html", gin.H{
			"Error":      "标题至少 2 个字，内容至少 10 个字",
			"Board":      board,
			"BoardLabel": boards.Label(board),
			"Tabs":       boards.TabsOf(board),
			"FormTitle":  title,
			"Content":    content,
			"Category":   category,
		})
		return
	}

	// 附件（选填，多文件）
	var saved []string
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, file := range form.File["files"] {
			name, err := saveUpload(board, file)
			if err != nil {
				log.Printf("upload failed on board %s: %v", board, err)
				continue
			}
			saved = append(saved, name)
		}
	}

	published := true
	post := models.Post{
		Board:       board,
		Title:       title,
		Content:     content,
		Author:      user.Nickname,
		UserID:      &user.ID,
		Category:    category,
		IsPublished: &published,
		Attachments: strings.Join(saved, ","),
	}
	if err := db.DB.Create(&post).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "发帖失败")
		return
	}

	invalidateBoardCache(board)

	// 发帖经验与计数走尽力而为的副通道，失败不回滚发帖
	go func(uid uint) {
		if _, err := services.Accrue(uid, services.EventPostCreated); err != nil {
			log.Printf("post accrual failed for user %d: %v", uid, err)
		}
		if err := services.IncrementStat(uid, services.StatPosts); err != nil {
			log.Printf("post stat failed for user %d: %v", uid, err)
		}
	}(user.ID)

	c.Redirect(http.StatusFound, fmt.Sprintf("/b/%s/view/%d", board, post.ID))
}

// ShowEdit 编辑表单
func (h *BoardHandler) ShowEdit(c *gin.Context) {
	user := currentUser(c)
	board := c.Param("board")
	postID := utils.StringToUint(c.Param("id"))

	var post models.Post
	if err := db.DB.Where("id = ? AND board = ? AND deleted = ?", postID, board, false).First(&post).Error; err != nil {
		RenderError(c, http.StatusNotFound, "帖子不存在")
		return
	}
	if !canEditPost(user, &post) {
		RenderError(c, http.StatusForbidden, "没有编辑权限")
		return
	}

	Render(c, http.StatusOK, "board/edit.html", gin.H{
		"Board":      board,
		"BoardLabel": boards.Label(board),
		"Tabs":       boards.TabsOf(board),
		"Post":       post,
		"Title":      "编辑帖子",
	})
}

// Edit 保存编辑 POST /b/:board/edit/:id
func (h *BoardHandler) Edit(c *gin.Context) {
	user := currentUser(c)
	board := c.Param("board")
	postID := utils.StringToUint(c.Param("id"))

	var post models.Post
	if err := db.DB.Where("id = ? AND board = ? AND deleted = ?", postID, board, false).First(&post).Error; err != nil {
		RenderError(c, http.StatusNotFound, "帖子不存在")
		return
	}
	if !canEditPost(user, &post) {
		RenderError(c, http.StatusForbidden, "没有编辑权限")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	content := strings.TrimSpace(c.PostForm("content"))
	category := boards.NormalizeCategory(board, c.PostForm("category"))
	if len([]rune(title)) < 2 || len([]rune(content)) < 10 {
		RenderError(c, http.StatusBadRequest, "标题至少 2 个字，内容至少 10 个字")
		return
	}

	if err := db.DB.Model(&post).Updates(map[string]interface{}{
		"title":    title,
		"content":  content,
		"category": category,
	}).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "保存失败")
		return
	}

	invalidateBoardCache(board)
	c.Redirect(http.StatusFound, fmt.Sprintf("/b/%s/view/%d", board, post.ID))
}

// Delete 软删除 POST /b/:board/delete/:id
func (h *BoardHandler) Delete(c *gin.Context) {
	user := currentUser(c)
	board := c.Param("board")
	postID := utils.StringToUint(c.Param("id"))

	var post models.Post
	if err := db.DB.Where("id = ? AND board = ? AND deleted = ?", postID, board, false).First(&post).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "帖子不存在"})
		return
	}
	if !canEditPost(user, &post) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "没有删除权限"})
		return
	}

	if err := db.DB.Model(&post).Update("deleted", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "删除失败"})
		return
	}

	invalidateBoardCache(board)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// canEditPost 作者本人或管理员可编辑/删除
func canEditPost(user *models.User, post *models.Post) bool {
	if user == nil {
		return false
	}
	if user.Role == "admin" {
		return true
	}
	return post.UserID != nil && *post.UserID == user.ID
}

// invalidateBoardCache 清掉该板块全部列表页缓存（所有分类/排序/分页变体）
func invalidateBoardCache(board string) {
	utils.GetCache().DeletePrefix(fmt.Sprintf("board:%s:list:", board))
}
