package services

import (
	"errors"
	"fmt"
	"math"

	"moaboard/internal/boards"
	"moaboard/internal/db"
	"moaboard/internal/level"
	"moaboard/internal/models"

	"gorm.io/gorm"
)

// 排序方式
const (
	SortNew  = "new"
	SortView = "view"
	SortLike = "like"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// ListParams 是板块列表查询的入参。
type ListParams struct {
	Board    string
	Category string // 标签页过滤，空或不在配置内则忽略
	Query    string // 标题/正文子串搜索
	Sort     string // new / view / like
	Page     int
	PageSize int
}

// ListResult 带回分页后的帖子和分页信息。
type ListResult struct {
	Posts      []models.Post
	Total      int64
	TotalPages int
	Page       int
	PageSize   int
}

// ListPosts 查询板块下的帖子列表。
// 过滤规则：未删除、已发布（is_published 为 NULL 的历史数据按已发布处理）、
// 标签页只在板块配置了并且值有效时生效。页码在算出总页数后收敛到有效范围。
func ListPosts(p ListParams) (*ListResult, error) {
	if !boards.Valid(p.Board) {
		return nil, fmt.Errorf("%w: board %q", ErrNotFound, p.Board)
	}

	size := p.PageSize
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	page := p.Page
	if page < 1 {
		page = 1
	}

	category := p.Category
	if category != "" {
		tabs := boards.TabsOf(p.Board)
		if len(tabs) == 0 || !boards.ValidCategory(p.Board, category) {
			category = ""
		}
	}

	query := db.DB.Model(&models.Post{}).
		Where("board = ? AND deleted = ?", p.Board, false).
		Where("is_published = ? OR is_published IS NULL", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if p.Query != "" {
		pattern := "%" + p.Query + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(size)))
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	var orderBy string
	switch p.Sort {
	case SortView:
		orderBy = "views DESC, created_at DESC"
	case SortLike:
		orderBy = "likes DESC, created_at DESC"
	default:
		orderBy = "created_at DESC"
	}

	var posts []models.Post
	if err := query.Order(orderBy).
		Limit(size).
		Offset((page - 1) * size).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	fillCommentCounts(posts)

	return &ListResult{
		Posts:      posts,
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   size,
	}, nil
}

// fillCommentCounts 批量填充帖子的评论数量
func fillCommentCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	db.DB.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ? AND deleted = ?", postIDs, false).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}

// PostView 是帖子详情，包含作者等级信息和未删除的评论。
type PostView struct {
	Post            models.Post
	AuthorLevel     int
	AuthorLevelName string
	Comments        []models.Comment
}

// ViewPost 读取帖子详情，每次调用浏览数无条件 +1（不去重）。
func ViewPost(postID uint) (*PostView, error) {
	// 浏览数是单条原子自增，不走读—改—写
	db.DB.Model(&models.Post{}).
		Where("id = ? AND deleted = ?", postID, false).
		UpdateColumn("views", gorm.Expr("views + 1"))

	var post models.Post
	if err := db.DB.Where("id = ? AND deleted = ?", postID, false).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %d", ErrNotFound, postID)
		}
		return nil, err
	}

	view := &PostView{Post: post, AuthorLevel: 1, AuthorLevelName: level.Name(1)}
	if post.UserID != nil {
		var author models.User
		if err := db.DB.Select("level").First(&author, *post.UserID).Error; err == nil {
			view.AuthorLevel = author.Level
			view.AuthorLevelName = level.Name(author.Level)
		}
	}

	if err := db.DB.Where("post_id = ? AND deleted = ?", postID, false).
		Order("created_at ASC").
		Find(&view.Comments).Error; err != nil {
		return nil, err
	}

	return view, nil
}
