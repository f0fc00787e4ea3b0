package router

import (
	"moaboard/internal/handlers"
	"moaboard/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	boardHandler := handlers.NewBoardHandler()
	commentHandler := handlers.NewCommentHandler()
	voteHandler := handlers.NewVoteHandler()
	likeHandler := handlers.NewLikeHandler()
	profileHandler := handlers.NewProfileHandler()
	uploadHandler := handlers.NewUploadHandler()
	adminHandler := handlers.NewAdminHandler()

	// 公共路由 (Public Routes)
	r.GET("/", boardHandler.Index)           // 首页，重定向到默认板块
	r.GET("/b/:board", boardHandler.List)    // 板块帖子列表
	r.GET("/b/:board/view/:id", boardHandler.View) // 帖子详情
	r.GET("/u/:id", profileHandler.PublicProfile)  // 用户公开主页

	r.GET("/signup", authHandler.ShowRegister) // 注册页面
	r.POST("/signup", authHandler.Register)    // 提交注册
	r.GET("/login", authHandler.ShowLogin)     // 登录页面
	r.POST("/login", authHandler.Login)        // 提交登录
	r.GET("/logout", authHandler.Logout)       // 退出登录

	r.GET("/api/check-duplicate", authHandler.CheckDuplicate) // 注册时查重
	r.GET("/api/vote-status/:id", voteHandler.VoteStatus)     // 投票状态（匿名可查）
	r.GET("/api/like-status/:id", likeHandler.Status)         // 点赞状态（匿名可查）

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/b/:board/write", boardHandler.ShowWrite)  // 发帖页面
		authorized.POST("/b/:board/write", boardHandler.Write)     // 提交发帖
		authorized.GET("/b/:board/edit/:id", boardHandler.ShowEdit) // 编辑页面
		authorized.POST("/b/:board/edit/:id", boardHandler.Edit)    // 提交编辑
		authorized.POST("/b/:board/delete/:id", boardHandler.Delete) // 删除帖子

		authorized.POST("/b/:board/comment/:id", commentHandler.Create)                    // 发表评论
		authorized.POST("/b/:board/comment/:id/edit/:commentID", commentHandler.Edit)      // 编辑评论
		authorized.POST("/b/:board/comment/:id/delete/:commentID", commentHandler.Delete)  // 删除评论

		authorized.POST("/b/:board/like/:id", likeHandler.Toggle) // 点赞/取消点赞

		authorized.GET("/profile", profileHandler.Profile)         // 个人主页
		authorized.GET("/profile/points", profileHandler.PointLogs) // 积分明细

		authorized.POST("/api/vote", voteHandler.Vote)           // 推/踩投票
		authorized.GET("/api/points", voteHandler.Points)        // 当前点数
		authorized.GET("/api/level-info", profileHandler.LevelInfo) // 等级信息
		authorized.POST("/api/upload", uploadHandler.Upload)     // 上传附件
	}

	// 管理后台路由 (Admin Routes)，会话与前台独立
	r.GET("/admin/login", adminHandler.ShowLogin)
	r.POST("/admin/login", adminHandler.Login)
	r.GET("/admin/logout", adminHandler.Logout)

	admin := r.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("", adminHandler.Dashboard)                        // 后台概览
		admin.GET("/users", adminHandler.Users)                      // 用户管理
		admin.POST("/users", adminHandler.CreateUser)                // 创建用户
		admin.POST("/users/:id", adminHandler.UpdateUser)            // 修改用户
		admin.POST("/users/:id/delete", adminHandler.DeleteUser)     // 删除用户
		admin.GET("/posts", adminHandler.Posts)                      // 帖子管理
		admin.POST("/posts/:id/delete", adminHandler.DeletePost)     // 删除帖子
		admin.POST("/posts/:id/publish", adminHandler.TogglePublish) // 发布/下架
	}
}
