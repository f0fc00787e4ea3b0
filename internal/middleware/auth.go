package middleware

import (
	"net/http"
	"net/url"

	"moaboard/internal/db"
	"moaboard/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// 用户与管理后台使用相互独立的会话，互不串号
const (
	UserSessionName  = "moaboard_session"
	AdminSessionName = "moaboard_admin"
)

// LoadUser retrieves user from session and sets to context
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.DefaultMany(c, UserSessionName)
		userID := session.Get("user_id")

		if userID != nil {
			var user models.User
			result := db.DB.Where("deleted = ?", false).First(&user, userID)
			if result.Error == nil {
				c.Set(CheckUserKey, &user)
			}
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, "/login?next="+next)
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired 校验管理员会话（与用户会话分离）
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.DefaultMany(c, AdminSessionName)
		if logged, ok := session.Get("admin_logged_in").(bool); !ok || !logged {
			next := url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, "/admin/login?next="+next)
			c.Abort()
			return
		}
		c.Next()
	}
}
