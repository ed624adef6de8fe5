package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/steelhall/steelhall/internal/db"
	"github.com/steelhall/steelhall/internal/models"
)

// SessionCookie is the name of the admin session cookie
const SessionCookie = "steelhall_session"

// RequireAuth middleware validates the session cookie. API requests get a
// JSON 401, page requests are redirected to the login form.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookie)
		if err != nil || cookie == "" {
			deny(c)
			return
		}

		claims, err := ValidateToken(cookie)
		if err != nil {
			deny(c)
			return
		}

		var user models.User
		if err := db.GetDB().First(&user, claims.UserID).Error; err != nil {
			deny(c)
			return
		}

		c.Set("user", &user)
		c.Next()
	}
}

func deny(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/admin/api") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}
	c.Redirect(http.StatusFound, "/admin/login")
	c.Abort()
}

// CurrentUser returns the authenticated user set by RequireAuth
func CurrentUser(c *gin.Context) (*models.User, bool) {
	val, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok
}
