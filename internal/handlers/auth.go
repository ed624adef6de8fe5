package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/steelhall/steelhall/internal/auth"
	"github.com/steelhall/steelhall/internal/middleware"
	"github.com/steelhall/steelhall/internal/users"
)

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		strings.HasPrefix(c.ContentType(), "application/json")
}

// LoginForm renders the admin login page
func (h *Handlers) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Settings": h.currentSettings(c),
		"CSRF":     middleware.GetCSRFToken(c),
		"Error":    c.Query("error") != "",
	})
}

// Login authenticates an admin and sets the session cookie. JSON clients get
// the user back, browsers are redirected.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		if wantsJSON(c) {
			bindError(c, err)
			return
		}
		c.Redirect(http.StatusFound, "/admin/login?error=1")
		return
	}

	user, err := users.Authenticate(h.DB.WithContext(c.Request.Context()), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, users.ErrInvalidCredentials) {
			serverError(c, h.Logger, "login failed", err)
			return
		}
		h.Logger.Info("failed login", "email", req.Email, "client_ip", c.ClientIP())
		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}
		c.Redirect(http.StatusFound, "/admin/login?error=1")
		return
	}

	token, err := auth.GenerateToken(user)
	if err != nil {
		serverError(c, h.Logger, "failed to generate token", err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, token, int(auth.SessionTTL().Seconds()), "/", "", false, true)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"data": user})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// Logout clears the session cookie
func (h *Handlers) Logout(c *gin.Context) {
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", false, true)

	if wantsJSON(c) {
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusFound, "/admin/login")
}
