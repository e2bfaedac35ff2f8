package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"complaintportal/internal/auth"
	"complaintportal/internal/directory"
)

// Login binds against the directory and, on success, issues a session
// cookie carrying the caller's scholar number, email, and role.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required!"})
		return
	}

	okAuth, err := h.dir.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.log.Error("directory authentication failed", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Directory service unavailable"})
		return
	}
	if !okAuth {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials!"})
		return
	}

	record, err := h.dir.Lookup(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found!"})
			return
		}
		h.log.Error("directory lookup failed", zap.String("username", req.Username), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Directory service unavailable"})
		return
	}

	role := auth.RoleStudent
	if h.cfg.IsStaff(req.Username) {
		role = auth.RoleStaff
	}

	token, expires, err := auth.Issue(record.UID, record.Email, role, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.SessionTTL)
	if err != nil {
		h.log.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error!"})
		return
	}

	h.setSessionCookie(c, token, int(h.cfg.SessionTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user": gin.H{
			"uid":     record.UID,
			"name":    record.Name,
			"email":   record.Email,
			"role":    role,
			"expires": expires,
		},
	})
}

// Logout clears the session cookie. The token itself stays valid until it
// expires; there is no server-side session state to revoke.
func (h *Handler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

// Validate echoes the verified claims so clients can restore a session.
func (h *Handler) Validate(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "You are not logged in!"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"uid":   claims.Subject,
			"email": claims.Email,
			"role":  claims.Role,
		},
	})
}

func (h *Handler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	secure := h.cfg.Env == "production"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.SessionCookie, token, maxAge, "/", "", secure, true)
}
