package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	adminCookieName      = "gp_admin_session"
	adminSessionDuration = 8 * time.Hour
)

// AdminSession is what the console keeps of a signed-in admin: the username
// for display and the upstream bearer token obtained at login. The token is
// never exposed to the browser; it travels inside the signed cookie only.
type AdminSession struct {
	Username string
	Token    string
}

func (a *App) createAdminSessionToken(session AdminSession) (string, error) {
	claims := jwt.MapClaims{
		"username": session.Username,
		"token":    session.Token,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(adminSessionDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.cfg.AppSigningSecret))
}

func (a *App) verifyAdminSessionToken(tokenString string) (*AdminSession, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(a.cfg.AppSigningSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	username, _ := claims["username"].(string)
	upstreamToken, _ := claims["token"].(string)
	if username == "" || upstreamToken == "" {
		return nil, fmt.Errorf("invalid session payload")
	}
	return &AdminSession{Username: username, Token: upstreamToken}, nil
}

// requireAdminSession rejects requests without a valid signed cookie and
// places the upstream bearer token on the request context for every
// downstream content API call.
func (a *App) requireAdminSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookieName)
		if err != nil {
			writeAPIError(c, &apiError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "Admin session required"})
			c.Abort()
			return
		}
		session, err := a.verifyAdminSessionToken(token)
		if err != nil {
			writeAPIError(c, &apiError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "Admin session required"})
			c.Abort()
			return
		}
		c.Set("adminSession", *session)
		c.Request = c.Request.WithContext(withAuthToken(c.Request.Context(), session.Token))
		c.Next()
	}
}

func adminSessionFrom(c *gin.Context) (AdminSession, bool) {
	value, ok := c.Get("adminSession")
	if !ok {
		return AdminSession{}, false
	}
	session, ok := value.(AdminSession)
	return session, ok
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *App) handleAdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeAPIError(c, &apiError{Status: http.StatusBadRequest, Code: "invalid_payload", Message: "Username and password are required"})
		return
	}

	upstreamToken, err := a.loginAdmin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		a.writeError(c, err)
		return
	}

	sessionToken, err := a.createAdminSessionToken(AdminSession{Username: req.Username, Token: upstreamToken})
	if err != nil {
		writeAPIError(c, &apiError{Status: http.StatusInternalServerError, Code: "internal_error", Message: "Could not create session"})
		return
	}

	secure := a.cfg.Env == "production"
	c.SetCookie(adminCookieName, sessionToken, int(adminSessionDuration.Seconds()), "/", "", secure, true)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"username": req.Username}})
}

func (a *App) handleAdminLogout(c *gin.Context) {
	if session, ok := adminSessionFrom(c); ok {
		if err := a.logoutAdmin(c.Request.Context(), session.Token); err != nil {
			a.logger.Warn("upstream logout failed", "username", session.Username, "error", err)
		}
	}
	a.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"ok": true}})
}

func (a *App) clearSessionCookie(c *gin.Context) {
	secure := a.cfg.Env == "production"
	c.SetCookie(adminCookieName, "", -1, "/", "", secure, true)
}

// loginUpstream exchanges admin credentials for a content API bearer token.
func (a *App) loginUpstream(ctx context.Context, username, password string) (string, error) {
	var result struct {
		Token string `json:"token"`
	}
	body := map[string]any{"username": username, "password": password}
	if err := a.upstream.do(ctx, http.MethodPost, "/admin/login", body, &result); err != nil {
		if apiErr, ok := err.(*apiError); ok && apiErr.Code == "unauthorized" {
			return "", &apiError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "Invalid username or password"}
		}
		return "", err
	}
	if result.Token == "" {
		return "", &apiError{Status: http.StatusBadGateway, Code: "upstream_rejected", Message: "Login service returned no token"}
	}
	return result.Token, nil
}

func (a *App) logoutUpstream(ctx context.Context, token string) error {
	return a.upstream.do(withAuthToken(ctx, token), http.MethodPost, "/admin/logout", nil, nil)
}
