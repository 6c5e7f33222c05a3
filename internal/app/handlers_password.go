package app

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thapelomagqazana/social-media-2/internal/sdk/mongodb"
	"github.com/thapelomagqazana/social-media-2/internal/services/sentry"
)

const (
	resetTokenLength = 20            // 20 random bytes = 40 hex characters
	resetTokenTTL    = 1 * time.Hour // token expires in 1 hour
)

// HandleForgotPassword issues a reset token and emails the reset link.
// The route sits behind the per-client rate limiter.
func (a *App) HandleForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if code := validateEmail(req.Email); code != "" {
		writeError(c, code, nil)
		return
	}

	user, err := a.db.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if mongodb.IsNotFound(err) {
			writeError(c, ErrUserNotFound, nil)
			return
		}
		a.toSentry(c, "forgot_password", "db", sentry.LevelError, err)
		writeError(c, ErrCreateResetToken, nil)
		return
	}

	token, err := generateSecureToken(resetTokenLength)
	if err != nil {
		a.toSentry(c, "forgot_password", "token_generation", sentry.LevelError, err)
		writeError(c, ErrCreateResetToken, nil)
		return
	}

	// A new request overwrites any earlier unconsumed token.
	if err := a.db.SetResetToken(c.Request.Context(), user.ID.Hex(), token, time.Now().Add(resetTokenTTL)); err != nil {
		a.toSentry(c, "forgot_password", "db", sentry.LevelError, err)
		writeError(c, ErrCreateResetToken, nil)
		return
	}

	resetURL := resetBaseURL() + "/" + token
	if err := a.mailer.SendPasswordResetEmail(user.Email, user.Name, resetURL); err != nil {
		a.toSentry(c, "forgot_password", "email", sentry.LevelError, err)
		writeError(c, ErrSendResetEmail, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "A password reset link has been sent",
	})
}

// HandleResetPassword consumes a reset token and sets the new password.
func (a *App) HandleResetPassword(c *gin.Context) {
	token := c.Param("token")

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, ErrUnmarshal, nil)
		return
	}

	if code := validateNewPassword(req.NewPassword); code != "" {
		writeError(c, code, nil)
		return
	}

	// Matches only an unexpired token; expired and unknown are
	// indistinguishable to the caller.
	user, err := a.db.GetUserByResetToken(c.Request.Context(), token)
	if err != nil {
		if mongodb.IsNotFound(err) {
			writeError(c, ErrInvalidResetToken, nil)
			return
		}
		a.toSentry(c, "reset_password", "db", sentry.LevelError, err)
		writeError(c, ErrResetPassword, nil)
		return
	}

	if !user.Active {
		writeError(c, ErrAccountDeactivated, nil)
		return
	}

	hashedPassword, err := a.hash.HashPassword(req.NewPassword)
	if err != nil {
		a.toSentry(c, "reset_password", "bcrypt", sentry.LevelError, err)
		writeError(c, ErrHashPassword, nil)
		return
	}

	if err := a.db.UpdateUserPassword(c.Request.Context(), user.ID.Hex(), hashedPassword); err != nil {
		a.toSentry(c, "reset_password", "db", sentry.LevelError, err)
		writeError(c, ErrResetPassword, nil)
		return
	}

	// Single use: clear the token so it cannot be replayed. The password is
	// already updated, so a failure here is logged rather than surfaced.
	if err := a.db.ClearResetToken(c.Request.Context(), user.ID.Hex()); err != nil {
		a.toSentry(c, "reset_password", "db", sentry.LevelWarning, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password has been reset successfully",
	})
}

// generateSecureToken generates a cryptographically secure random token.
func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func resetBaseURL() string {
	if origin := os.Getenv("FRONTEND_ORIGIN"); origin != "" {
		return strings.TrimSuffix(origin, "/") + "/reset-password"
	}
	return "http://localhost:3000/reset-password"
}
