package app

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thapelomagqazana/social-media-2/internal/sdk/models"
	"github.com/thapelomagqazana/social-media-2/internal/sdk/mongodb"
	"github.com/thapelomagqazana/social-media-2/internal/services/sentry"
)

func (a *App) HandleSignup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.toSentry(c, "signup", "unmarshal", sentry.LevelError, err)
		writeError(c, ErrUnmarshal, nil)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	errCode, validationErrors := validateSignupInput(req)
	if errCode != "" {
		writeError(c, errCode, validationErrors)
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	hashedPassword, err := a.hash.HashPassword(req.Password)
	if err != nil {
		a.toSentry(c, "signup", "bcrypt", sentry.LevelError, err)
		writeError(c, ErrHashPassword, nil)
		return
	}

	createdUser, err := a.db.CreateUser(c.Request.Context(), models.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     role,
	})
	if err != nil {
		if mongodb.IsDuplicateEntry(err) {
			writeError(c, ErrUserExists, nil)
			return
		}
		a.toSentry(c, "signup", "db", sentry.LevelError, err)
		writeError(c, ErrCreateUser, nil)
		return
	}

	c.JSON(http.StatusCreated, SignupResponse{
		ID:   createdUser.ID.Hex(),
		User: toUserResponse(createdUser),
	})
}

func (a *App) HandleSignin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.toSentry(c, "signin", "unmarshal", sentry.LevelError, err)
		writeError(c, ErrUnmarshal, nil)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if validationErrors := validateSigninInput(req); len(validationErrors) > 0 {
		writeError(c, ErrMissingFields, validationErrors)
		return
	}

	user, err := a.db.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if mongodb.IsNotFound(err) {
			// Same error for an unknown address and a wrong password, to
			// avoid account enumeration.
			writeError(c, ErrInvalidCredentials, nil)
			return
		}
		a.toSentry(c, "signin", "db", sentry.LevelError, err)
		writeError(c, ErrProcessSignin, nil)
		return
	}

	if !a.hash.CheckPasswordHash(req.Password, user.Password) {
		writeError(c, ErrInvalidCredentials, nil)
		return
	}

	if !user.Active {
		writeError(c, ErrAccountDeactivated, nil)
		return
	}

	token, err := a.jwt.GenerateToken(c.Request.Context(), user.ID.Hex(), user.Role, req.RememberMe)
	if err != nil {
		a.toSentry(c, "signin", "jwt", sentry.LevelError, err)
		writeError(c, ErrGenerateToken, nil)
		return
	}

	c.JSON(http.StatusOK, SigninResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

// HandleSignout runs behind the auth middleware, so reaching it means the
// token verified. Tokens are stateless; there is no server-side session to
// invalidate, only the client-held cookie to clear.
func (a *App) HandleSignout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully"})
}
