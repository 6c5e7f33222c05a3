package app

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thapelomagqazana/social-media-2/internal/sdk/middleware"
	"github.com/thapelomagqazana/social-media-2/internal/sdk/models"
	"github.com/thapelomagqazana/social-media-2/internal/sdk/mongodb"
	"github.com/thapelomagqazana/social-media-2/internal/services/sentry"
)

const maxProfilePictureSize = 5 << 20 // 5MB

// HandleListUsers serves the user directory with filtering, sorting, search
// and pagination.
func (a *App) HandleListUsers(c *gin.Context) {
	if c.GetHeader("Accept") == "application/xml" {
		writeError(c, ErrXMLNotSupported, nil)
		return
	}

	query, errCode := parseListQuery(c)
	if errCode != "" {
		writeError(c, errCode, nil)
		return
	}

	users, total, err := a.db.ListUsers(c.Request.Context(), query)
	if err != nil {
		a.toSentry(c, "list_users", "db", sentry.LevelError, err)
		writeError(c, ErrRetrieveUsers, nil)
		return
	}

	// An empty result set is signalled explicitly rather than returned as
	// an empty array.
	if total == 0 {
		writeError(c, ErrNoUsersFound, nil)
		return
	}

	response := ListUsersResponse{
		Users:       make([]UserResponse, 0, len(users)),
		TotalUsers:  total,
		CurrentPage: query.Page,
		TotalPages:  mongodb.TotalPages(total, query.Limit),
	}
	for _, u := range users {
		response.Users = append(response.Users, toUserResponse(u))
	}

	c.JSON(http.StatusOK, response)
}

// HandleGetUser returns a single user. A malformed id is treated the same as
// an unknown one on this read path.
func (a *App) HandleGetUser(c *gin.Context) {
	userID := c.Param("userId")
	if !isValidUserID(userID) {
		writeError(c, ErrUserNotFound, nil)
		return
	}

	user, err := a.db.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if mongodb.IsNotFound(err) {
			writeError(c, ErrUserNotFound, nil)
			return
		}
		a.toSentry(c, "get_user", "db", sentry.LevelError, err)
		writeError(c, ErrVerifyUser, nil)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// HandleUpdateUser applies a profile update. Only the account owner or an
// admin may update; password changes are not allowed through this path.
func (a *App) HandleUpdateUser(c *gin.Context) {
	userID := c.Param("userId")
	if !isValidUserID(userID) {
		writeError(c, ErrInvalidUserID, nil)
		return
	}

	actor, err := middleware.GetUser(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	if actor.ID.Hex() != userID && actor.Role != models.RoleAdmin {
		writeError(c, ErrForbidden, nil)
		return
	}

	var upd models.UpdateUser
	contentType := c.GetHeader("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		var errCode string
		upd, errCode = a.updateFromMultipart(c, userID)
		if errCode != "" {
			writeError(c, errCode, nil)
			return
		}
	} else {
		var req UpdateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, ErrUnmarshal, nil)
			return
		}

		if req.Password != nil {
			writeError(c, ErrPasswordNotAllowed, nil)
			return
		}

		upd = models.UpdateUser{
			Name:        req.Name,
			Email:       req.Email,
			DisplayName: req.DisplayName,
			Bio:         req.Bio,
			Interests:   req.Interests,
			Active:      req.Active,
			Private:     req.Private,
		}
	}

	if errCode := normalizeUpdate(&upd); errCode != "" {
		writeError(c, errCode, nil)
		return
	}

	user, err := a.db.UpdateUser(c.Request.Context(), userID, upd)
	if err != nil {
		switch {
		case mongodb.IsNotFound(err):
			writeError(c, ErrUserNotFound, nil)
		case mongodb.IsDuplicateEntry(err):
			writeError(c, ErrUserExists, nil)
		default:
			a.toSentry(c, "update_user", "db", sentry.LevelError, err)
			writeError(c, ErrUpdateUser, nil)
		}
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// updateFromMultipart reads profile fields and the optional picture from a
// multipart form. The picture is stored out-of-band and referenced by URL.
func (a *App) updateFromMultipart(c *gin.Context, userID string) (models.UpdateUser, string) {
	var upd models.UpdateUser

	if err := c.Request.ParseMultipartForm(maxProfilePictureSize + 1<<20); err != nil {
		return upd, ErrUnmarshal
	}

	if c.PostForm("password") != "" {
		return upd, ErrPasswordNotAllowed
	}

	form := c.Request.MultipartForm
	setIfPresent := func(field string, dst **string) {
		if values, ok := form.Value[field]; ok && len(values) > 0 {
			v := values[0]
			*dst = &v
		}
	}
	setIfPresent("name", &upd.Name)
	setIfPresent("email", &upd.Email)
	setIfPresent("displayName", &upd.DisplayName)
	setIfPresent("bio", &upd.Bio)

	if values, ok := form.Value["interests"]; ok {
		interests := values
		upd.Interests = &interests
	}

	file, header, err := c.Request.FormFile("profilePicture")
	if err != nil {
		if err == http.ErrMissingFile {
			return upd, ""
		}
		return upd, ErrUnmarshal
	}
	defer file.Close()

	if header.Size > maxProfilePictureSize {
		return upd, ErrFileTooLarge
	}

	// Sniff the actual content rather than trusting the client header.
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && n == 0 {
		return upd, ErrUnmarshal
	}
	contentType := http.DetectContentType(head[:n])
	if contentType != "image/jpeg" && contentType != "image/png" {
		return upd, ErrUnsupportedFileType
	}
	if _, err := file.Seek(0, 0); err != nil {
		return upd, ErrUploadFile
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	objectName := "avatars/" + userID + "/" + uuid.New().String() + ext

	url, err := a.storage.UploadProfilePicture(c.Request.Context(), objectName, file, contentType)
	if err != nil {
		a.toSentry(c, "update_user", "storage", sentry.LevelError, err)
		return upd, ErrUploadFile
	}
	upd.ProfilePicture = &url

	return upd, ""
}

// normalizeUpdate trims and validates the mutable fields in place.
func normalizeUpdate(upd *models.UpdateUser) string {
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return ErrMissingFields
		}
		if code := validateName(name); code != "" {
			return code
		}
		upd.Name = &name
	}

	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if code := validateEmail(email); code != "" {
			return code
		}
		upd.Email = &email
	}

	if upd.Bio != nil && len([]rune(*upd.Bio)) > maxBioLength {
		return ErrBioTooLong
	}

	return ""
}

// HandleDeleteUser removes an account. Only the owner or an admin may
// delete; the deleted id is pulled out of everyone's follow lists.
func (a *App) HandleDeleteUser(c *gin.Context) {
	userID := c.Param("userId")
	if !isValidUserID(userID) {
		writeError(c, ErrInvalidUserID, nil)
		return
	}

	actor, err := middleware.GetUser(c)
	if err != nil {
		writeError(c, ErrUnauthorized, nil)
		return
	}

	if actor.ID.Hex() != userID && actor.Role != models.RoleAdmin {
		writeError(c, ErrForbidden, nil)
		return
	}

	if err := a.db.DeleteUser(c.Request.Context(), userID); err != nil {
		if mongodb.IsNotFound(err) {
			writeError(c, ErrUserNotFound, nil)
			return
		}
		a.toSentry(c, "delete_user", "db", sentry.LevelError, err)
		writeError(c, ErrDeleteUser, nil)
		return
	}

	// Best-effort cascade; orphaned references are cleaned but a failure
	// does not undo the delete.
	if err := a.db.RemoveFromFollowLists(c.Request.Context(), userID); err != nil {
		a.toSentry(c, "delete_user", "db_cascade", sentry.LevelWarning, err)
	}

	message := "User account deleted"
	if actor.ID.Hex() == userID {
		message = "Your account has been deleted"
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
