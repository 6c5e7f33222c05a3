package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ErrUnmarshal             = "invalid_request_body"
	ErrMissingFields         = "missing_required_fields"
	ErrInvalidEmail          = "invalid_email"
	ErrNameTooLong           = "name_too_long"
	ErrNameContainsMarkup    = "name_contains_markup"
	ErrBioTooLong            = "bio_too_long"
	ErrPasswordTooShort      = "password_too_short"
	ErrPasswordNoUppercase   = "password_must_contain_uppercase"
	ErrPasswordNoLowercase   = "password_must_contain_lowercase"
	ErrPasswordNoNumber      = "password_must_contain_number"
	ErrPasswordNoSpecialChar = "password_must_contain_special_character"
	ErrInvalidNewPassword    = "invalid_new_password"
	ErrInvalidRole           = "invalid_role"
	ErrUserExists            = "email_already_registered"
	ErrInvalidCredentials    = "invalid_credentials"
	ErrAccountDeactivated    = "account_deactivated"
	ErrUnauthorized          = "unauthorized"
	ErrForbidden             = "forbidden"
	ErrPrivateAccount        = "private_account"
	ErrPasswordNotAllowed    = "password_update_not_allowed"
	ErrInvalidUserID         = "invalid_user_id"
	ErrInvalidSearchQuery    = "invalid_search_query"
	ErrInvalidPagination     = "invalid_pagination"
	ErrInvalidFilter         = "invalid_filter"
	ErrUserNotFound          = "user_not_found"
	ErrNoUsersFound          = "no_users_found"
	ErrXMLNotSupported       = "xml_not_supported"
	ErrTooManyRequests       = "too_many_requests"
	ErrInvalidResetToken     = "invalid_or_expired_token"
	ErrCannotFollowSelf      = "cannot_follow_self"
	ErrCannotUnfollowSelf    = "cannot_unfollow_self"
	ErrAlreadyFollowing      = "already_following"
	ErrNotFollowing          = "not_following"
	ErrFileTooLarge          = "file_too_large"
	ErrUnsupportedFileType   = "unsupported_file_type"

	ErrHashPassword     = "internal_hash_error"
	ErrCreateUser       = "internal_create_user_error"
	ErrProcessSignin    = "internal_signin_error"
	ErrRetrieveUsers    = "internal_retrieve_users_error"
	ErrGenerateToken    = "internal_generate_token_error"
	ErrUpdateUser       = "internal_update_user_error"
	ErrDeleteUser       = "internal_delete_user_error"
	ErrFollowUser       = "internal_follow_error"
	ErrCreateResetToken = "internal_create_reset_token_error"
	ErrSendResetEmail   = "internal_send_reset_email_error"
	ErrResetPassword    = "internal_reset_password_error"
	ErrUploadFile       = "internal_upload_error"
	ErrVerifyUser       = "internal_verify_user_error"
)

var errorStatusMap = map[string]int{
	ErrUnmarshal:             http.StatusBadRequest,
	ErrMissingFields:         http.StatusBadRequest,
	ErrInvalidEmail:          http.StatusBadRequest,
	ErrNameTooLong:           http.StatusBadRequest,
	ErrNameContainsMarkup:    http.StatusBadRequest,
	ErrBioTooLong:            http.StatusBadRequest,
	ErrPasswordTooShort:      http.StatusBadRequest,
	ErrPasswordNoUppercase:   http.StatusBadRequest,
	ErrPasswordNoLowercase:   http.StatusBadRequest,
	ErrPasswordNoNumber:      http.StatusBadRequest,
	ErrPasswordNoSpecialChar: http.StatusBadRequest,
	ErrInvalidNewPassword:    http.StatusBadRequest,
	ErrInvalidRole:           http.StatusBadRequest,
	ErrUserExists:            http.StatusBadRequest,
	ErrInvalidCredentials:    http.StatusUnauthorized,
	ErrAccountDeactivated:    http.StatusForbidden,
	ErrUnauthorized:          http.StatusUnauthorized,
	ErrForbidden:             http.StatusForbidden,
	ErrPrivateAccount:        http.StatusForbidden,
	ErrPasswordNotAllowed:    http.StatusBadRequest,
	ErrInvalidUserID:         http.StatusBadRequest,
	ErrInvalidSearchQuery:    http.StatusBadRequest,
	ErrInvalidPagination:     http.StatusBadRequest,
	ErrInvalidFilter:         http.StatusBadRequest,
	ErrUserNotFound:          http.StatusNotFound,
	ErrNoUsersFound:          http.StatusNotFound,
	ErrXMLNotSupported:       http.StatusNotAcceptable,
	ErrTooManyRequests:       http.StatusTooManyRequests,
	ErrInvalidResetToken:     http.StatusBadRequest,
	ErrCannotFollowSelf:      http.StatusBadRequest,
	ErrCannotUnfollowSelf:    http.StatusBadRequest,
	ErrAlreadyFollowing:      http.StatusBadRequest,
	ErrNotFollowing:          http.StatusBadRequest,
	ErrFileTooLarge:          http.StatusBadRequest,
	ErrUnsupportedFileType:   http.StatusBadRequest,

	ErrHashPassword:     http.StatusInternalServerError,
	ErrCreateUser:       http.StatusInternalServerError,
	ErrProcessSignin:    http.StatusInternalServerError,
	ErrRetrieveUsers:    http.StatusInternalServerError,
	ErrGenerateToken:    http.StatusInternalServerError,
	ErrUpdateUser:       http.StatusInternalServerError,
	ErrDeleteUser:       http.StatusInternalServerError,
	ErrFollowUser:       http.StatusInternalServerError,
	ErrCreateResetToken: http.StatusInternalServerError,
	ErrSendResetEmail:   http.StatusInternalServerError,
	ErrResetPassword:    http.StatusInternalServerError,
	ErrUploadFile:       http.StatusInternalServerError,
	ErrVerifyUser:       http.StatusInternalServerError,
}

func statusForError(code string) int {
	if status, ok := errorStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, code string, details map[string]string) {
	c.AbortWithStatusJSON(statusForError(code), ErrorResponse{Error: code, Details: details})
}
