package app

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/thapelomagqazana/social-media-2/internal/sdk/models"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 64
	maxNameLength     = 255
	maxEmailLength    = 254
	maxBioLength      = 150

	defaultPageLimit = 10
	maxPageLimit     = 100
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)

type passwordComplexity struct {
	hasUpper   bool
	hasLower   bool
	hasNumber  bool
	hasSpecial bool
}

// validateSignupInput checks all signup fields, aggregating every violation
// into the details map rather than failing on the first.
func validateSignupInput(req SignupRequest) (string, map[string]string) {
	validationErrors := make(map[string]string)

	if req.Name == "" {
		validationErrors["name"] = "name_required"
	}
	if req.Email == "" {
		validationErrors["email"] = "email_required"
	}
	if req.Password == "" {
		validationErrors["password"] = "password_required"
	}

	if len(validationErrors) > 0 {
		return ErrMissingFields, validationErrors
	}

	if code := validateName(req.Name); code != "" {
		validationErrors["name"] = code
	}
	if code := validateEmail(req.Email); code != "" {
		validationErrors["email"] = code
	}

	var complexity passwordComplexity
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		validationErrors["password"] = "password_too_short"
	} else {
		complexity = passwordComplexityFlags(req.Password)
		switch {
		case !complexity.hasUpper:
			validationErrors["password"] = "password_no_uppercase"
		case !complexity.hasLower:
			validationErrors["password"] = "password_no_lowercase"
		case !complexity.hasNumber:
			validationErrors["password"] = "password_no_number"
		case !complexity.hasSpecial:
			validationErrors["password"] = "password_no_special_char"
		}
	}

	if req.Role != "" && req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		validationErrors["role"] = "invalid_role"
	}

	if len(validationErrors) == 0 {
		return "", nil
	}

	return primarySignupError(validationErrors, req.Password, complexity), validationErrors
}

// validateName accepts arbitrary Unicode but rejects markup fragments with a
// dedicated code, and enforces the 255-character cap.
func validateName(name string) string {
	if strings.ContainsAny(name, "<>") {
		return ErrNameContainsMarkup
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return ErrNameTooLong
	}
	return ""
}

// validateEmail expects a trimmed, lowercased address.
func validateEmail(email string) string {
	if len(email) > maxEmailLength {
		return ErrInvalidEmail
	}
	if strings.Contains(email, "..") {
		return ErrInvalidEmail
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return ""
}

func validateSigninInput(req SigninRequest) map[string]string {
	validationErrors := make(map[string]string)

	if req.Email == "" {
		validationErrors["email"] = "email_required"
	}
	if req.Password == "" {
		validationErrors["password"] = "password_required"
	}

	if len(validationErrors) == 0 {
		return nil
	}

	return validationErrors
}

// validateNewPassword enforces the reset-path rules: 8-64 characters with no
// embedded whitespace.
func validateNewPassword(password string) string {
	length := utf8.RuneCountInString(password)
	if length < minPasswordLength || length > maxPasswordLength {
		return ErrInvalidNewPassword
	}
	for _, r := range password {
		if unicode.IsSpace(r) {
			return ErrInvalidNewPassword
		}
	}
	return ""
}

// validateSearchQuery rejects blank queries and anything outside the
// directory search allow-list.
func validateSearchQuery(query string) string {
	if strings.TrimSpace(query) == "" {
		return ErrInvalidSearchQuery
	}
	for _, r := range query {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}
		switch r {
		case '@', '.', '_', '-', '\'':
			continue
		}
		return ErrInvalidSearchQuery
	}
	return ""
}

// isValidUserID reports whether id has the store's native identifier shape,
// a 24-character hex string.
func isValidUserID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

func passwordComplexityFlags(password string) passwordComplexity {
	var complexity passwordComplexity
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			complexity.hasUpper = true
		case unicode.IsLower(char):
			complexity.hasLower = true
		case char >= '0' && char <= '9':
			complexity.hasNumber = true
		case (char >= '!' && char <= '/') || (char >= ':' && char <= '@') || (char >= '[' && char <= '`') || (char >= '{' && char <= '~'):
			complexity.hasSpecial = true
		}
	}

	return complexity
}

func primarySignupError(details map[string]string, password string, complexity passwordComplexity) string {
	errCode := ErrInvalidEmail
	if code, hasNameErr := details["name"]; hasNameErr {
		errCode = code
	}
	if _, hasPasswordErr := details["password"]; hasPasswordErr {
		if utf8.RuneCountInString(password) < minPasswordLength {
			errCode = ErrPasswordTooShort
		} else if !complexity.hasUpper {
			errCode = ErrPasswordNoUppercase
		} else if !complexity.hasLower {
			errCode = ErrPasswordNoLowercase
		} else if !complexity.hasNumber {
			errCode = ErrPasswordNoNumber
		} else if !complexity.hasSpecial {
			errCode = ErrPasswordNoSpecialChar
		}
	}
	if _, hasRoleErr := details["role"]; hasRoleErr {
		errCode = ErrInvalidRole
	}

	return errCode
}

// parseListQuery extracts and validates the directory listing parameters.
func parseListQuery(c *gin.Context) (models.UserQuery, string) {
	query := models.UserQuery{
		Page:  1,
		Limit: defaultPageLimit,
	}

	if v := c.Query("page"); v != "" {
		page, err := strconv.ParseInt(v, 10, 64)
		if err != nil || page < 1 {
			return query, ErrInvalidPagination
		}
		query.Page = page
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil || limit < 1 || limit > maxPageLimit {
			return query, ErrInvalidPagination
		}
		query.Limit = limit
	}

	if v := c.Query("role"); v != "" {
		if v != models.RoleUser && v != models.RoleAdmin {
			return query, ErrInvalidFilter
		}
		query.Role = v
	}

	if v := c.Query("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return query, ErrInvalidFilter
		}
		query.Active = &active
	}

	if v := c.Query("search"); v != "" {
		if code := validateSearchQuery(v); code != "" {
			return query, code
		}
		query.Search = strings.TrimSpace(v)
	}

	// Default ordering is newest first.
	sort := c.Query("sort")
	if sort == "" {
		sort = "-createdAt"
	}
	if strings.HasPrefix(sort, "-") {
		query.SortDesc = true
		sort = strings.TrimPrefix(sort, "-")
	}
	query.SortBy = sort

	return query, ""
}
