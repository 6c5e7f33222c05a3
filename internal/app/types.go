package app

import (
	"time"

	"github.com/thapelomagqazana/social-media-2/internal/sdk/models"
)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type SigninRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// UpdateUserRequest enumerates the fields a profile update may carry.
// Unknown JSON fields are dropped by the decoder rather than merged into the
// stored document. Password is declared only so an attempt to change it
// through this path can be rejected explicitly.
type UpdateUserRequest struct {
	Name        *string   `json:"name"`
	Email       *string   `json:"email"`
	DisplayName *string   `json:"displayName"`
	Bio         *string   `json:"bio"`
	Interests   *[]string `json:"interests"`
	Active      *bool     `json:"active"`
	Private     *bool     `json:"private"`
	Password    *string   `json:"password"`
}

type SignupResponse struct {
	ID   string       `json:"id"`
	User UserResponse `json:"user"`
}

type SigninResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	DisplayName    string    `json:"displayName,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Interests      []string  `json:"interests,omitempty"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	Active         bool      `json:"active"`
	Private        bool      `json:"private"`
	Followers      int       `json:"followers"`
	Following      int       `json:"following"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UserSummary is the compact shape returned in follower/following listings.
type UserSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DisplayName    string `json:"displayName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type ListUsersResponse struct {
	Users       []UserResponse `json:"users"`
	TotalUsers  int64          `json:"totalUsers"`
	CurrentPage int64          `json:"currentPage"`
	TotalPages  int64          `json:"totalPages"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type LivenessResponse struct {
	Status     string `json:"status"`
	Host       string `json:"host"`
	GOMAXPROCS int    `json:"gomaxprocs"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:             u.ID.Hex(),
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		DisplayName:    u.DisplayName,
		Bio:            u.Bio,
		Interests:      u.Interests,
		ProfilePicture: u.ProfilePicture,
		Active:         u.Active,
		Private:        u.Private,
		Followers:      len(u.Followers),
		Following:      len(u.Following),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func toUserSummary(u models.User) UserSummary {
	return UserSummary{
		ID:             u.ID.Hex(),
		Name:           u.Name,
		DisplayName:    u.DisplayName,
		ProfilePicture: u.ProfilePicture,
	}
}
