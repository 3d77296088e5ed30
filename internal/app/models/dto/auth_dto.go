package dto

import "github.com/studyshare/backend/internal/app/models"

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32,alphanum" example:"jdoe"`
	Email    string `json:"email" binding:"required,email" example:"jdoe@college.edu"`
	Password string `json:"password" binding:"required,min=8" example:"hunter42x"`
	FullName string `json:"fullName" binding:"required,max=120" example:"John Doe"`
	Branch   string `json:"branch" binding:"required,max=80" example:"Computer Science"`
	Year     int    `json:"year" binding:"required,min=1,max=6" example:"3"`
}

// LoginRequest is the payload for exchanging credentials for tokens.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest rotates a refresh token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresIn        int    `json:"expiresIn"`
	RefreshExpiresIn int    `json:"refreshExpiresIn"`
	TokenType        string `json:"tokenType" example:"Bearer"`
}

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Branch   string `json:"branch"`
	Year     int    `json:"year"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// ToUserResponse maps a user model to its public representation.
func ToUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Branch:   user.Branch,
		Year:     user.Year,
		Role:     string(user.Role),
		Status:   string(user.Status),
	}
}
