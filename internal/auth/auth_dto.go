package auth

import (
	"time"

	"go-leave/internal/user"
)

type RegisterRequest struct {
	FirstName            string `json:"first_name" binding:"required,max=255"`
	LastName             string `json:"last_name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	EmployeeID           string `json:"employee_id" binding:"required,max=64"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Message     string            `json:"message"`
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	ExpiresAt   time.Time         `json:"expires_at"`
	User        user.UserResponse `json:"user"`
}
