package user

import "go-leave/internal/shared/repository"

type UserResponse struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	EmployeeID   string `json:"employee_id"`
	Role         string `json:"role"`
	Availability int    `json:"availability"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// ListUsersRequest is bound from the query string of GET /users.
type ListUsersRequest struct {
	repository.FilterParams
	Role string `form:"role" binding:"omitempty,oneof=admin employee"`
}
