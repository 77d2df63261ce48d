package user

import (
	"context"

	"go-leave/internal/shared/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error)
	Filter(ctx context.Context, params repository.FilterParams, where map[string]any) (repository.Page[User], error)
}

var sortableColumns = []string{"created_at", "updated_at", "first_name", "last_name", "email", "employee_id"}

type userRepository struct {
	base repository.Repository[User]
}

func NewRepository(db *gorm.DB) Repository {
	return &userRepository{base: repository.New[User](db, sortableColumns...)}
}

func (r *userRepository) Create(ctx context.Context, u *User) (*User, error) {
	return r.base.Create(ctx, u)
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.base.FindByID(ctx, id)
}

// FindByEmail returns nil, nil when no account uses email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.base.FindByColumn(ctx, map[string]any{"email": email})
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.base.ExistsByColumn(ctx, map[string]any{"email": email})
}

func (r *userRepository) ExistsByEmployeeID(ctx context.Context, employeeID string) (bool, error) {
	return r.base.ExistsByColumn(ctx, map[string]any{"employee_id": employeeID})
}

func (r *userRepository) Filter(ctx context.Context, params repository.FilterParams, where map[string]any) (repository.Page[User], error) {
	return r.base.Filter(ctx, params, repository.FilterOptions{Where: where})
}
