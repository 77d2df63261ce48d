package user

import (
	"context"
	"errors"

	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/repository"
	usererrors "go-leave/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context, req ListUsersRequest) (repository.Page[UserResponse], error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetAll(ctx context.Context, req ListUsersRequest) (repository.Page[UserResponse], error) {
	l := contextutil.GetLogger(ctx, s.logger)

	var where map[string]any
	if req.Role != "" {
		where = map[string]any{"role": req.Role}
	}

	page, err := s.repo.Filter(ctx, req.FilterParams, where)
	if err != nil {
		l.Error("failed to list users", zap.Error(err))
		return repository.Page[UserResponse]{}, err
	}

	items := make([]UserResponse, len(page.Items))
	for i, u := range page.Items {
		items[i] = ToResponse(u)
	}

	return repository.Page[UserResponse]{
		Items:       items,
		Total:       page.Total,
		Page:        page.Page,
		RowsPerPage: page.RowsPerPage,
		LastPage:    page.LastPage,
		Filters:     page.Filters,
	}, nil
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return UserResponse{}, usererrors.ErrUserNotFound
	}

	u, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		contextutil.GetLogger(ctx, s.logger).Error("failed to find user", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}

	return ToResponse(*u), nil
}

// FindByEmail returns nil, nil when no account matches.
func (s *service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *service) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	return s.repo.ExistsByEmployeeID(ctx, employeeID)
}

// ToResponse strips the password hash and formats timestamps for the API.
func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:           u.ID.String(),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Name:         u.FullName(),
		Email:        u.Email,
		EmployeeID:   u.EmployeeID,
		Role:         u.Role,
		Availability: u.Availability,
		Status:       u.Status,
		CreatedAt:    u.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:    u.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
