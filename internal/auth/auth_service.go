package auth

import (
	"context"
	"errors"
	"strings"

	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/auth/token"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/repository"
	"go-leave/internal/user"
	usererrors "go-leave/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const loginSuccessMessage = "Login successful"

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (user.UserResponse, error)
	Login(ctx context.Context, email, password string) (LoginResponse, error)
	Logout(ctx context.Context, tokenID string) error
	GetMe(ctx context.Context, userID string) (user.UserResponse, error)
}

type service struct {
	users  user.Repository
	tokens token.Manager
	logger *zap.Logger
}

func NewService(users user.Repository, tokens token.Manager, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{users: users, tokens: tokens, logger: l}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (user.UserResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	email := strings.TrimSpace(req.Email)
	employeeID := strings.TrimSpace(req.EmployeeID)

	fields, err := s.uniquenessErrors(ctx, email, employeeID)
	if err != nil {
		l.Error("failed to check account uniqueness", zap.Error(err))
		return user.UserResponse{}, err
	}
	if len(fields) > 0 {
		l.Warn("register rejected", zap.String("email", email), zap.Any("errors", fields))
		return user.UserResponse{}, apperror.Validation(fields)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("failed to hash password", zap.Error(err))
		return user.UserResponse{}, err
	}

	created, err := s.users.Create(ctx, &user.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		EmployeeID:   employeeID,
		Password:     string(hashed),
		Role:         user.RoleEmployee,
		Availability: user.AvailabilityActive,
		Status:       "active",
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost a race with a concurrent registration
			fields, checkErr := s.uniquenessErrors(ctx, email, employeeID)
			if checkErr == nil && len(fields) > 0 {
				return user.UserResponse{}, apperror.Validation(fields)
			}
			return user.UserResponse{}, usererrors.ErrEmailTaken
		}
		l.Error("failed to create user", zap.Error(err))
		return user.UserResponse{}, err
	}

	l.Info("user registered", zap.String("user_id", created.ID.String()))
	return user.ToResponse(*created), nil
}

func (s *service) uniquenessErrors(ctx context.Context, email, employeeID string) (map[string][]string, error) {
	fields := map[string][]string{}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		fields["email"] = usererrors.ErrEmailTaken.Fields["email"]
	}

	taken, err = s.users.ExistsByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if taken {
		fields["employee_id"] = usererrors.ErrEmployeeIDTaken.Fields["employee_id"]
	}

	return fields, nil
}

func (s *service) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		l.Error("failed to look up user", zap.Error(err))
		return LoginResponse{}, err
	}
	if u == nil {
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		l.Warn("login rejected: bad password", zap.String("user_id", u.ID.String()))
		return LoginResponse{}, autherrors.ErrInvalidCredentials
	}

	if !u.IsActive() {
		l.Warn("login rejected: account unavailable", zap.String("user_id", u.ID.String()))
		return LoginResponse{}, autherrors.ErrUserNotAvailable
	}

	issued, err := s.tokens.Issue(ctx, u.ID.String(), u.Role)
	if err != nil {
		l.Error("failed to issue token", zap.Error(err))
		return LoginResponse{}, err
	}

	l.Info("user logged in", zap.String("user_id", u.ID.String()))
	return LoginResponse{
		Message:     loginSuccessMessage,
		AccessToken: issued.Token,
		TokenType:   token.BearerType,
		ExpiresAt:   issued.ExpiresAt,
		User:        user.ToResponse(*u),
	}, nil
}

func (s *service) Logout(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return autherrors.ErrTokenNotFound
	}
	if err := s.tokens.Revoke(ctx, tokenID); err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("failed to revoke token", zap.Error(err))
		return err
	}
	return nil
}

func (s *service) GetMe(ctx context.Context, userID string) (user.UserResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return user.UserResponse{}, autherrors.ErrInvalidToken
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return user.UserResponse{}, autherrors.ErrAccountNotFound
		}
		return user.UserResponse{}, err
	}

	return user.ToResponse(*u), nil
}
