package app

import (
	"context"
	"fmt"

	"go-leave/internal/shared/repository"
	"go-leave/internal/user"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "password"

var seedAccounts = []user.User{
	{FirstName: "Admin", LastName: "User", Email: "admin@example.com", EmployeeID: "ADMIN001", Role: user.RoleAdmin},
	{FirstName: "Employee", LastName: "One", Email: "employee1@example.com", EmployeeID: "EMP001", Role: user.RoleEmployee},
}

// seedUsers creates the demo accounts unless they already exist.
func seedUsers(ctx context.Context, db *gorm.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	repo := repository.New[user.User](db)
	for _, acc := range seedAccounts {
		acc.Password = string(hash)
		u, err := repo.FirstOrCreate(ctx, map[string]any{"email": acc.Email}, &acc)
		if err != nil {
			return fmt.Errorf("seed %s: %w", acc.Email, err)
		}
		zap.L().Named("app.seed").Info("seed account ready",
			zap.String("email", u.Email),
			zap.String("role", u.Role),
		)
	}
	return nil
}
