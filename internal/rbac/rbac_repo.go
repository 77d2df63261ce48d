package rbac

import (
	"go-leave/internal/domain"
)

type RolePermissionRow struct {
	Role     string
	Resource string
	Action   string
}

type RoleInheritanceRow struct {
	Role   string
	Parent string
}

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetRolePermissions() ([]RolePermissionRow, error)
	GetRoleInheritance() ([]RoleInheritanceRow, error)
}

// staticRepository serves the fixed admin/employee policy. Roles are a
// column on users, so there is no table to read grants from.
type staticRepository struct{}

func NewRepository() Repository {
	return staticRepository{}
}

func (staticRepository) GetRolePermissions() ([]RolePermissionRow, error) {
	return []RolePermissionRow{
		{Role: "employee", Resource: domain.ResourceLeave, Action: domain.ActionRead},
		{Role: "employee", Resource: domain.ResourceLeave, Action: domain.ActionCreate},
		{Role: "employee", Resource: domain.ResourceLeave, Action: domain.ActionUpdate},
		{Role: "employee", Resource: domain.ResourceLeave, Action: domain.ActionDelete},
		{Role: "employee", Resource: domain.ResourceStats, Action: domain.ActionRead},
		{Role: "admin", Resource: domain.ResourceLeave, Action: domain.ActionReview},
		{Role: "admin", Resource: domain.ResourceUser, Action: domain.ActionRead},
	}, nil
}

func (staticRepository) GetRoleInheritance() ([]RoleInheritanceRow, error) {
	return []RoleInheritanceRow{
		{Role: "admin", Parent: "employee"},
	}, nil
}
