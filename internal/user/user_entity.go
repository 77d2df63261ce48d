package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"

	// AvailabilityActive is the only availability value allowed to log in.
	AvailabilityActive = 1
)

type User struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	FirstName       string         `gorm:"column:first_name;type:varchar(255);not null"`
	LastName        string         `gorm:"column:last_name;type:varchar(255);not null"`
	Email           string         `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	EmployeeID      string         `gorm:"column:employee_id;type:varchar(64);not null;uniqueIndex"`
	Password        string         `gorm:"column:password;type:varchar(255);not null"`
	Role            string         `gorm:"column:role;type:varchar(50);not null;default:'employee'"`
	Availability    int            `gorm:"column:availability;not null;default:1"`
	Status          string         `gorm:"column:status;type:varchar(50);not null;default:'active'"`
	EmailVerifiedAt *time.Time     `gorm:"column:email_verified_at"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName joins first and last name the way listings display the creator.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u User) IsActive() bool {
	return u.Availability == AvailabilityActive
}
