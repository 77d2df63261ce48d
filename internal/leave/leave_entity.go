package leave

import (
	"time"

	"go-leave/internal/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	TypeAnnual = "annual"
	TypeSick   = "sick"
	TypeUnpaid = "unpaid"

	DateLayout = "2006-01-02"
)

type Leave struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID  string     `gorm:"column:employee_id;type:varchar(64);not null;index"`
	LeaveType   string     `gorm:"column:leave_type;type:varchar(30);not null"`
	StartDate   time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate     time.Time  `gorm:"column:end_date;type:date;not null"`
	Reason      string     `gorm:"column:reason;type:text;not null"`
	Status      string     `gorm:"column:status;type:varchar(20);not null;default:'pending';index"`
	CreatedByID *uuid.UUID `gorm:"column:created_by_id;type:uuid;index"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	// Constraint-only relations; listings resolve the creator separately.
	Employee *user.User `gorm:"foreignKey:EmployeeID;references:EmployeeID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Creator  *user.User `gorm:"foreignKey:CreatedByID;references:ID;constraint:OnDelete:SET NULL"`
}

func (Leave) TableName() string {
	return "leaves"
}

func (l *Leave) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (l Leave) IsPending() bool {
	return l.Status == StatusPending
}
