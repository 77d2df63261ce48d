package leave

type CreateLeaveRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,max=64"`
	LeaveType  string `json:"leave_type" binding:"required,oneof=annual sick unpaid"`
	StartDate  string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" binding:"required,datetime=2006-01-02"`
	Reason     string `json:"reason" binding:"required,max=1000"`
}

// UpdateLeaveRequest carries only the fields being changed.
type UpdateLeaveRequest struct {
	EmployeeID *string `json:"employee_id,omitempty" binding:"omitempty,max=64"`
	LeaveType  *string `json:"leave_type,omitempty" binding:"omitempty,oneof=annual sick unpaid"`
	StartDate  *string `json:"start_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	EndDate    *string `json:"end_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Reason     *string `json:"reason,omitempty" binding:"omitempty,max=1000"`
}

type UpdateLeaveStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

type CreatorResponse struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

type LeaveResponse struct {
	ID          string           `json:"id"`
	EmployeeID  string           `json:"employee_id"`
	LeaveType   string           `json:"leave_type"`
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	Reason      string           `json:"reason"`
	Status      string           `json:"status"`
	CreatedByID *string          `json:"created_by_id"`
	CreatedBy   *CreatorResponse `json:"created_by,omitempty"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

type StatsResponse struct {
	Total    int64 `json:"total"`
	Approved int64 `json:"approved"`
	Pending  int64 `json:"pending"`
	Rejected int64 `json:"rejected"`
}
