package leave

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	leaveerrors "go-leave/internal/leave/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/repository"
	"go-leave/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const unknownCreatorName = "Unknown"

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	ListAll(ctx context.Context) ([]LeaveResponse, error)
	ListForCurrentUser(ctx context.Context, callerID string) ([]LeaveResponse, error)
	Create(ctx context.Context, callerID string, req CreateLeaveRequest) (LeaveResponse, error)
	Update(ctx context.Context, actor Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	UpdateStatus(ctx context.Context, id, status string) (LeaveResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error
	Stats(ctx context.Context) (StatsResponse, error)
}

// UserDirectory is the slice of the user module the leave service reads from.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (user.UserResponse, error)
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
}

// Actor is the authenticated caller acting on a leave record.
type Actor struct {
	ID   string
	Role string
}

// canModify reports whether the actor may edit or delete l. Admins may act
// on any record; everyone else only on records they created.
func (a Actor) canModify(l *Leave) bool {
	if a.Role == user.RoleAdmin {
		return true
	}
	return a.ID != "" && l.CreatedByID != nil && l.CreatedByID.String() == a.ID
}

type service struct {
	repo   Repository
	users  UserDirectory
	now    func() time.Time
	group  singleflight.Group
	logger *zap.Logger
}

// NewService wires the leave service. A nil now falls back to time.Now.
func NewService(repo Repository, users UserDirectory, now func() time.Time, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, users: users, now: now, logger: l}
}

func (s *service) ListAll(ctx context.Context) ([]LeaveResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	leaves, err := s.repo.ListAll(ctx)
	if err != nil {
		l.Error("failed to list leaves", zap.Error(err))
		return nil, err
	}
	return s.withCreators(ctx, leaves), nil
}

func (s *service) ListForCurrentUser(ctx context.Context, callerID string) ([]LeaveResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	caller, err := uuid.Parse(callerID)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	leaves, err := s.repo.ListByCreator(ctx, caller)
	if err != nil {
		l.Error("failed to list caller leaves", zap.String("caller_id", callerID), zap.Error(err))
		return nil, err
	}
	return s.withCreators(ctx, leaves), nil
}

func (s *service) Create(ctx context.Context, callerID string, req CreateLeaveRequest) (LeaveResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	caller, err := uuid.Parse(callerID)
	if err != nil {
		return LeaveResponse{}, apperror.ErrUnauthorized
	}

	draft := leaveDraft{
		EmployeeID: req.EmployeeID,
		LeaveType:  req.LeaveType,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Reason:     req.Reason,
	}
	start, end, err := s.validate(ctx, draft, true)
	if err != nil {
		l.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	created, err := s.repo.Create(ctx, &Leave{
		EmployeeID:  req.EmployeeID,
		LeaveType:   req.LeaveType,
		StartDate:   start,
		EndDate:     end,
		Reason:      req.Reason,
		Status:      StatusPending,
		CreatedByID: &caller,
	})
	if err != nil {
		l.Error("failed to create leave", zap.Error(err))
		return LeaveResponse{}, err
	}

	l.Info("leave created",
		zap.String("leave_id", created.ID.String()),
		zap.String("employee_id", created.EmployeeID),
		zap.String("created_by_id", callerID),
	)
	return ToResponse(*created), nil
}

func (s *service) Update(ctx context.Context, actor Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	current, err := s.find(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !actor.canModify(current) {
		l.Warn("update rejected for non-owner",
			zap.String("leave_id", id),
			zap.String("caller_id", actor.ID),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveNotOwner
	}
	if !current.IsPending() {
		l.Warn("update rejected for non-pending leave",
			zap.String("leave_id", id),
			zap.String("status", current.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveNotEditable
	}

	draft := draftFrom(*current)
	startChanged := false
	if req.EmployeeID != nil {
		draft.EmployeeID = *req.EmployeeID
	}
	if req.LeaveType != nil {
		draft.LeaveType = *req.LeaveType
	}
	if req.StartDate != nil {
		startChanged = *req.StartDate != draft.StartDate
		draft.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		draft.EndDate = *req.EndDate
	}
	if req.Reason != nil {
		draft.Reason = *req.Reason
	}

	start, end, err := s.validate(ctx, draft, startChanged)
	if err != nil {
		l.Warn("update leave validation failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	payload := map[string]any{
		"employee_id": draft.EmployeeID,
		"leave_type":  draft.LeaveType,
		"start_date":  start,
		"end_date":    end,
		"reason":      draft.Reason,
		"updated_at":  s.now(),
	}
	ok, err := s.repo.UpdatePending(ctx, current.ID, payload)
	if errors.Is(err, repository.ErrNotFound) {
		// reviewed between the read and the write
		return LeaveResponse{}, leaveerrors.ErrLeaveNotEditable
	}
	if err != nil || !ok {
		l.Error("failed to update leave", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, leaveerrors.ErrLeaveUpdateFailed
	}

	l.Info("leave updated", zap.String("leave_id", id))
	return s.reload(ctx, current.ID)
}

// UpdateStatus records the review outcome. Review is one-way: only a
// pending record can move to approved or rejected.
func (s *service) UpdateStatus(ctx context.Context, id, status string) (LeaveResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	if status != StatusApproved && status != StatusRejected {
		return LeaveResponse{}, apperror.FieldError("status", "The selected status is invalid.")
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !current.IsPending() {
		l.Warn("review rejected for non-pending leave",
			zap.String("leave_id", id),
			zap.String("status", current.Status),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyReviewed
	}

	ok, err := s.repo.UpdatePending(ctx, current.ID, map[string]any{
		"status":     status,
		"updated_at": s.now(),
	})
	if errors.Is(err, repository.ErrNotFound) {
		return LeaveResponse{}, leaveerrors.ErrLeaveAlreadyReviewed
	}
	if err != nil || !ok {
		l.Error("failed to update leave status", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, leaveerrors.ErrLeaveUpdateFailed
	}

	l.Info("leave reviewed", zap.String("leave_id", id), zap.String("status", status))
	return s.reload(ctx, current.ID)
}

// Delete removes a pending record. Reviewed records are kept.
func (s *service) Delete(ctx context.Context, actor Actor, id string) error {
	l := contextutil.GetLogger(ctx, s.logger)

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !actor.canModify(current) {
		l.Warn("delete rejected for non-owner",
			zap.String("leave_id", id),
			zap.String("caller_id", actor.ID),
		)
		return leaveerrors.ErrLeaveNotOwner
	}
	if !current.IsPending() {
		l.Warn("delete rejected for non-pending leave",
			zap.String("leave_id", id),
			zap.String("status", current.Status),
		)
		return leaveerrors.ErrLeaveNotDeletable
	}

	ok, err := s.repo.Delete(ctx, current.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}
	if err != nil || !ok {
		l.Error("failed to delete leave", zap.String("leave_id", id), zap.Error(err))
		return leaveerrors.ErrLeaveDeleteFailed
	}

	l.Info("leave deleted", zap.String("leave_id", id))
	return nil
}

func (s *service) Stats(ctx context.Context) (StatsResponse, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("failed to count leaves", zap.Error(err))
		return StatsResponse{}, err
	}

	stats := StatsResponse{
		Approved: counts[StatusApproved],
		Pending:  counts[StatusPending],
		Rejected: counts[StatusRejected],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *service) find(ctx context.Context, id string) (*Leave, error) {
	leaveID, err := uuid.Parse(id)
	if err != nil {
		return nil, leaveerrors.ErrLeaveNotFound
	}

	found, err := s.repo.FindByID(ctx, leaveID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, leaveerrors.ErrLeaveNotFound
	}
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("failed to load leave", zap.String("leave_id", id), zap.Error(err))
		return nil, err
	}
	return found, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (LeaveResponse, error) {
	fresh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveUpdateFailed
	}
	return ToResponse(*fresh), nil
}

// withCreators annotates each record with its creator. Lookup failures
// never fail the listing; they resolve to the Unknown placeholder.
func (s *service) withCreators(ctx context.Context, leaves []Leave) []LeaveResponse {
	l := contextutil.GetLogger(ctx, s.logger)

	var (
		mu    sync.Mutex
		cache = map[uuid.UUID]CreatorResponse{}
	)
	// Lookups are shared across concurrent listings, so one caller's
	// cancellation must not fail the others.
	lookupCtx := context.WithoutCancel(ctx)
	lookup := func(id uuid.UUID) (CreatorResponse, error) {
		mu.Lock()
		if c, ok := cache[id]; ok {
			mu.Unlock()
			return c, nil
		}
		mu.Unlock()

		v, err, _ := s.group.Do(id.String(), func() (any, error) {
			u, err := s.users.GetByID(lookupCtx, id.String())
			if err != nil {
				return CreatorResponse{}, err
			}
			uid := u.ID
			return CreatorResponse{ID: &uid, Name: u.Name}, nil
		})
		if err != nil {
			return CreatorResponse{}, err
		}

		c := v.(CreatorResponse)
		mu.Lock()
		cache[id] = c
		mu.Unlock()
		return c, nil
	}

	out := make([]LeaveResponse, len(leaves))
	for i, rec := range leaves {
		resp := ToResponse(rec)
		creator := CreatorResponse{Name: unknownCreatorName}
		if rec.CreatedByID != nil {
			id := *rec.CreatedByID
			creator = fetchOrDefault(func() (CreatorResponse, error) { return lookup(id) }, creator, func(err error) {
				l.Debug("creator lookup failed", zap.String("creator_id", id.String()), zap.Error(err))
			})
		}
		resp.CreatedBy = &creator
		out[i] = resp
	}
	return out
}

// fetchOrDefault returns fallback whenever fetch fails. onErr, if set,
// observes the swallowed error.
func fetchOrDefault[T any](fetch func() (T, error), fallback T, onErr func(error)) T {
	v, err := fetch()
	if err != nil {
		if onErr != nil {
			onErr(err)
		}
		return fallback
	}
	return v
}

type leaveDraft struct {
	EmployeeID string
	LeaveType  string
	StartDate  string
	EndDate    string
	Reason     string
}

func draftFrom(l Leave) leaveDraft {
	return leaveDraft{
		EmployeeID: l.EmployeeID,
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format(DateLayout),
		EndDate:    l.EndDate.Format(DateLayout),
		Reason:     l.Reason,
	}
}

// validate applies the leave validation profile and returns the parsed
// dates. checkStart enables the start >= today rule, which only applies
// when the start date is being set.
func (s *service) validate(ctx context.Context, d leaveDraft, checkStart bool) (time.Time, time.Time, error) {
	fields := map[string][]string{}
	add := func(field, msg string) {
		fields[field] = append(fields[field], msg)
	}

	if strings.TrimSpace(d.EmployeeID) == "" {
		add("employee_id", leaveerrors.MsgEmployeeIDRequired)
	}
	switch d.LeaveType {
	case TypeAnnual, TypeSick, TypeUnpaid:
	default:
		add("leave_type", "The selected leave type is invalid.")
	}
	if strings.TrimSpace(d.Reason) == "" {
		add("reason", leaveerrors.MsgReasonRequired)
	}

	start, startErr := time.Parse(DateLayout, d.StartDate)
	if startErr != nil {
		add("start_date", leaveerrors.MsgInvalidDate)
	}
	end, endErr := time.Parse(DateLayout, d.EndDate)
	if endErr != nil {
		add("end_date", leaveerrors.MsgInvalidDate)
	}
	if startErr == nil && checkStart && start.Before(today(s.now())) {
		add("start_date", leaveerrors.MsgStartBeforeToday)
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		add("end_date", leaveerrors.MsgEndBeforeStart)
	}

	if _, bad := fields["employee_id"]; !bad {
		exists, err := s.users.EmployeeExists(ctx, d.EmployeeID)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if !exists {
			add("employee_id", leaveerrors.MsgEmployeeUnknown)
		}
	}

	if len(fields) > 0 {
		return time.Time{}, time.Time{}, apperror.Validation(fields)
	}
	return start, end, nil
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ToResponse(l Leave) LeaveResponse {
	var createdBy *string
	if l.CreatedByID != nil {
		id := l.CreatedByID.String()
		createdBy = &id
	}
	return LeaveResponse{
		ID:          l.ID.String(),
		EmployeeID:  l.EmployeeID,
		LeaveType:   l.LeaveType,
		StartDate:   l.StartDate.Format(DateLayout),
		EndDate:     l.EndDate.Format(DateLayout),
		Reason:      l.Reason,
		Status:      l.Status,
		CreatedByID: createdBy,
		CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   l.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
