package leave

import (
	"context"

	"go-leave/internal/shared/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, l *Leave) (*Leave, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Leave, error)
	ListAll(ctx context.Context) ([]Leave, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Leave, error)
	UpdatePending(ctx context.Context, id uuid.UUID, payload map[string]any) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// newest activity first
var listOrder = []repository.Order{
	{Column: "updated_at", Desc: true},
	{Column: "created_at", Desc: true},
}

type leaveRepository struct {
	db   *gorm.DB
	base repository.Repository[Leave]
}

func NewRepository(db *gorm.DB) Repository {
	return &leaveRepository{db: db, base: repository.New[Leave](db)}
}

func (r *leaveRepository) Create(ctx context.Context, l *Leave) (*Leave, error) {
	return r.base.Create(ctx, l)
}

func (r *leaveRepository) FindByID(ctx context.Context, id uuid.UUID) (*Leave, error) {
	return r.base.FindByID(ctx, id)
}

func (r *leaveRepository) ListAll(ctx context.Context) ([]Leave, error) {
	return r.base.All(ctx, repository.QueryOptions{Order: listOrder})
}

func (r *leaveRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Leave, error) {
	return r.base.All(ctx, repository.QueryOptions{
		Where: map[string]any{"created_by_id": creatorID},
		Order: listOrder,
	})
}

// UpdatePending applies payload only if the record is still pending. It
// returns repository.ErrNotFound when no pending record has that id.
func (r *leaveRepository) UpdatePending(ctx context.Context, id uuid.UUID, payload map[string]any) (bool, error) {
	return r.base.UpdateByColumn(ctx, map[string]any{"id": id, "status": StatusPending}, payload)
}

func (r *leaveRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.base.DeleteByID(ctx, id)
}

type statusCount struct {
	Status string
	Total  int64
}

func (r *leaveRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&Leave{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
