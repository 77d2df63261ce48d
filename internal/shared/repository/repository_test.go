package repository_test

import (
	"context"
	"testing"
	"time"

	"go-leave/internal/shared/repository"
	"go-leave/internal/shared/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type owner struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

type widget struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"uniqueIndex;not null"`
	Color     string
	Status    string `gorm:"default:'draft'"`
	OwnerID   *uint
	Owner     *owner
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type note struct {
	ID   uint `gorm:"primaryKey"`
	Body string
}

func setup(t *testing.T) (repository.Repository[widget], *gorm.DB) {
	t.Helper()
	db := testdb.Open(t, &owner{}, &widget{}, &note{})
	return repository.New[widget](db, "code", "created_at"), db
}

func seed(t *testing.T, repo repository.Repository[widget], codes ...string) {
	t.Helper()
	for _, c := range codes {
		_, err := repo.Create(context.Background(), &widget{Code: c, Color: "red"})
		require.NoError(t, err)
	}
}

func TestRepository_CreateReloadsDefaults(t *testing.T) {
	repo, _ := setup(t)

	got, err := repo.Create(context.Background(), &widget{Code: "w-1"})

	require.NoError(t, err)
	assert.NotZero(t, got.ID)
	assert.Equal(t, "draft", got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestRepository_CreateDuplicate(t *testing.T) {
	repo, _ := setup(t)
	seed(t, repo, "w-1")

	_, err := repo.Create(context.Background(), &widget{Code: "w-1"})

	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.True(t, repository.IsDuplicate(err))
}

func TestRepository_Lookups(t *testing.T) {
	ctx := context.Background()
	repo, _ := setup(t)
	seed(t, repo, "w-1", "w-2")

	t.Run("find by id missing", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uint(999))
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("find by column", func(t *testing.T) {
		got, err := repo.FindByColumn(ctx, map[string]any{"code": "w-2"})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "w-2", got.Code)
	})

	t.Run("find by column miss is nil", func(t *testing.T) {
		got, err := repo.FindByColumn(ctx, map[string]any{"code": "nope"})
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("get by column miss is empty", func(t *testing.T) {
		got, err := repo.GetByColumn(ctx, map[string]any{"color": "blue"})
		assert.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("exists", func(t *testing.T) {
		ok, err := repo.ExistsByColumn(ctx, map[string]any{"code": "w-1"})
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.ExistsByID(ctx, uint(999))
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("find last by column", func(t *testing.T) {
		got, err := repo.FindLastByColumn(ctx, map[string]any{"color": "red"})
		require.NoError(t, err)
		require.NotNil(t, got)
	})
}

func TestRepository_AllAndLimit(t *testing.T) {
	ctx := context.Background()
	repo, _ := setup(t)
	seed(t, repo, "b", "a", "c")

	all, err := repo.All(ctx, repository.QueryOptions{Order: []repository.Order{{Column: "code", Desc: true}}})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Code)
	assert.Equal(t, "a", all[2].Code)

	limited, err := repo.Limit(ctx, 2, repository.QueryOptions{Order: []repository.Order{{Column: "code"}}})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "a", limited[0].Code)
}

func TestRepository_PreloadRelations(t *testing.T) {
	ctx := context.Background()
	repo, db := setup(t)

	o := owner{Name: "Ada"}
	require.NoError(t, db.Create(&o).Error)
	created, err := repo.Create(ctx, &widget{Code: "w-1", OwnerID: &o.ID})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, created.ID, "Owner")
	require.NoError(t, err)
	require.NotNil(t, got.Owner)
	assert.Equal(t, "Ada", got.Owner.Name)
}

func TestRepository_Filter(t *testing.T) {
	ctx := context.Background()
	repo, _ := setup(t)
	seed(t, repo, "w-1", "w-2", "w-3", "w-4", "w-5")

	t.Run("paginates and echoes filters", func(t *testing.T) {
		page, err := repo.Filter(ctx, repository.FilterParams{
			SortBy:        "code",
			SortDirection: "asc",
			RowsPerPage:   2,
			Page:          2,
		}, repository.FilterOptions{})

		require.NoError(t, err)
		assert.Equal(t, int64(5), page.Total)
		assert.Equal(t, 3, page.LastPage)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "w-3", page.Items[0].Code)
		assert.Equal(t, "code", page.Filters.SortBy)
		assert.Equal(t, "asc", page.Filters.SortDirection)
	})

	t.Run("unknown sort column falls back", func(t *testing.T) {
		page, err := repo.Filter(ctx, repository.FilterParams{SortBy: "color; drop table widgets"}, repository.FilterOptions{})

		require.NoError(t, err)
		assert.Equal(t, "created_at", page.Filters.SortBy)
		assert.Equal(t, "desc", page.Filters.SortDirection)
		assert.Equal(t, repository.DefaultRowsPerPage, page.RowsPerPage)
	})

	t.Run("extra constraints", func(t *testing.T) {
		page, err := repo.Filter(ctx, repository.FilterParams{}, repository.FilterOptions{Where: map[string]any{"code": "w-4"}})

		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Items, 1)
	})

	t.Run("paginate", func(t *testing.T) {
		page, err := repo.Paginate(ctx, 1, 3)
		require.NoError(t, err)
		assert.Len(t, page.Items, 3)
		assert.Equal(t, 2, page.LastPage)
	})
}

func TestRepository_Mutations(t *testing.T) {
	ctx := context.Background()
	repo, db := setup(t)
	seed(t, repo, "w-1")
	w, err := repo.FindByColumn(ctx, map[string]any{"code": "w-1"})
	require.NoError(t, err)

	t.Run("update by id", func(t *testing.T) {
		ok, err := repo.Update(ctx, w.ID, map[string]any{"color": "green"})
		require.NoError(t, err)
		assert.True(t, ok)

		got, _ := repo.FindByID(ctx, w.ID)
		assert.Equal(t, "green", got.Color)
	})

	t.Run("update missing id", func(t *testing.T) {
		ok, err := repo.Update(ctx, uint(999), map[string]any{"color": "green"})
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.False(t, ok)
	})

	t.Run("update by column", func(t *testing.T) {
		ok, err := repo.UpdateByColumn(ctx, map[string]any{"code": "w-1"}, map[string]any{"status": "live"})
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = repo.UpdateByColumn(ctx, map[string]any{"code": "missing"}, map[string]any{"status": "live"})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("update by column honours every condition", func(t *testing.T) {
		_, err := repo.UpdateByColumn(ctx, map[string]any{"code": "w-1", "status": "draft"}, map[string]any{"color": "red"})
		assert.ErrorIs(t, err, repository.ErrNotFound)

		got, _ := repo.FindByID(ctx, w.ID)
		assert.Equal(t, "green", got.Color)
		assert.Equal(t, "live", got.Status)
	})

	t.Run("create many and count", func(t *testing.T) {
		require.NoError(t, repo.CreateMany(ctx, []widget{{Code: "m-1"}, {Code: "m-2"}}))
		n, err := repo.Count(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
	})

	t.Run("first or create", func(t *testing.T) {
		got, err := repo.FirstOrCreate(ctx, map[string]any{"code": "w-1"}, &widget{Code: "w-1"})
		require.NoError(t, err)
		assert.Equal(t, w.ID, got.ID)
	})

	t.Run("soft delete, restore, force delete", func(t *testing.T) {
		ok, err := repo.DeleteByID(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = repo.FindByID(ctx, w.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		trashed, err := repo.FindTrashedByID(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, trashed.DeletedAt.Valid)

		ok, err = repo.RestoreByID(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		_, err = repo.FindByID(ctx, w.ID)
		assert.NoError(t, err)

		ok, err = repo.PermanentlyDeleteByID(ctx, w.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		var count int64
		require.NoError(t, db.Unscoped().Model(&widget{}).Where("id = ?", w.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("restore without soft delete support", func(t *testing.T) {
		notes := repository.New[note](db)
		n, err := notes.Create(ctx, &note{Body: "x"})
		require.NoError(t, err)

		_, err = notes.RestoreByID(ctx, n.ID)
		assert.ErrorIs(t, err, repository.ErrSoftDeleteUnsupported)

		ok, err := notes.DeleteByID(ctx, n.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		_, err = notes.FindTrashedByID(ctx, n.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
