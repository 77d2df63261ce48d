package repository

import (
	"context"
	"errors"
	"reflect"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Order is a single ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// QueryOptions narrows the listing family (All, Limit).
type QueryOptions struct {
	Columns []string
	With    []string
	Where   map[string]any
	Order   []Order
}

type Repository[T any] interface {
	FindByID(ctx context.Context, id any, with ...string) (*T, error)
	FindTrashedByID(ctx context.Context, id any) (*T, error)
	FindByColumn(ctx context.Context, where map[string]any, with ...string) (*T, error)
	FindLastByColumn(ctx context.Context, where map[string]any) (*T, error)
	GetByColumn(ctx context.Context, where map[string]any, with ...string) ([]T, error)
	ExistsByColumn(ctx context.Context, where map[string]any) (bool, error)
	ExistsByID(ctx context.Context, id any) (bool, error)

	All(ctx context.Context, opts QueryOptions) ([]T, error)
	Limit(ctx context.Context, n int, opts QueryOptions) ([]T, error)
	Paginate(ctx context.Context, page, rowsPerPage int) (Page[T], error)
	Filter(ctx context.Context, params FilterParams, opts FilterOptions) (Page[T], error)
	Count(ctx context.Context, where map[string]any) (int64, error)

	Create(ctx context.Context, entity *T) (*T, error)
	CreateMany(ctx context.Context, entities []T) error
	FirstOrCreate(ctx context.Context, where map[string]any, entity *T) (*T, error)
	Update(ctx context.Context, id any, payload map[string]any) (bool, error)
	UpdateByColumn(ctx context.Context, where map[string]any, payload map[string]any) (bool, error)
	DeleteByID(ctx context.Context, id any) (bool, error)
	RestoreByID(ctx context.Context, id any) (bool, error)
	PermanentlyDeleteByID(ctx context.Context, id any) (bool, error)
}

type gormRepository[T any] struct {
	db       *gorm.DB
	sortable map[string]struct{}

	once      sync.Once
	schema    *schema.Schema
	schemaErr error
}

// New returns a gorm-backed repository for T. sortable lists the columns a
// Filter call may order by; anything else falls back to created_at.
func New[T any](db *gorm.DB, sortable ...string) Repository[T] {
	cols := make(map[string]struct{}, len(sortable))
	for _, c := range sortable {
		cols[c] = struct{}{}
	}
	return &gormRepository[T]{db: db, sortable: cols}
}

func (r *gormRepository[T]) parse() (*schema.Schema, error) {
	r.once.Do(func() {
		stmt := &gorm.Statement{DB: r.db}
		r.schemaErr = stmt.Parse(new(T))
		r.schema = stmt.Schema
	})
	return r.schema, r.schemaErr
}

func (r *gormRepository[T]) byID(id any) (clause.Expression, error) {
	s, err := r.parse()
	if err != nil {
		return nil, err
	}
	if s.PrioritizedPrimaryField == nil {
		return nil, ErrNoPrimaryKey
	}
	return clause.Eq{
		Column: clause.Column{Table: clause.CurrentTable, Name: s.PrioritizedPrimaryField.DBName},
		Value:  id,
	}, nil
}

func (r *gormRepository[T]) softDeletable() bool {
	s, err := r.parse()
	if err != nil {
		return false
	}
	deletedAt := reflect.TypeOf(gorm.DeletedAt{})
	for _, f := range s.Fields {
		if f.FieldType == deletedAt {
			return true
		}
	}
	return false
}

func preload(tx *gorm.DB, with []string) *gorm.DB {
	for _, rel := range with {
		tx = tx.Preload(rel)
	}
	return tx
}

func applyOrder(tx *gorm.DB, order []Order) *gorm.DB {
	for _, o := range order {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	return tx
}

func (r *gormRepository[T]) query(ctx context.Context, opts QueryOptions) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(new(T))
	if len(opts.Columns) > 0 {
		tx = tx.Select(opts.Columns)
	}
	if len(opts.Where) > 0 {
		tx = tx.Where(opts.Where)
	}
	tx = preload(tx, opts.With)
	return applyOrder(tx, opts.Order)
}

func (r *gormRepository[T]) FindByID(ctx context.Context, id any, with ...string) (*T, error) {
	cond, err := r.byID(id)
	if err != nil {
		return nil, err
	}
	var entity T
	if err := preload(r.db.WithContext(ctx), with).Where(cond).First(&entity).Error; err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

func (r *gormRepository[T]) FindTrashedByID(ctx context.Context, id any) (*T, error) {
	cond, err := r.byID(id)
	if err != nil {
		return nil, err
	}
	var entity T
	if err := r.db.WithContext(ctx).Unscoped().Where(cond).First(&entity).Error; err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

func (r *gormRepository[T]) FindByColumn(ctx context.Context, where map[string]any, with ...string) (*T, error) {
	var entity T
	err := preload(r.db.WithContext(ctx), with).Where(where).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

func (r *gormRepository[T]) FindLastByColumn(ctx context.Context, where map[string]any) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).
		Where(where).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Take(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

func (r *gormRepository[T]) GetByColumn(ctx context.Context, where map[string]any, with ...string) ([]T, error) {
	entities := []T{}
	if err := preload(r.db.WithContext(ctx), with).Where(where).Find(&entities).Error; err != nil {
		return nil, translate(err)
	}
	return entities, nil
}

func (r *gormRepository[T]) ExistsByColumn(ctx context.Context, where map[string]any) (bool, error) {
	count, err := r.Count(ctx, where)
	return count > 0, err
}

func (r *gormRepository[T]) ExistsByID(ctx context.Context, id any) (bool, error) {
	cond, err := r.byID(id)
	if err != nil {
		return false, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(new(T)).Where(cond).Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (r *gormRepository[T]) All(ctx context.Context, opts QueryOptions) ([]T, error) {
	entities := []T{}
	if err := r.query(ctx, opts).Find(&entities).Error; err != nil {
		return nil, translate(err)
	}
	return entities, nil
}

func (r *gormRepository[T]) Limit(ctx context.Context, n int, opts QueryOptions) ([]T, error) {
	entities := []T{}
	if err := r.query(ctx, opts).Limit(n).Find(&entities).Error; err != nil {
		return nil, translate(err)
	}
	return entities, nil
}

func (r *gormRepository[T]) Count(ctx context.Context, where map[string]any) (int64, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(new(T))
	if len(where) > 0 {
		tx = tx.Where(where)
	}
	if err := tx.Count(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

// Create inserts entity and returns a freshly reloaded copy, so database
// defaults (status, timestamps) are reflected in the result.
func (r *gormRepository[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return nil, translate(err)
	}
	id, err := r.primaryKeyOf(ctx, entity)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *gormRepository[T]) CreateMany(ctx context.Context, entities []T) error {
	if len(entities) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(&entities).Error)
}

func (r *gormRepository[T]) FirstOrCreate(ctx context.Context, where map[string]any, entity *T) (*T, error) {
	if err := r.db.WithContext(ctx).Where(where).FirstOrCreate(entity).Error; err != nil {
		return nil, translate(err)
	}
	id, err := r.primaryKeyOf(ctx, entity)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *gormRepository[T]) Update(ctx context.Context, id any, payload map[string]any) (bool, error) {
	entity, err := r.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return r.updates(ctx, entity, payload)
}

// UpdateByColumn applies payload to every row matching where in a single
// statement, so the condition still holds at write time. It returns
// ErrNotFound when no row matched.
func (r *gormRepository[T]) UpdateByColumn(ctx context.Context, where map[string]any, payload map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(new(T)).Where(where).Updates(payload)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, ErrNotFound
	}
	return true, nil
}

func (r *gormRepository[T]) updates(ctx context.Context, entity *T, payload map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(entity).Updates(payload)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteByID soft-deletes when T carries a gorm.DeletedAt field and
// hard-deletes otherwise.
func (r *gormRepository[T]) DeleteByID(ctx context.Context, id any) (bool, error) {
	entity, err := r.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Delete(entity)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository[T]) RestoreByID(ctx context.Context, id any) (bool, error) {
	if !r.softDeletable() {
		return false, ErrSoftDeleteUnsupported
	}
	cond, err := r.byID(id)
	if err != nil {
		return false, err
	}
	var entity T
	err = r.db.WithContext(ctx).Unscoped().
		Where(cond).
		Where("deleted_at IS NOT NULL").
		First(&entity).Error
	if err != nil {
		return false, translate(err)
	}
	res := r.db.WithContext(ctx).Unscoped().Model(&entity).Update("deleted_at", nil)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository[T]) PermanentlyDeleteByID(ctx context.Context, id any) (bool, error) {
	entity, err := r.FindTrashedByID(ctx, id)
	if err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Unscoped().Delete(entity)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository[T]) primaryKeyOf(ctx context.Context, entity *T) (any, error) {
	s, err := r.parse()
	if err != nil {
		return nil, err
	}
	if s.PrioritizedPrimaryField == nil {
		return nil, ErrNoPrimaryKey
	}
	value, zero := s.PrioritizedPrimaryField.ValueOf(ctx, reflect.ValueOf(entity).Elem())
	if zero {
		return nil, ErrNoPrimaryKey
	}
	return value, nil
}
