package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultRowsPerPage = 15
	MaxRowsPerPage     = 100
	defaultSortColumn  = "created_at"
)

// FilterParams mirrors the query string of a listing endpoint. It is echoed
// back in Page.Filters so clients can build stable next-page links.
type FilterParams struct {
	SortBy        string `form:"sortBy" json:"sortBy"`
	SortDirection string `form:"sortDirection" json:"sortDirection"`
	RowsPerPage   int    `form:"rowsPerPage" json:"rowsPerPage"`
	Page          int    `form:"page" json:"page"`
}

type FilterOptions struct {
	With  []string
	Where map[string]any
}

type Page[T any] struct {
	Items       []T          `json:"items"`
	Total       int64        `json:"total"`
	Page        int          `json:"page"`
	RowsPerPage int          `json:"rowsPerPage"`
	LastPage    int          `json:"lastPage"`
	Filters     FilterParams `json:"filters"`
}

func (r *gormRepository[T]) normalize(p FilterParams) FilterParams {
	if _, ok := r.sortable[p.SortBy]; !ok {
		p.SortBy = defaultSortColumn
	}
	p.SortDirection = strings.ToLower(strings.TrimSpace(p.SortDirection))
	if p.SortDirection != "asc" {
		p.SortDirection = "desc"
	}
	if p.RowsPerPage < 1 {
		p.RowsPerPage = DefaultRowsPerPage
	}
	if p.RowsPerPage > MaxRowsPerPage {
		p.RowsPerPage = MaxRowsPerPage
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

func (r *gormRepository[T]) Filter(ctx context.Context, params FilterParams, opts FilterOptions) (Page[T], error) {
	params = r.normalize(params)

	base := r.db.WithContext(ctx).Model(new(T))
	if len(opts.Where) > 0 {
		base = base.Where(opts.Where)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return Page[T]{}, translate(err)
	}

	items := []T{}
	err := preload(base, opts.With).
		Order(clause.OrderByColumn{Column: clause.Column{Name: params.SortBy}, Desc: params.SortDirection == "desc"}).
		Offset((params.Page - 1) * params.RowsPerPage).
		Limit(params.RowsPerPage).
		Find(&items).Error
	if err != nil {
		return Page[T]{}, translate(err)
	}

	lastPage := int((total + int64(params.RowsPerPage) - 1) / int64(params.RowsPerPage))
	if lastPage < 1 {
		lastPage = 1
	}

	return Page[T]{
		Items:       items,
		Total:       total,
		Page:        params.Page,
		RowsPerPage: params.RowsPerPage,
		LastPage:    lastPage,
		Filters:     params,
	}, nil
}

func (r *gormRepository[T]) Paginate(ctx context.Context, page, rowsPerPage int) (Page[T], error) {
	return r.Filter(ctx, FilterParams{Page: page, RowsPerPage: rowsPerPage}, FilterOptions{})
}
