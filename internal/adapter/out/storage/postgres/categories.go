package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"inkwell/internal/model"
	"inkwell/internal/service"
	"inkwell/pkg/tableinfo"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryStorage struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewCategoryStorage(pool *pgxpool.Pool, getter *trmpgx.CtxGetter) *CategoryStorage {
	return &CategoryStorage{
		pool:   pool,
		getter: getter,
	}
}

func (s *CategoryStorage) CreateCategory(ctx context.Context, in model.Category) (model.Category, error) {
	query, args, err := sq.
		Insert(tableinfo.CategoriesTableName).
		Columns(tableinfo.CategoryNameColumn).
		Values(in.Name).
		Suffix("RETURNING " + tableinfo.CategoryIDColumn).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.Category{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	var id int64
	if err := tr.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.Category{}, fmt.Errorf("%w: category %q", service.ErrConflict, in.Name)
		}
		return model.Category{}, fmt.Errorf("exec error creating category: %w", err)
	}
	return model.Category{ID: strconv.FormatInt(id, 10), Name: in.Name}, nil
}

func (s *CategoryStorage) GetCategoryByID(ctx context.Context, categoryID string) (model.Category, error) {
	id, err := parseID(categoryID)
	if err != nil {
		return model.Category{}, service.ErrNotFound
	}

	query, args, err := sq.
		Select(tableinfo.CategoryIDColumn, tableinfo.CategoryNameColumn).
		From(tableinfo.CategoriesTableName).
		Where(sq.Eq{tableinfo.CategoryIDColumn: id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.Category{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	out, err := scanCategory(tr.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Category{}, service.ErrNotFound
		}
		return model.Category{}, fmt.Errorf("exec select category: %w", err)
	}
	return out, nil
}

func (s *CategoryStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	query, args, err := sq.
		Select(tableinfo.CategoryIDColumn, tableinfo.CategoryNameColumn).
		From(tableinfo.CategoriesTableName).
		OrderBy(tableinfo.CategoryNameColumn + " ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	rows, err := tr.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec select categories: %w", err)
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func (s *CategoryStorage) GetCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]model.Category, error) {
	ids := make([]int64, 0, len(categoryIDs))
	for _, raw := range categoryIDs {
		id, err := parseID(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return map[string]model.Category{}, nil
	}

	query, args, err := sq.
		Select(tableinfo.CategoryIDColumn, tableinfo.CategoryNameColumn).
		From(tableinfo.CategoriesTableName).
		Where(sq.Eq{tableinfo.CategoryIDColumn: ids}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	rows, err := tr.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec select categories: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.Category, len(ids))
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func scanCategory(row rowScanner) (model.Category, error) {
	var (
		c  model.Category
		id int64
	)
	if err := row.Scan(&id, &c.Name); err != nil {
		return model.Category{}, err
	}
	c.ID = strconv.FormatInt(id, 10)
	return c, nil
}
