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

var userColumns = []string{
	tableinfo.UserIDColumn,
	tableinfo.UserUsernameColumn,
	tableinfo.UserEmailColumn,
	tableinfo.UserPasswordHashColumn,
	tableinfo.UserCreatedAtColumn,
}

type UserStorage struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewUserStorage(pool *pgxpool.Pool, getter *trmpgx.CtxGetter) *UserStorage {
	return &UserStorage{
		pool:   pool,
		getter: getter,
	}
}

func (s *UserStorage) CreateUser(ctx context.Context, in model.User) (model.User, error) {
	query, args, err := sq.
		Insert(tableinfo.UsersTableName).
		Columns(
			tableinfo.UserUsernameColumn,
			tableinfo.UserEmailColumn,
			tableinfo.UserPasswordHashColumn,
		).
		Values(in.Username, in.Email, in.PasswordHash).
		Suffix("RETURNING " + joinColumns(userColumns)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	out, err := scanUser(tr.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation on email or username
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.User{}, fmt.Errorf("%w: email or username already used", service.ErrConflict)
		}
		return model.User{}, fmt.Errorf("exec error creating user: %w", err)
	}
	return out, nil
}

func (s *UserStorage) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	id, err := parseID(userID)
	if err != nil {
		return model.User{}, service.ErrNotFound
	}
	return s.getUser(ctx, sq.Eq{tableinfo.UserIDColumn: id})
}

func (s *UserStorage) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.getUser(ctx, sq.Eq{tableinfo.UserEmailColumn: email})
}

func (s *UserStorage) getUser(ctx context.Context, where sq.Eq) (model.User, error) {
	query, args, err := sq.
		Select(userColumns...).
		From(tableinfo.UsersTableName).
		Where(where).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	out, err := scanUser(tr.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, service.ErrNotFound
		}
		return model.User{}, fmt.Errorf("exec select user: %w", err)
	}
	return out, nil
}

func (s *UserStorage) GetUsersByIDs(ctx context.Context, userIDs []string) (map[string]model.User, error) {
	ids := make([]int64, 0, len(userIDs))
	for _, raw := range userIDs {
		id, err := parseID(raw)
		if err != nil {
			continue // dangling reference, resolves to nothing
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return map[string]model.User{}, nil
	}

	query, args, err := sq.
		Select(userColumns...).
		From(tableinfo.UsersTableName).
		Where(sq.Eq{tableinfo.UserIDColumn: ids}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	rows, err := tr.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec select users: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.User, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u  model.User
		id int64
	)
	if err := row.Scan(
		&id,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	); err != nil {
		return model.User{}, err
	}
	u.ID = strconv.FormatInt(id, 10)
	return u, nil
}
