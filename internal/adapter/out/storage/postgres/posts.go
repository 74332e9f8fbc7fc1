package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"inkwell/internal/adapter/out/storage"
	"inkwell/internal/model"
	"inkwell/internal/service"
	"inkwell/pkg/tableinfo"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrBuildingQuery = errors.New("error building sql-query")

var postColumns = []string{
	tableinfo.PostIDColumn,
	tableinfo.PostTitleColumn,
	tableinfo.PostContentColumn,
	tableinfo.PostImageColumn,
	tableinfo.PostAuthorIDColumn,
	tableinfo.PostCategoryIDColumn,
	tableinfo.PostLikesColumn,
	tableinfo.PostCreatedAtColumn,
}

type PostStorage struct {
	pool   *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewPostStorage(pool *pgxpool.Pool, getter *trmpgx.CtxGetter) *PostStorage {
	return &PostStorage{
		pool:   pool,
		getter: getter,
	}
}

func (s *PostStorage) CreatePost(ctx context.Context, in model.Post) (model.Post, error) {
	authorID, err := parseID(in.AuthorID)
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: bad author id", service.ErrInvalidRequest)
	}
	categoryID, err := parseOptionalID(in.CategoryID)
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: bad category id", service.ErrInvalidRequest)
	}

	query, args, err := sq.
		Insert(tableinfo.PostsTableName).
		Columns(
			tableinfo.PostTitleColumn,
			tableinfo.PostContentColumn,
			tableinfo.PostImageColumn,
			tableinfo.PostAuthorIDColumn,
			tableinfo.PostCategoryIDColumn,
		).
		Values(in.Title, in.Content, in.Image, authorID, categoryID).
		Suffix("RETURNING " + joinColumns(postColumns)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	out, err := scanPost(tr.QueryRow(ctx, query, args...))
	if err != nil {
		return model.Post{}, fmt.Errorf("exec error creating post: %w", err)
	}
	return out, nil
}

func (s *PostStorage) GetPostByID(ctx context.Context, postID string) (model.Post, error) {
	id, err := parseID(postID)
	if err != nil {
		return model.Post{}, service.ErrNotFound
	}

	query, args, err := sq.
		Select(postColumns...).
		From(tableinfo.PostsTableName).
		Where(sq.Eq{tableinfo.PostIDColumn: id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	out, err := scanPost(tr.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, service.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("exec select post by id: %w", err)
	}

	comments, err := s.getComments(ctx, []int64{id})
	if err != nil {
		return model.Post{}, err
	}
	out.Comments = comments[id]
	return out, nil
}

func (s *PostStorage) ListPosts(ctx context.Context, params storage.ListPostsParams) ([]model.Post, int64, error) {
	where, err := listPostsWhere(params)
	if err != nil {
		return nil, 0, err
	}

	qb := sq.
		Select(postColumns...).
		From(tableinfo.PostsTableName).
		Where(where).
		OrderBy(
			tableinfo.PostCreatedAtColumn+" DESC",
			tableinfo.PostIDColumn+" DESC",
		).
		Offset(uint64(params.Offset)).
		PlaceholderFormat(sq.Dollar)
	if params.Limit > 0 {
		qb = qb.Limit(uint64(params.Limit))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	rows, err := tr.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("exec error selecting posts: %w", err)
	}
	defer rows.Close()

	var (
		out []model.Post
		ids []int64
	)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan error: %w", err)
		}
		id, _ := parseID(p.ID)
		ids = append(ids, id)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	if len(ids) > 0 {
		comments, err := s.getComments(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range out {
			out[i].Comments = comments[ids[i]]
		}
	}

	countQuery, countArgs, err := sq.
		Select("COUNT(*)").
		From(tableinfo.PostsTableName).
		Where(where).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	var count int64
	if err := tr.QueryRow(ctx, countQuery, countArgs...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("exec count posts: %w", err)
	}

	return out, count, nil
}

func (s *PostStorage) UpdatePost(ctx context.Context, postID string, patch storage.PostPatch) (model.Post, error) {
	if patch.IsEmpty() {
		return s.GetPostByID(ctx, postID)
	}
	id, err := parseID(postID)
	if err != nil {
		return model.Post{}, service.ErrNotFound
	}

	qb, err := updatePostBuilder(id, patch)
	if err != nil {
		return model.Post{}, err
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	out, err := scanPost(tr.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Post{}, service.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("exec update post: %w", err)
	}

	comments, err := s.getComments(ctx, []int64{id})
	if err != nil {
		return model.Post{}, err
	}
	out.Comments = comments[id]
	return out, nil
}

func (s *PostStorage) DeletePost(ctx context.Context, postID string) error {
	id, err := parseID(postID)
	if err != nil {
		return service.ErrNotFound
	}

	query, args, err := sq.
		Delete(tableinfo.PostsTableName).
		Where(sq.Eq{tableinfo.PostIDColumn: id}).
		Suffix("RETURNING " + tableinfo.PostIDColumn).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	var dummy int64
	if err := tr.QueryRow(ctx, query, args...).Scan(&dummy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrNotFound
		}
		return fmt.Errorf("exec delete post: %w", err)
	}
	return nil
}

func (s *PostStorage) GetPostAuthorID(ctx context.Context, postID string) (string, error) {
	id, err := parseID(postID)
	if err != nil {
		return "", service.ErrNotFound
	}

	query, args, err := sq.
		Select(tableinfo.PostAuthorIDColumn).
		From(tableinfo.PostsTableName).
		Where(sq.Eq{tableinfo.PostIDColumn: id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	var authorID int64
	if err := tr.QueryRow(ctx, query, args...).Scan(&authorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", service.ErrNotFound
		}
		return "", fmt.Errorf("exec select author_id: %w", err)
	}
	return strconv.FormatInt(authorID, 10), nil
}

// IncrementLikes is a single atomic UPDATE so concurrent likes never lose
// updates.
func (s *PostStorage) IncrementLikes(ctx context.Context, postID string) (int64, error) {
	id, err := parseID(postID)
	if err != nil {
		return 0, service.ErrNotFound
	}

	query, args, err := sq.
		Update(tableinfo.PostsTableName).
		Set(tableinfo.PostLikesColumn, sq.Expr(tableinfo.PostLikesColumn+" + 1")).
		Where(sq.Eq{tableinfo.PostIDColumn: id}).
		Suffix("RETURNING " + tableinfo.PostLikesColumn).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	var likes int64
	if err := tr.QueryRow(ctx, query, args...).Scan(&likes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, service.ErrNotFound
		}
		return 0, fmt.Errorf("exec increment likes: %w", err)
	}
	return likes, nil
}

func (s *PostStorage) AddComment(ctx context.Context, postID string, comment model.Comment) (model.Post, error) {
	id, err := parseID(postID)
	if err != nil {
		return model.Post{}, service.ErrNotFound
	}
	authorID, err := parseID(comment.AuthorID)
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: bad author id", service.ErrInvalidRequest)
	}

	query, args, err := sq.
		Insert(tableinfo.CommentsTableName).
		Columns(
			tableinfo.CommentPostIDColumn,
			tableinfo.CommentAuthorIDColumn,
			tableinfo.CommentContentColumn,
		).
		Values(id, authorID, comment.Content).
		Suffix("RETURNING " + tableinfo.CommentIDColumn).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	var commentID int64
	if err := tr.QueryRow(ctx, query, args...).Scan(&commentID); err != nil {
		var pgErr *pgconn.PgError
		// 23503: the post_id foreign key rejects comments on missing posts
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return model.Post{}, service.ErrNotFound
		}
		return model.Post{}, fmt.Errorf("exec insert comment: %w", err)
	}

	return s.GetPostByID(ctx, postID)
}

func (s *PostStorage) getComments(ctx context.Context, postIDs []int64) (map[int64][]model.Comment, error) {
	query, args, err := sq.
		Select(
			tableinfo.CommentIDColumn,
			tableinfo.CommentPostIDColumn,
			tableinfo.CommentAuthorIDColumn,
			tableinfo.CommentContentColumn,
			tableinfo.CommentCreatedAtColumn,
		).
		From(tableinfo.CommentsTableName).
		Where(sq.Eq{tableinfo.CommentPostIDColumn: postIDs}).
		OrderBy(
			tableinfo.CommentCreatedAtColumn+" ASC",
			tableinfo.CommentIDColumn+" ASC",
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingQuery, err)
	}

	tr := s.getter.DefaultTrOrDB(ctx, s.pool)
	rows, err := tr.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec select comments: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]model.Comment, len(postIDs))
	for rows.Next() {
		var (
			c             model.Comment
			cID, pID, aID int64
		)
		if err := rows.Scan(&cID, &pID, &aID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.ID = strconv.FormatInt(cID, 10)
		c.AuthorID = strconv.FormatInt(aID, 10)
		out[pID] = append(out[pID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

func listPostsWhere(params storage.ListPostsParams) (sq.Sqlizer, error) {
	where := sq.And{}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		where = append(where, sq.Or{
			sq.ILike{tableinfo.PostTitleColumn: pattern},
			sq.ILike{tableinfo.PostContentColumn: pattern},
		})
	}
	if params.CategoryID != "" {
		categoryID, err := parseID(params.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad category id", service.ErrInvalidRequest)
		}
		where = append(where, sq.Eq{tableinfo.PostCategoryIDColumn: categoryID})
	}
	return where, nil
}

func updatePostBuilder(postID int64, patch storage.PostPatch) (sq.UpdateBuilder, error) {
	qb := sq.
		Update(tableinfo.PostsTableName).
		Where(sq.Eq{tableinfo.PostIDColumn: postID}).
		Suffix("RETURNING " + joinColumns(postColumns)).
		PlaceholderFormat(sq.Dollar)

	if patch.Title != nil {
		qb = qb.Set(tableinfo.PostTitleColumn, *patch.Title)
	}
	if patch.Content != nil {
		qb = qb.Set(tableinfo.PostContentColumn, *patch.Content)
	}
	if patch.Image != nil {
		qb = qb.Set(tableinfo.PostImageColumn, *patch.Image)
	}
	if patch.CategoryID != nil {
		categoryID, err := parseOptionalID(*patch.CategoryID)
		if err != nil {
			return qb, fmt.Errorf("%w: bad category id", service.ErrInvalidRequest)
		}
		qb = qb.Set(tableinfo.PostCategoryIDColumn, categoryID)
	}
	return qb, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (model.Post, error) {
	var (
		p          model.Post
		id         int64
		authorID   int64
		categoryID *int64
	)
	if err := row.Scan(
		&id,
		&p.Title,
		&p.Content,
		&p.Image,
		&authorID,
		&categoryID,
		&p.Likes,
		&p.CreatedAt,
	); err != nil {
		return model.Post{}, err
	}
	p.ID = strconv.FormatInt(id, 10)
	p.AuthorID = strconv.FormatInt(authorID, 10)
	if categoryID != nil {
		p.CategoryID = strconv.FormatInt(*categoryID, 10)
	}
	return p, nil
}

func parseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// parseOptionalID maps the empty string to NULL.
func parseOptionalID(id string) (*int64, error) {
	if id == "" {
		return nil, nil
	}
	v, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func joinColumns(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}
