package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-store/internal/entities"
	apperrors "equipment-store/pkg/errors"
	"equipment-store/pkg/types"
)

const (
	userTable  = "users"
	userFields = "id, username, email, first_name, last_name, password, is_superuser, is_active, created_at, updated_at"
)

var allowedUserSortFields = map[string]string{
	"id":         "id",
	"username":   "username",
	"first_name": "first_name",
	"last_name":  "last_name",
	"created_at": "created_at",
}

type UserRepositoryInterface interface {
	FindUserByID(ctx context.Context, id uint64) (*entities.User, error)
	FindUserByUsername(ctx context.Context, username string) (*entities.User, error)
	GetUsers(ctx context.Context, filter types.Filter) ([]*entities.User, uint64, error)
	CreateUser(ctx context.Context, tx pgx.Tx, user *entities.User) (uint64, error)
	UpdateUser(ctx context.Context, tx pgx.Tx, user *entities.User) error
	UpdatePassword(ctx context.Context, id uint64, hashedPassword string) error
	DeleteUser(ctx context.Context, id uint64) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func (r *UserRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Password,
		&u.IsSuperuser, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan users: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) findOne(ctx context.Context, where sq.Sqlizer) (*entities.User, error) {
	query, args, err := psql.Select(userFields).From(userTable).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build users select: %w", err)
	}
	return scanUser(r.storage.QueryRow(ctx, query, args...))
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uint64) (*entities.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *UserRepository) FindUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, sq.Expr("LOWER(username) = LOWER(?)", username))
}

func userSearch(search string) sq.Sqlizer {
	p := likePattern(search)
	return sq.Or{
		sq.ILike{"username": p},
		sq.ILike{"first_name": p},
		sq.ILike{"last_name": p},
	}
}

func (r *UserRepository) GetUsers(ctx context.Context, filter types.Filter) ([]*entities.User, uint64, error) {
	countBuilder := psql.Select("COUNT(id)").From(userTable)
	selectBuilder := psql.Select(userFields).From(userTable)

	if filter.Search != "" {
		countBuilder = countBuilder.Where(userSearch(filter.Search))
		selectBuilder = selectBuilder.Where(userSearch(filter.Search))
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build users count: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	if total == 0 {
		return []*entities.User{}, 0, nil
	}

	sorted := false
	for field, direction := range filter.Sort {
		if col, ok := allowedUserSortFields[field]; ok {
			dir := "ASC"
			if strings.EqualFold(direction, "desc") {
				dir = "DESC"
			}
			selectBuilder = selectBuilder.OrderBy(col + " " + dir)
			sorted = true
		}
	}
	if !sorted {
		selectBuilder = selectBuilder.OrderBy("id DESC")
	}

	if filter.WithPagination {
		if filter.Limit > 0 {
			selectBuilder = selectBuilder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			selectBuilder = selectBuilder.Offset(uint64(filter.Offset))
		}
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build users select: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	users := make([]*entities.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			r.logger.Error("GetUsers: scan failed", zap.Error(err))
			return nil, 0, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}
	return users, total, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, tx pgx.Tx, user *entities.User) (uint64, error) {
	query, args, err := psql.Insert(userTable).
		Columns("username", "email", "first_name", "last_name", "password", "is_superuser", "is_active", "created_at", "updated_at").
		Values(user.Username, user.Email, user.FirstName, user.LastName, user.Password, user.IsSuperuser, user.IsActive, sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build users insert: %w", err)
	}

	var id uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, fmt.Errorf("username %q is taken: %w", user.Username, apperrors.ErrConflict)
		}
		return 0, fmt.Errorf("insert users: %w", err)
	}
	return id, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, tx pgx.Tx, user *entities.User) error {
	query, args, err := psql.Update(userTable).
		Set("username", user.Username).
		Set("email", user.Email).
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("is_superuser", user.IsSuperuser).
		Set("is_active", user.IsActive).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build users update: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("username %q is taken: %w", user.Username, apperrors.ErrConflict)
		}
		return fmt.Errorf("update users: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint64, hashedPassword string) error {
	query, args, err := psql.Update(userTable).
		Set("password", hashedPassword).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build password update: %w", err)
	}
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id uint64) error {
	query, args, err := psql.Delete(userTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build users delete: %w", err)
	}
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete users: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
