package repositories

import (
	"context"
	"errors"
	"fmt"

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
	allocationTable  = "allocations"
	allocationFields = "a.id, a.equipment_id, a.user_id, a.returned, a.created_at, a.updated_at, u.username, e.label, et.name"
)

type AllocationRepositoryInterface interface {
	FindAllocation(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Allocation, error)
	ListOpenAllocations(ctx context.Context, filter types.Filter) ([]*entities.Allocation, uint64, error)
	ListByEquipment(ctx context.Context, equipmentID uint64) ([]*entities.Allocation, error)
	CreateAllocation(ctx context.Context, tx pgx.Tx, a *entities.Allocation) (uint64, error)
	UpdateAllocation(ctx context.Context, tx pgx.Tx, a *entities.Allocation) error
	MarkReturned(ctx context.Context, tx pgx.Tx, id uint64) error
	DeleteAllocation(ctx context.Context, tx pgx.Tx, id uint64) error
}

type AllocationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAllocationRepository(storage *pgxpool.Pool, logger *zap.Logger) AllocationRepositoryInterface {
	return &AllocationRepository{storage: storage, logger: logger}
}

func (r *AllocationRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *AllocationRepository) baseSelect() sq.SelectBuilder {
	return psql.Select(allocationFields).
		From(allocationTable + " a").
		Join(userTable + " u ON u.id = a.user_id").
		Join(equipmentTable + " e ON e.id = a.equipment_id").
		Join(equipmentTypeTable + " et ON et.id = e.equipment_type_id")
}

func scanAllocation(row pgx.Row) (*entities.Allocation, error) {
	var a entities.Allocation
	err := row.Scan(
		&a.ID, &a.EquipmentID, &a.UserID, &a.Returned, &a.CreatedAt, &a.UpdatedAt,
		&a.Username, &a.EquipmentLabel, &a.EquipmentType,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan allocations: %w", err)
	}
	return &a, nil
}

func (r *AllocationRepository) FindAllocation(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Allocation, error) {
	query, args, err := r.baseSelect().Where(sq.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build allocations select: %w", err)
	}
	return scanAllocation(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

func (r *AllocationRepository) ListOpenAllocations(ctx context.Context, filter types.Filter) ([]*entities.Allocation, uint64, error) {
	where := sq.And{sq.Eq{"a.returned": false}}
	if filter.Search != "" {
		p := likePattern(filter.Search)
		where = append(where, sq.Or{sq.ILike{"u.username": p}, sq.ILike{"e.label": p}})
	}

	countQuery, countArgs, err := psql.Select("COUNT(a.id)").
		From(allocationTable + " a").
		Join(userTable + " u ON u.id = a.user_id").
		Join(equipmentTable + " e ON e.id = a.equipment_id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build allocations count: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count allocations: %w", err)
	}
	if total == 0 {
		return []*entities.Allocation{}, 0, nil
	}

	selectBuilder := r.baseSelect().Where(where).OrderBy("a.created_at DESC", "a.id DESC")
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
		return nil, 0, fmt.Errorf("build allocations select: %w", err)
	}
	list, err := r.collect(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByEquipment returns the full holder history of a unit, newest first.
func (r *AllocationRepository) ListByEquipment(ctx context.Context, equipmentID uint64) ([]*entities.Allocation, error) {
	query, args, err := r.baseSelect().
		Where(sq.Eq{"a.equipment_id": equipmentID}).
		OrderBy("a.created_at DESC", "a.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build allocation history select: %w", err)
	}
	return r.collect(ctx, query, args)
}

func (r *AllocationRepository) collect(ctx context.Context, query string, args []interface{}) ([]*entities.Allocation, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select allocations: %w", err)
	}
	defer rows.Close()

	list := make([]*entities.Allocation, 0)
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			r.logger.Error("AllocationRepository: scan failed", zap.Error(err))
			return nil, err
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allocations: %w", err)
	}
	return list, nil
}

func translateAllocationError(err error, a *entities.Allocation) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("equipment %d: %w", a.EquipmentID, apperrors.ErrEquipmentUnavailable)
		case pgForeignKeyViolation:
			return fmt.Errorf("user %d or equipment %d: %w", a.UserID, a.EquipmentID, apperrors.ErrNotFound)
		}
	}
	return nil
}

func (r *AllocationRepository) CreateAllocation(ctx context.Context, tx pgx.Tx, a *entities.Allocation) (uint64, error) {
	query, args, err := psql.Insert(allocationTable).
		Columns("equipment_id", "user_id", "returned", "created_at", "updated_at").
		Values(a.EquipmentID, a.UserID, a.Returned, sq.Expr("clock_timestamp()"), sq.Expr("clock_timestamp()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build allocations insert: %w", err)
	}

	var id uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if mapped := translateAllocationError(err, a); mapped != nil {
			return 0, mapped
		}
		return 0, fmt.Errorf("insert allocations: %w", err)
	}
	return id, nil
}

func (r *AllocationRepository) UpdateAllocation(ctx context.Context, tx pgx.Tx, a *entities.Allocation) error {
	query, args, err := psql.Update(allocationTable).
		Set("equipment_id", a.EquipmentID).
		Set("user_id", a.UserID).
		Set("returned", a.Returned).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build allocations update: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		if mapped := translateAllocationError(err, a); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update allocations: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *AllocationRepository) MarkReturned(ctx context.Context, tx pgx.Tx, id uint64) error {
	query, args, err := psql.Update(allocationTable).
		Set("returned", true).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build allocations return: %w", err)
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("return allocation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *AllocationRepository) DeleteAllocation(ctx context.Context, tx pgx.Tx, id uint64) error {
	query, args, err := psql.Delete(allocationTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build allocations delete: %w", err)
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete allocations: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
