package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"equipment-store/internal/entities"
	apperrors "equipment-store/pkg/errors"
	"equipment-store/pkg/types"
)

const (
	equipmentTypeTable  = "equipment_types"
	equipmentTypeFields = "id, name, created_at, updated_at"
)

type EquipmentTypeRepositoryInterface interface {
	GetEquipmentTypes(ctx context.Context, filter types.Filter) ([]*entities.EquipmentType, uint64, error)
	FindEquipmentType(ctx context.Context, tx pgx.Tx, id uint64) (*entities.EquipmentType, error)
	FindEquipmentTypeByName(ctx context.Context, tx pgx.Tx, name string) (*entities.EquipmentType, error)
	// ResolveEquipmentType accepts either a numeric id or a type name.
	ResolveEquipmentType(ctx context.Context, tx pgx.Tx, ref string) (*entities.EquipmentType, error)
	LockEquipmentType(ctx context.Context, tx pgx.Tx, id uint64) (*entities.EquipmentType, error)
	CreateEquipmentType(ctx context.Context, tx pgx.Tx, et entities.EquipmentType) (uint64, error)
	UpdateEquipmentType(ctx context.Context, tx pgx.Tx, id uint64, name string) error
	DeleteEquipmentType(ctx context.Context, tx pgx.Tx, id uint64) error
}

type EquipmentTypeRepository struct {
	storage *pgxpool.Pool
}

func NewEquipmentTypeRepository(storage *pgxpool.Pool) EquipmentTypeRepositoryInterface {
	return &EquipmentTypeRepository{storage: storage}
}

func (r *EquipmentTypeRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func scanEquipmentType(row pgx.Row) (*entities.EquipmentType, error) {
	var et entities.EquipmentType
	if err := row.Scan(&et.ID, &et.Name, &et.CreatedAt, &et.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan equipment_types: %w", err)
	}
	return &et, nil
}

func (r *EquipmentTypeRepository) findOne(ctx context.Context, q Querier, where sq.Sqlizer, suffix string) (*entities.EquipmentType, error) {
	builder := psql.Select(equipmentTypeFields).From(equipmentTypeTable).Where(where)
	if suffix != "" {
		builder = builder.Suffix(suffix)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build equipment_types select: %w", err)
	}
	return scanEquipmentType(q.QueryRow(ctx, query, args...))
}

func (r *EquipmentTypeRepository) GetEquipmentTypes(ctx context.Context, filter types.Filter) ([]*entities.EquipmentType, uint64, error) {
	countBuilder := psql.Select("COUNT(id)").From(equipmentTypeTable)
	selectBuilder := psql.Select(equipmentTypeFields).From(equipmentTypeTable).OrderBy("name ASC", "id ASC")

	if filter.Search != "" {
		where := sq.ILike{"name": likePattern(filter.Search)}
		countBuilder = countBuilder.Where(where)
		selectBuilder = selectBuilder.Where(where)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build equipment_types count: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count equipment_types: %w", err)
	}
	if total == 0 {
		return []*entities.EquipmentType{}, 0, nil
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
		return nil, 0, fmt.Errorf("build equipment_types select: %w", err)
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("select equipment_types: %w", err)
	}
	defer rows.Close()

	list := make([]*entities.EquipmentType, 0)
	for rows.Next() {
		et, err := scanEquipmentType(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, et)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate equipment_types: %w", err)
	}
	return list, total, nil
}

func (r *EquipmentTypeRepository) FindEquipmentType(ctx context.Context, tx pgx.Tx, id uint64) (*entities.EquipmentType, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"id": id}, "")
}

func (r *EquipmentTypeRepository) FindEquipmentTypeByName(ctx context.Context, tx pgx.Tx, name string) (*entities.EquipmentType, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Expr("LOWER(name) = LOWER(?)", name), "")
}

func (r *EquipmentTypeRepository) ResolveEquipmentType(ctx context.Context, tx pgx.Tx, ref string) (*entities.EquipmentType, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		et, err := r.FindEquipmentType(ctx, tx, id)
		if err == nil || !errors.Is(err, apperrors.ErrNotFound) {
			return et, err
		}
	}
	return r.FindEquipmentTypeByName(ctx, tx, ref)
}

// LockEquipmentType takes a row lock on the type for the rest of tx. Label
// assignment for new units of the type is serialized on this lock.
func (r *EquipmentTypeRepository) LockEquipmentType(ctx context.Context, tx pgx.Tx, id uint64) (*entities.EquipmentType, error) {
	return r.findOne(ctx, tx, sq.Eq{"id": id}, "FOR UPDATE")
}

func (r *EquipmentTypeRepository) CreateEquipmentType(ctx context.Context, tx pgx.Tx, et entities.EquipmentType) (uint64, error) {
	query, args, err := psql.Insert(equipmentTypeTable).
		Columns("name", "created_at", "updated_at").
		Values(et.Name, sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build equipment_types insert: %w", err)
	}

	var id uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, fmt.Errorf("equipment type %q already exists: %w", et.Name, apperrors.ErrConflict)
		}
		return 0, fmt.Errorf("insert equipment_types: %w", err)
	}
	return id, nil
}

func (r *EquipmentTypeRepository) UpdateEquipmentType(ctx context.Context, tx pgx.Tx, id uint64, name string) error {
	query, args, err := psql.Update(equipmentTypeTable).
		Set("name", name).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build equipment_types update: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("equipment type %q already exists: %w", name, apperrors.ErrConflict)
		}
		return fmt.Errorf("update equipment_types: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteEquipmentType removes the type; equipments and their allocations go
// with it through ON DELETE CASCADE.
func (r *EquipmentTypeRepository) DeleteEquipmentType(ctx context.Context, tx pgx.Tx, id uint64) error {
	query, args, err := psql.Delete(equipmentTypeTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build equipment_types delete: %w", err)
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete equipment_types: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
