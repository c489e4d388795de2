package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-store/internal/entities"
	"equipment-store/pkg/constants"
	apperrors "equipment-store/pkg/errors"
	"equipment-store/pkg/types"
)

const (
	equipmentTable  = "equipments"
	equipmentFields = "e.id, e.label, e.serial_number, e.model_number, e.brand, e.price, e.buy_date, e.equipment_type_id, e.under_repair, e.functional, e.created_at, e.updated_at"

	// latestAllocationJoin attaches the most recent allocation of every unit,
	// newest by (created_at, id).
	latestAllocationJoin = `LATERAL (
		SELECT a.id, a.user_id, a.returned, a.created_at, a.updated_at, u.username
		FROM allocations a
		JOIN users u ON u.id = a.user_id
		WHERE a.equipment_id = e.id
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT 1
	) la ON TRUE`
	latestAllocationFields = "la.id, la.user_id, la.returned, la.created_at, la.updated_at, la.username"
)

type EquipmentRepositoryInterface interface {
	FindEquipment(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error)
	LockEquipment(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error)
	FindLastLabel(ctx context.Context, tx pgx.Tx, equipmentTypeID uint64) (string, error)
	ListEquipments(ctx context.Context, equipmentTypeID uint64, listing constants.EquipmentFilter, filter types.Filter) ([]*entities.Equipment, uint64, error)
	ListUnassigned(ctx context.Context, equipmentTypeID uint64) ([]*entities.Equipment, error)
	CountUnassignedByType(ctx context.Context) (map[uint64]uint64, error)
	CreateEquipment(ctx context.Context, tx pgx.Tx, e *entities.Equipment) (uint64, error)
	UpdateEquipment(ctx context.Context, tx pgx.Tx, e *entities.Equipment) error
	DeleteEquipment(ctx context.Context, tx pgx.Tx, id uint64) error
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage, logger: logger}
}

func (r *EquipmentRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *EquipmentRepository) baseSelect() sq.SelectBuilder {
	return psql.Select(equipmentFields, "et.name", latestAllocationFields).
		From(equipmentTable + " e").
		Join(equipmentTypeTable + " et ON et.id = e.equipment_type_id").
		LeftJoin(latestAllocationJoin)
}

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var (
		e        entities.Equipment
		typeName string

		allocID        *uint64
		allocUserID    *uint64
		allocReturned  *bool
		allocCreatedAt *time.Time
		allocUpdatedAt *time.Time
		allocUsername  *string
	)
	err := row.Scan(
		&e.ID, &e.Label, &e.SerialNumber, &e.ModelNumber, &e.Brand, &e.Price, &e.BuyDate,
		&e.EquipmentTypeID, &e.UnderRepair, &e.Functional, &e.CreatedAt, &e.UpdatedAt,
		&typeName,
		&allocID, &allocUserID, &allocReturned, &allocCreatedAt, &allocUpdatedAt, &allocUsername,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan equipments: %w", err)
	}

	e.EquipmentType = &entities.EquipmentType{ID: e.EquipmentTypeID, Name: typeName}
	if allocID != nil {
		a := &entities.Allocation{
			ID:             *allocID,
			EquipmentID:    e.ID,
			UserID:         *allocUserID,
			Returned:       *allocReturned,
			EquipmentLabel: e.Label,
			EquipmentType:  typeName,
		}
		a.CreatedAt = allocCreatedAt
		a.UpdatedAt = allocUpdatedAt
		if allocUsername != nil {
			a.Username = *allocUsername
		}
		e.LatestAllocation = a
	}
	return &e, nil
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	query, args, err := r.baseSelect().Where(sq.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build equipments select: %w", err)
	}
	return scanEquipment(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

// LockEquipment locks the unit row for the rest of tx and returns it with its
// latest allocation.
func (r *EquipmentRepository) LockEquipment(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	lockQuery, lockArgs, err := psql.Select("id").From(equipmentTable).Where(sq.Eq{"id": id}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build equipments lock: %w", err)
	}
	var lockedID uint64
	if err := tx.QueryRow(ctx, lockQuery, lockArgs...).Scan(&lockedID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("lock equipments: %w", err)
	}
	return r.FindEquipment(ctx, tx, id)
}

// FindLastLabel returns the label of the most recently created unit of the
// type, or "" when the type has none.
func (r *EquipmentRepository) FindLastLabel(ctx context.Context, tx pgx.Tx, equipmentTypeID uint64) (string, error) {
	query, args, err := psql.Select("label").
		From(equipmentTable).
		Where(sq.Eq{"equipment_type_id": equipmentTypeID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build last label select: %w", err)
	}

	var label string
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&label); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("select last label: %w", err)
	}
	return label, nil
}

// listingCondition is the SQL form of services.MatchesFilter.
func listingCondition(listing constants.EquipmentFilter) sq.Sqlizer {
	working := sq.Eq{"e.functional": true, "e.under_repair": false}
	switch listing {
	case constants.FilterAssigned:
		return sq.And{working, sq.NotEq{"la.id": nil}, sq.Eq{"la.returned": false}}
	case constants.FilterUnassigned:
		return sq.And{working, sq.Or{sq.Eq{"la.id": nil}, sq.Eq{"la.returned": true}}}
	case constants.FilterUnderRepair:
		return sq.Eq{"e.functional": true, "e.under_repair": true}
	case constants.FilterNonFunctional:
		return sq.Eq{"e.functional": false}
	default:
		return working
	}
}

func equipmentSearch(search string) sq.Sqlizer {
	p := likePattern(search)
	return sq.Or{
		sq.ILike{"e.label": p},
		sq.ILike{"et.name": p},
		sq.Expr("e.buy_date::text ILIKE ?", p),
		sq.ILike{"e.serial_number": p},
		sq.ILike{"e.model_number": p},
		sq.Expr("e.price::text ILIKE ?", p),
		sq.ILike{"e.brand": p},
	}
}

func (r *EquipmentRepository) ListEquipments(ctx context.Context, equipmentTypeID uint64, listing constants.EquipmentFilter, filter types.Filter) ([]*entities.Equipment, uint64, error) {
	where := sq.And{sq.Eq{"e.equipment_type_id": equipmentTypeID}, listingCondition(listing)}
	if filter.Search != "" {
		where = append(where, equipmentSearch(filter.Search))
	}

	countQuery, countArgs, err := psql.Select("COUNT(e.id)").
		From(equipmentTable + " e").
		Join(equipmentTypeTable + " et ON et.id = e.equipment_type_id").
		LeftJoin(latestAllocationJoin).
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build equipments count: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count equipments: %w", err)
	}
	if total == 0 {
		return []*entities.Equipment{}, 0, nil
	}

	selectBuilder := r.baseSelect().Where(where).OrderBy("e.created_at DESC", "e.id DESC")
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
		return nil, 0, fmt.Errorf("build equipments select: %w", err)
	}
	list, err := r.collect(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListUnassigned returns the units of a type that can be allocated, in
// creation order.
func (r *EquipmentRepository) ListUnassigned(ctx context.Context, equipmentTypeID uint64) ([]*entities.Equipment, error) {
	query, args, err := r.baseSelect().
		Where(sq.And{sq.Eq{"e.equipment_type_id": equipmentTypeID}, listingCondition(constants.FilterUnassigned)}).
		OrderBy("e.created_at ASC", "e.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build unassigned select: %w", err)
	}
	return r.collect(ctx, query, args)
}

func (r *EquipmentRepository) CountUnassignedByType(ctx context.Context) (map[uint64]uint64, error) {
	query, args, err := psql.Select("e.equipment_type_id", "COUNT(e.id)").
		From(equipmentTable + " e").
		LeftJoin(latestAllocationJoin).
		Where(listingCondition(constants.FilterUnassigned)).
		GroupBy("e.equipment_type_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build unassigned count: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count unassigned: %w", err)
	}
	defer rows.Close()

	counts := make(map[uint64]uint64)
	for rows.Next() {
		var typeID, n uint64
		if err := rows.Scan(&typeID, &n); err != nil {
			return nil, fmt.Errorf("scan unassigned count: %w", err)
		}
		counts[typeID] = n
	}
	return counts, rows.Err()
}

func (r *EquipmentRepository) collect(ctx context.Context, query string, args []interface{}) ([]*entities.Equipment, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select equipments: %w", err)
	}
	defer rows.Close()

	list := make([]*entities.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			r.logger.Error("EquipmentRepository: scan failed", zap.Error(err))
			return nil, err
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equipments: %w", err)
	}
	return list, nil
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, tx pgx.Tx, e *entities.Equipment) (uint64, error) {
	query, args, err := psql.Insert(equipmentTable).
		Columns("label", "serial_number", "model_number", "brand", "price", "buy_date",
			"equipment_type_id", "under_repair", "functional", "created_at", "updated_at").
		Values(e.Label, e.SerialNumber, e.ModelNumber, e.Brand, e.Price, e.BuyDate,
			e.EquipmentTypeID, e.UnderRepair, e.Functional, sq.Expr("clock_timestamp()"), sq.Expr("clock_timestamp()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build equipments insert: %w", err)
	}

	var id uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return 0, fmt.Errorf("label %q already exists for the type: %w", e.Label, apperrors.ErrConflict)
			case pgForeignKeyViolation:
				return 0, fmt.Errorf("equipment type %d: %w", e.EquipmentTypeID, apperrors.ErrNotFound)
			}
		}
		return 0, fmt.Errorf("insert equipments: %w", err)
	}
	return id, nil
}

// UpdateEquipment writes every mutable column. The label is never updated.
func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, tx pgx.Tx, e *entities.Equipment) error {
	query, args, err := psql.Update(equipmentTable).
		Set("serial_number", e.SerialNumber).
		Set("model_number", e.ModelNumber).
		Set("brand", e.Brand).
		Set("price", e.Price).
		Set("buy_date", e.BuyDate).
		Set("equipment_type_id", e.EquipmentTypeID).
		Set("under_repair", e.UnderRepair).
		Set("functional", e.Functional).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build equipments update: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgUniqueViolation:
				return fmt.Errorf("label %q already exists for the type: %w", e.Label, apperrors.ErrConflict)
			case pgForeignKeyViolation:
				return fmt.Errorf("equipment type %d: %w", e.EquipmentTypeID, apperrors.ErrNotFound)
			}
		}
		return fmt.Errorf("update equipments: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteEquipment removes the unit and, through ON DELETE CASCADE, its
// allocations.
func (r *EquipmentRepository) DeleteEquipment(ctx context.Context, tx pgx.Tx, id uint64) error {
	query, args, err := psql.Delete(equipmentTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build equipments delete: %w", err)
	}
	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete equipments: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
