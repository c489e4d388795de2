package entities

import "equipment-store/pkg/types"

type Allocation struct {
	ID          uint64 `json:"id" db:"id"`
	EquipmentID uint64 `json:"equipment_id" db:"equipment_id"`
	UserID      uint64 `json:"user_id" db:"user_id"`
	Returned    bool   `json:"returned" db:"returned"`

	types.BaseEntity

	// Filled by joins.
	Username       string `db:"-"`
	EquipmentLabel string `db:"-"`
	EquipmentType  string `db:"-"`
}
