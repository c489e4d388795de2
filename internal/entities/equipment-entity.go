package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"equipment-store/pkg/types"
)

type Equipment struct {
	ID              uint64          `json:"id" db:"id"`
	Label           string          `json:"label" db:"label"`
	SerialNumber    string          `json:"serial_number" db:"serial_number"`
	ModelNumber     string          `json:"model_number" db:"model_number"`
	Brand           string          `json:"brand" db:"brand"`
	Price           decimal.Decimal `json:"price" db:"price"`
	BuyDate         time.Time       `json:"buy_date" db:"buy_date"`
	EquipmentTypeID uint64          `json:"equipment_type_id" db:"equipment_type_id"`
	UnderRepair     bool            `json:"under_repair" db:"under_repair"`
	Functional      bool            `json:"functional" db:"functional"`

	types.BaseEntity

	// Filled by joins, not columns of the equipments table.
	EquipmentType    *EquipmentType `db:"-"`
	LatestAllocation *Allocation    `db:"-"`
}
