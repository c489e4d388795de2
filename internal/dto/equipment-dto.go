package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
)

// CreateEquipmentDTO has no label: it is assigned on creation.
type CreateEquipmentDTO struct {
	SerialNumber    string              `json:"serial_number"     validate:"required,max=20"`
	ModelNumber     string              `json:"model_number"      validate:"required,max=20"`
	Brand           string              `json:"brand"             validate:"required,max=30"`
	Price           decimal.NullDecimal `json:"price"             validate:"required,decimal_gte0"`
	BuyDate         string              `json:"buy_date"          validate:"required,date_only"`
	EquipmentTypeID uint64              `json:"equipment_type_id" validate:"required,gt=0"`
}

// UpdateEquipmentDTO changes only the fields present in the payload. The
// label is read-only and not part of it.
type UpdateEquipmentDTO struct {
	SerialNumber    null.String         `json:"serial_number"     validate:"omitempty,min=1,max=20"`
	ModelNumber     null.String         `json:"model_number"      validate:"omitempty,min=1,max=20"`
	Brand           null.String         `json:"brand"             validate:"omitempty,min=1,max=30"`
	Price           decimal.NullDecimal `json:"price"             validate:"omitempty,decimal_gte0"`
	BuyDate         null.String         `json:"buy_date"          validate:"omitempty,date_only"`
	EquipmentTypeID null.Uint64         `json:"equipment_type_id" validate:"omitempty,gt=0"`
	UnderRepair     null.Bool           `json:"under_repair"`
	Functional      null.Bool           `json:"functional"`
}

type EquipmentDTO struct {
	ID            uint64                `json:"id"`
	Label         string                `json:"label"`
	SerialNumber  string                `json:"serial_number"`
	ModelNumber   string                `json:"model_number"`
	Brand         string                `json:"brand"`
	Price         decimal.Decimal       `json:"price"`
	BuyDate       string                `json:"buy_date"`
	EquipmentType ShortEquipmentTypeDTO `json:"equipment_type"`
	UnderRepair   bool                  `json:"under_repair"`
	Functional    bool                  `json:"functional"`
	Status        string                `json:"status"`
	CurrentUser   *ShortUserDTO         `json:"current_user"`
	CreatedAt     string                `json:"created_at"`
	UpdatedAt     string                `json:"updated_at"`
}

// EquipmentDetailDTO adds the holder history, newest first.
type EquipmentDetailDTO struct {
	EquipmentDTO
	PastUsers []ShortUserDTO `json:"past_users"`
}

// EquipmentUpdateResultDTO reports whether the update closed an allocation.
type EquipmentUpdateResultDTO struct {
	Equipment     EquipmentDTO `json:"equipment"`
	ForceReturned *uint64      `json:"force_returned_allocation_id"`
}

type ImportResultDTO struct {
	Created []ShortEquipmentDTO `json:"created"`
	Skipped []ImportRowErrorDTO `json:"skipped"`
}

type ImportRowErrorDTO struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}
