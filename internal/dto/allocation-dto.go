package dto

import "github.com/aarondl/null/v8"

type CreateAllocationDTO struct {
	UserID      uint64 `json:"user_id"      validate:"required,gt=0"`
	EquipmentID uint64 `json:"equipment_id" validate:"required,gt=0"`
	// EquipmentTypeID, when set, must be the unit's type.
	EquipmentTypeID uint64 `json:"equipment_type_id" validate:"omitempty,gt=0"`
}

type UpdateAllocationDTO struct {
	UserID      null.Uint64 `json:"user_id"      validate:"omitempty,gt=0"`
	EquipmentID null.Uint64 `json:"equipment_id" validate:"omitempty,gt=0"`
	Returned    null.Bool   `json:"returned"`
}

type AllocationDTO struct {
	ID            uint64            `json:"id"`
	User          ShortUserDTO      `json:"user"`
	Equipment     ShortEquipmentDTO `json:"equipment"`
	EquipmentType string            `json:"equipment_type"`
	Returned      bool              `json:"returned"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
}
