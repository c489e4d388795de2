package dto

type CreateEquipmentTypeDTO struct {
	Name string `json:"name" validate:"required,max=50"`
}

type UpdateEquipmentTypeDTO struct {
	Name string `json:"name" validate:"required,max=50"`
}

type EquipmentTypeDTO struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Remaining uint64 `json:"remaining"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
