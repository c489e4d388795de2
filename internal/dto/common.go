package dto

type ShortUserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

type ShortEquipmentTypeDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type ShortEquipmentDTO struct {
	ID    uint64 `json:"id"`
	Label string `json:"label"`
}
