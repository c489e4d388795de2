package services

import (
	"equipment-store/internal/entities"
	"equipment-store/pkg/constants"
)

// Classify derives the availability status of a unit from its flags and its
// latest allocation (nil when it was never allocated).
func Classify(e *entities.Equipment, latest *entities.Allocation) constants.EquipmentStatus {
	switch {
	case !e.Functional:
		return constants.EquipmentNonFunctional
	case e.UnderRepair:
		return constants.EquipmentUnderRepair
	case latest != nil && !latest.Returned:
		return constants.EquipmentAssigned
	default:
		return constants.EquipmentAvailable
	}
}

// MatchesFilter reports whether a unit with the given status belongs to the
// listing named by filter.
func MatchesFilter(status constants.EquipmentStatus, filter constants.EquipmentFilter) bool {
	switch filter {
	case constants.FilterAssigned:
		return status == constants.EquipmentAssigned
	case constants.FilterUnassigned:
		return status == constants.EquipmentAvailable
	case constants.FilterUnderRepair:
		return status == constants.EquipmentUnderRepair
	case constants.FilterNonFunctional:
		return status == constants.EquipmentNonFunctional
	default:
		return status == constants.EquipmentAvailable || status == constants.EquipmentAssigned
	}
}

// RequiresForceReturn is true when an update leaves the unit out of service,
// which closes its latest allocation.
func RequiresForceReturn(e *entities.Equipment) bool {
	return e.UnderRepair || !e.Functional
}
