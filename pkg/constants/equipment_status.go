package constants

// EquipmentStatus is the derived availability state of a single unit.
type EquipmentStatus string

const (
	EquipmentAvailable     EquipmentStatus = "available"
	EquipmentAssigned      EquipmentStatus = "assigned"
	EquipmentUnderRepair   EquipmentStatus = "under_repair"
	EquipmentNonFunctional EquipmentStatus = "non_functional"
)

func (s EquipmentStatus) String() string {
	return string(s)
}

// EquipmentFilter names one of the per-type listings.
type EquipmentFilter string

const (
	// FilterWorking lists every functional unit that is not under repair,
	// assigned or not.
	FilterWorking       EquipmentFilter = "working"
	FilterAssigned      EquipmentFilter = "assigned"
	FilterUnassigned    EquipmentFilter = "unassigned"
	FilterUnderRepair   EquipmentFilter = "under_repair"
	FilterNonFunctional EquipmentFilter = "non_functional"
)

// ParseEquipmentFilter falls back to FilterWorking for unknown values, like
// the listing page always did.
func ParseEquipmentFilter(raw string) EquipmentFilter {
	switch f := EquipmentFilter(raw); f {
	case FilterAssigned, FilterUnassigned, FilterUnderRepair, FilterNonFunctional:
		return f
	}
	return FilterWorking
}

const (
	// LabelPrefixLength is how many characters of the type name start a label.
	LabelPrefixLength = 3
	// LabelCounterWidth is the zero-padded width of the label counter.
	LabelCounterWidth = 6
)
