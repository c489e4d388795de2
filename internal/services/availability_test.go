package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"equipment-store/internal/entities"
	"equipment-store/pkg/constants"
)

func TestClassify(t *testing.T) {
	open := &entities.Allocation{ID: 1}
	returned := &entities.Allocation{ID: 2, Returned: true}

	tests := []struct {
		name   string
		unit   entities.Equipment
		latest *entities.Allocation
		want   constants.EquipmentStatus
	}{
		{"never allocated", entities.Equipment{Functional: true}, nil, constants.EquipmentAvailable},
		{"latest returned", entities.Equipment{Functional: true}, returned, constants.EquipmentAvailable},
		{"latest open", entities.Equipment{Functional: true}, open, constants.EquipmentAssigned},
		{"under repair wins over allocation", entities.Equipment{Functional: true, UnderRepair: true}, open, constants.EquipmentUnderRepair},
		{"broken wins over repair", entities.Equipment{Functional: false, UnderRepair: true}, nil, constants.EquipmentNonFunctional},
		{"broken and open", entities.Equipment{Functional: false}, open, constants.EquipmentNonFunctional},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := tt.unit
			assert.Equal(t, tt.want, Classify(&unit, tt.latest))
		})
	}
}

func TestMatchesFilter(t *testing.T) {
	all := []constants.EquipmentStatus{
		constants.EquipmentAvailable,
		constants.EquipmentAssigned,
		constants.EquipmentUnderRepair,
		constants.EquipmentNonFunctional,
	}
	want := map[constants.EquipmentFilter][]constants.EquipmentStatus{
		constants.FilterWorking:       {constants.EquipmentAvailable, constants.EquipmentAssigned},
		constants.FilterAssigned:      {constants.EquipmentAssigned},
		constants.FilterUnassigned:    {constants.EquipmentAvailable},
		constants.FilterUnderRepair:   {constants.EquipmentUnderRepair},
		constants.FilterNonFunctional: {constants.EquipmentNonFunctional},
	}

	for filter, matching := range want {
		for _, status := range all {
			assert.Equal(t, contains(matching, status), MatchesFilter(status, filter), "%s/%s", filter, status)
		}
	}
}

func contains(list []constants.EquipmentStatus, s constants.EquipmentStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestRequiresForceReturn(t *testing.T) {
	assert.False(t, RequiresForceReturn(&entities.Equipment{Functional: true}))
	assert.True(t, RequiresForceReturn(&entities.Equipment{Functional: true, UnderRepair: true}))
	assert.True(t, RequiresForceReturn(&entities.Equipment{Functional: false}))
}

func TestParseEquipmentFilter(t *testing.T) {
	assert.Equal(t, constants.FilterAssigned, constants.ParseEquipmentFilter("assigned"))
	assert.Equal(t, constants.FilterNonFunctional, constants.ParseEquipmentFilter("non_functional"))
	assert.Equal(t, constants.FilterWorking, constants.ParseEquipmentFilter("bogus"))
	assert.Equal(t, constants.FilterWorking, constants.ParseEquipmentFilter(""))
}
