package repositories

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-store/pkg/constants"
)

func TestListingCondition(t *testing.T) {
	tests := []struct {
		name     string
		listing  constants.EquipmentFilter
		contains []string
		absent   []string
		args     []interface{}
	}{
		{
			name:     "assigned",
			listing:  constants.FilterAssigned,
			contains: []string{"e.functional = ?", "e.under_repair = ?", "la.id IS NOT NULL", "la.returned = ?"},
			absent:   []string{" OR "},
			args:     []interface{}{true, false, false},
		},
		{
			name:     "unassigned",
			listing:  constants.FilterUnassigned,
			contains: []string{"e.functional = ?", "e.under_repair = ?", "la.id IS NULL", " OR ", "la.returned = ?"},
			args:     []interface{}{true, false, true},
		},
		{
			name:     "under repair",
			listing:  constants.FilterUnderRepair,
			contains: []string{"e.functional = ?", "e.under_repair = ?"},
			absent:   []string{"la."},
			args:     []interface{}{true, true},
		},
		{
			name:     "non functional",
			listing:  constants.FilterNonFunctional,
			contains: []string{"e.functional = ?"},
			absent:   []string{"la.", "e.under_repair"},
			args:     []interface{}{false},
		},
		{
			name:     "working",
			listing:  constants.FilterWorking,
			contains: []string{"e.functional = ?", "e.under_repair = ?"},
			absent:   []string{"la."},
			args:     []interface{}{true, false},
		},
		{
			name:     "unknown falls back to working",
			listing:  constants.EquipmentFilter("everything"),
			contains: []string{"e.functional = ?", "e.under_repair = ?"},
			absent:   []string{"la."},
			args:     []interface{}{true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := listingCondition(tt.listing).ToSql()
			require.NoError(t, err)
			for _, frag := range tt.contains {
				assert.Contains(t, sql, frag)
			}
			for _, frag := range tt.absent {
				assert.NotContains(t, sql, frag)
			}
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestEquipmentSearch(t *testing.T) {
	sql, args, err := equipmentSearch("SN-1").ToSql()
	require.NoError(t, err)

	for _, col := range []string{
		"e.label ILIKE ?",
		"et.name ILIKE ?",
		"e.buy_date::text ILIKE ?",
		"e.serial_number ILIKE ?",
		"e.model_number ILIKE ?",
		"e.price::text ILIKE ?",
		"e.brand ILIKE ?",
	} {
		assert.Contains(t, sql, col)
	}
	assert.Equal(t, 6, strings.Count(sql, " OR "))
	require.Len(t, args, 7)
	for _, a := range args {
		assert.Equal(t, "%SN-1%", a)
	}
}

func TestUserSearch(t *testing.T) {
	sql, args, err := userSearch("alic").ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "username ILIKE ?")
	assert.Contains(t, sql, "first_name ILIKE ?")
	assert.Contains(t, sql, "last_name ILIKE ?")
	assert.Equal(t, []interface{}{"%alic%", "%alic%", "%alic%"}, args)
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"lapt", "%lapt%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`c:\tmp`, `%c:\\tmp%`},
		{"Ноут", "%Ноут%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, likePattern(tt.in), tt.in)
	}
}
