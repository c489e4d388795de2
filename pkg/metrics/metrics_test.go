package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))

	EquipmentCreated.Inc()
	RequestsTotal.WithLabelValues("GET", "/store/", "200").Inc()

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["equipment_store_equipment_created_total"])
	assert.True(t, names["equipment_store_http_requests_total"])

	assert.Error(t, Register(reg), "collectors cannot be registered twice")
}
