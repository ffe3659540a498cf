package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_RegistersCollectors(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterLogsRecorded.Inc()
	m.CounterEmails.WithLabelValues("log_recorded", "ok").Inc()
	m.CounterRequests.WithLabelValues("GET", "200").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterLogsRecorded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterRequests.WithLabelValues("GET", "200")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "fitcoach_test_exercise_logs_recorded")
	assert.Contains(t, names, "fitcoach_test_emails")
}

func TestSetupPrometheus(t *testing.T) {
	reg := SetupPrometheus()
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
