package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatheredValue returns the value of the first sample of a counter or gauge family.
func gatheredValue(t *testing.T, r *Recorder, name string) float64 {
	t.Helper()
	families, err := r.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				total += c.GetValue()
			}
			if g := m.GetGauge(); g != nil {
				total += g.GetValue()
			}
		}
		return total
	}
	t.Fatalf("metric %s not gathered", name)
	return 0
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveResolution("default", time.Second, nil)
		r.ObserveTransition("sshd", "starting", "running")
		r.ObserveStart("sshd", time.Second)
		r.IncRecoveryAttempt("sshd")
		r.ObserveBulk("switch", false)
		r.ObserveReload(nil)
	})
	assert.Nil(t, r.Registry())
	assert.NotNil(t, r.Handler())
}

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder()

	r.ObserveResolution("default", 10*time.Millisecond, nil)
	r.ObserveResolution("default", time.Millisecond, errors.New("cycle"))
	r.IncRecoveryAttempt("sshd")
	r.IncRecoveryAttempt("sshd")
	r.ObserveBulk("shutdown", true)
	r.ObserveReload(nil)

	assert.Equal(t, 1.0, gatheredValue(t, r, "rcinit_resolution_errors_total"))
	assert.Equal(t, 2.0, gatheredValue(t, r, "rcinit_service_recovery_attempts_total"))
	assert.Equal(t, 1.0, gatheredValue(t, r, "rcinit_bulk_operations_total"))
	assert.Equal(t, 1.0, gatheredValue(t, r, "rcinit_registry_reloads_total"))
}

func TestRecorder_RunningGauge(t *testing.T) {
	r := NewRecorder()

	r.ObserveTransition("network", "starting", "running")
	r.ObserveTransition("sshd", "starting", "running")
	r.ObserveTransition("sshd", "running", "stopping")

	assert.Equal(t, 1.0, gatheredValue(t, r, "rcinit_services_running"))
	assert.Equal(t, 3.0, gatheredValue(t, r, "rcinit_service_transitions_total"))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveBulk("switch", false)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "rcinit_bulk_operations_total"))
}
