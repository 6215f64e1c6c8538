package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceState_String(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown(42)", ServiceState(42).String())
}

func TestParseServiceState(t *testing.T) {
	state, err := ParseServiceState("Stopping")
	require.NoError(t, err)
	assert.Equal(t, StateStopping, state)

	_, err = ParseServiceState("zombie")
	assert.Error(t, err)
}

func TestServiceState_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]ServiceState{"sshd": StateRunning})
	require.NoError(t, err)
	assert.JSONEq(t, `{"sshd":"running"}`, string(data))

	var decoded map[string]ServiceState
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, StateRunning, decoded["sshd"])

	_, err = json.Marshal(ServiceState(42))
	assert.Error(t, err)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to ServiceState
		want     bool
	}{
		{StateInactive, StateStarting, true},
		{StateInactive, StateRunning, false},
		{StateInactive, StateFailed, false},
		{StateStarting, StateRunning, true},
		{StateStarting, StateFailed, true},
		{StateStarting, StateStopping, false},
		{StateRunning, StateStopping, true},
		{StateRunning, StateStarting, true},
		{StateRunning, StateStopped, false},
		{StateStopping, StateStopped, true},
		{StateStopping, StateFailed, true},
		{StateStopped, StateStarting, true},
		{StateStopped, StateStopping, false},
		{StateFailed, StateStarting, true},
		{StateFailed, StateStopping, true},
		{StateFailed, StateRunning, false},
		{ServiceState(42), StateStarting, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}
