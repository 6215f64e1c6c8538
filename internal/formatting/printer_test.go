package formatting

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		value    string
		expected OutputFormat
		wantErr  bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPrinter_Print(t *testing.T) {
	data := map[string]interface{}{"runLevel": "default", "order": []string{"network", "sshd"}}
	tbl := Table{
		Header: []string{"#", "SERVICE"},
		Rows:   [][]interface{}{{1, "network"}, {2, "sshd"}},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(Options{Out: &buf}).Print(data, tbl))
		assert.Contains(t, buf.String(), "SERVICE")
		assert.Contains(t, buf.String(), "sshd")
		assert.Contains(t, buf.String(), "╭", "rounded style")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(Options{Format: FormatJSON, Out: &buf}).Print(data, tbl))
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "default", decoded["runLevel"])
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(Options{Format: FormatYAML, Out: &buf}).Print(data, tbl))
		assert.Equal(t, "order:\n  - network\n  - sshd\nrunLevel: default\n", buf.String())
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(Options{Out: &buf}).Print(nil, Table{Header: []string{"SERVICE"}, Empty: "No services found"}))
		assert.Equal(t, "No services found\n", buf.String())
	})
}

func TestPrinter_StateColors(t *testing.T) {
	plain := NewPrinter(Options{})
	assert.Equal(t, "running", plain.State("running"))
	assert.Equal(t, "failed", plain.Status("failed"))

	colored := NewPrinter(Options{Color: true})
	assert.Contains(t, colored.State("running"), "running")
	assert.Equal(t, "inactive", colored.State("inactive"))
}
