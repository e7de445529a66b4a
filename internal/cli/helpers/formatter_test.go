package helpers

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestData is a test struct with header tags.
type TestData struct {
	Name  string `header:"Name" json:"name"`
	Value int    `header:"Value" json:"value"`
	Extra string `json:"-"` // No header tag, should be ignored
}

func init() {
	color.NoColor = true
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		format  OutputFormat
		wantErr bool
	}{
		{"table formatter", OutputTable, false},
		{"json formatter", OutputJSON, false},
		{"unsupported format", OutputFormat("csv"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewFormatter(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	data := []TestData{{Name: "a", Value: 1}, {Name: "b", Value: 2}}

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(data, &buf))

	var got []TestData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, data, got)
}

func TestTableFormatter_Format(t *testing.T) {
	t.Run("slice", func(t *testing.T) {
		data := []TestData{{Name: "alpha", Value: 1, Extra: "x"}, {Name: "b", Value: 22}}

		var buf bytes.Buffer
		require.NoError(t, (&TableFormatter{}).Format(data, &buf))
		assert.Equal(t, "Name    Value\nalpha   1\nb       22\n", buf.String())
	})

	t.Run("empty slice", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&TableFormatter{}).Format([]TestData{}, &buf))
		assert.Empty(t, buf.String())
	})

	t.Run("single record", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&TableFormatter{}).Format(&TestData{Name: "n", Value: 3}, &buf))
		assert.Equal(t, "Name:    n\nValue:   3\n", buf.String())
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Error(t, (&TableFormatter{}).Format(42, &bytes.Buffer{}))
	})
}

func TestValidateOutput(t *testing.T) {
	assert.NoError(t, ValidateOutput("json", ListingOutputs))
	err := ValidateOutput("yaml", ListingOutputs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table, json")
}
