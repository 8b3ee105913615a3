package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
	}{
		{name: "string", in: `"abc-123"`, want: "abc-123"},
		{name: "integer", in: `42`, want: "42"},
		{name: "zero is unset", in: `0`, want: ""},
		{name: "null", in: `null`, want: ""},
		{name: "empty string", in: `""`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestIDUnmarshalJSON_Invalid(t *testing.T) {
	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{"id":1}`), &id))
}

func TestNoteDecodesNumericReferences(t *testing.T) {
	var n Note
	err := json.Unmarshal([]byte(`{"id":7,"name":"Plan","notebook_id":null,"tags":[1,"2"]}`), &n)
	require.NoError(t, err)

	assert.Equal(t, ID("7"), n.ID)
	assert.True(t, n.NotebookID.IsZero())
	assert.Equal(t, []ID{"1", "2"}, n.Tags)
}
