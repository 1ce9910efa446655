package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputSchema(t *testing.T) {
	type nested struct {
		Tags []string `json:"tags"`
	}
	type input struct {
		Name     string   `json:"name" description:"anchor name"`
		Count    int      `json:"count,omitempty"`
		Ratio    *float64 `json:"ratio"`
		Nested   nested   `json:"nested"`
		Ignored  string   `json:"-"`
		internal string
	}

	actual, err := inputSchema(&input{})
	require.NoError(t, err)
	assert.Equal(t, "object", actual.Type)
	assert.Equal(t, []string{"name", "nested"}, actual.Required)
	assert.Len(t, actual.Properties, 4)
	assert.Equal(t, "string", actual.Properties["name"]["type"])
	assert.Equal(t, "anchor name", actual.Properties["name"]["description"])
	assert.Equal(t, "integer", actual.Properties["count"]["type"])
	assert.Equal(t, "number", actual.Properties["ratio"]["type"])
	assert.Equal(t, true, actual.Properties["ratio"]["nullable"])
	assert.Equal(t, "object", actual.Properties["nested"]["type"])

	_, err = inputSchema(42)
	assert.Error(t, err)
}
