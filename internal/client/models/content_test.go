package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRendered_UnmarshalJSON(t *testing.T) {
	var obj Rendered
	require.NoError(t, json.Unmarshal([]byte(`{"rendered":"<p>Hi</p>","protected":true}`), &obj))
	assert.Equal(t, "<p>Hi</p>", obj.String())
	assert.True(t, obj.Protected)

	var str Rendered
	require.NoError(t, json.Unmarshal([]byte(`"Twenty Twenty-Four"`), &str))
	assert.Equal(t, "Twenty Twenty-Four", str.String())

	var bad Rendered
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestRendered_StringFallsBackToRaw(t *testing.T) {
	assert.Equal(t, "raw", Rendered{Raw: "raw"}.String())
}

func TestTheme_Decode(t *testing.T) {
	body := `{"stylesheet":"twentytwentyfour","name":{"raw":"TT4","rendered":"TT4"},"tags":{"raw":["blog"],"rendered":"blog"},"status":"active"}`
	var th Theme
	require.NoError(t, json.Unmarshal([]byte(body), &th))
	assert.Equal(t, "TT4", th.Name.String())
	assert.Equal(t, "active", th.Status)
	assert.NotEmpty(t, th.Tags)
}
