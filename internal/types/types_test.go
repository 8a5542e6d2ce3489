package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalStringUnmarshal(t *testing.T) {
	type body struct {
		Image OptionalString `json:"image"`
	}

	t.Run("Absent", func(t *testing.T) {
		var b body
		require.NoError(t, json.Unmarshal([]byte(`{}`), &b))
		assert.False(t, b.Image.Present)
	})

	t.Run("ExplicitNull", func(t *testing.T) {
		var b body
		require.NoError(t, json.Unmarshal([]byte(`{"image": null}`), &b))
		assert.True(t, b.Image.Present)
		assert.False(t, b.Image.Valid)
	})

	t.Run("Value", func(t *testing.T) {
		var b body
		require.NoError(t, json.Unmarshal([]byte(`{"image": "https://example.com/a.png"}`), &b))
		assert.True(t, b.Image.Present)
		assert.True(t, b.Image.Valid)
		assert.Equal(t, "https://example.com/a.png", b.Image.Value)
	})

	t.Run("WrongType", func(t *testing.T) {
		var b body
		assert.Error(t, json.Unmarshal([]byte(`{"image": 7}`), &b))
	})
}

func TestUserPasswordNeverSerialized(t *testing.T) {
	data, err := json.Marshal(User{Name: "Test User", Password: "hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hash")
	assert.NotContains(t, string(data), "password")
}
