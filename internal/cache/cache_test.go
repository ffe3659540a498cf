package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name string `json:"name"`
}

func TestJSONCache_RoundTrip(t *testing.T) {
	c := NewJSONCache(1, time.Minute)

	var got []entry
	assert.False(t, c.Get("exercises", &got))

	c.Set("exercises", []entry{{Name: "Squat"}, {Name: "Bench"}})
	require.True(t, c.Get("exercises", &got))
	assert.Equal(t, []entry{{Name: "Squat"}, {Name: "Bench"}}, got)

	c.Delete("exercises")
	assert.False(t, c.Get("exercises", &got))
}

func TestJSONCache_CorruptEntryIsDropped(t *testing.T) {
	c := NewJSONCache(0, time.Minute)
	require.NoError(t, c.cache.Set([]byte("k"), []byte("{not json"), 60))

	var got entry
	assert.False(t, c.Get("k", &got))
	_, err := c.cache.Get([]byte("k"))
	assert.Error(t, err)
}
