package app

import (
	"alcyxob/fitcoach/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_Memory(t *testing.T) {
	store, closeFn, err := OpenStore(config.DatabaseConfig{Driver: "memory"})
	require.NoError(t, err)
	defer closeFn()

	require.NotNil(t, store)
	assert.NotNil(t, store.Users)
	assert.NotNil(t, store.Uploads)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, _, err := OpenStore(config.DatabaseConfig{Driver: "sqlite"})
	assert.ErrorContains(t, err, `unknown database driver "sqlite"`)
}
