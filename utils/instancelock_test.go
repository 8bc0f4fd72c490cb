package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceLock(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "secrets")

	first, err := NewInstanceLock(dataDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, ".ecessbot.lock"), first.Path())
	require.NoError(t, first.TryLock())

	second, err := NewInstanceLock(dataDir)
	require.NoError(t, err)
	assert.Error(t, second.TryLock())

	require.NoError(t, first.Unlock())
	_, err = os.Stat(first.Path())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, second.TryLock())
	require.NoError(t, second.Unlock())
}
