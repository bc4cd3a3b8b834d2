package main

import (
	"path/filepath"
	"testing"
	"time"

	"khetmitra-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivities_CoverEveryWorker(t *testing.T) {
	reg := registry.New(registryVersion, time.Now(), Activities()...)
	require.NoError(t, reg.Validate())
	assert.Len(t, reg.Activities, 9)

	for _, a := range reg.Activities {
		assert.Contains(t, a.ErrorCodes, "INPUT_VALIDATION_FAILED", a.ID)
	}
}

func TestCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	require.NoError(t, registry.Save(registry.New(registryVersion, time.Now(), Activities()...), path))
	assert.NoError(t, check(path))

	stale := registry.New(registryVersion, time.Now(), Activities()[1:]...)
	require.NoError(t, registry.Save(stale, path))
	err := check(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}
