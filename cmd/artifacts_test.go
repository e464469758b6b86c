package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherine-k/outbreak/pkg/config"
	"github.com/sherine-k/outbreak/pkg/simulation"
)

func TestNewArtifactsCleansUpAfterFailedSetup(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	cfg.Output.Video = true
	cfg.Output.Snapshots = true
	cfg.SnapshotSchedule = "not a schedule"

	start := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	_, err := newArtifacts(cfg, "run-1", start, simulation.Statistics{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse cron schedule")

	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "run-1"))
	assert.True(t, os.IsNotExist(err), "the half built run directory is removed")
}

func TestNewArtifactsDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")

	a, err := newArtifacts(cfg, "run-1", time.Now(), simulation.Statistics{})
	require.NoError(t, err)
	assert.Nil(t, a.recorder)
	require.NoError(t, a.finish(nil))

	_, err = os.Stat(cfg.Output.Dir)
	assert.True(t, os.IsNotExist(err))
}
