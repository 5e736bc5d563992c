package telemetry_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalyx/repledger/internal/setup/config"
	"github.com/robalyx/repledger/internal/setup/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerGetLoggers(t *testing.T) {
	t.Parallel()

	logDir := t.TempDir()
	manager := telemetry.NewManager(telemetry.ServiceCLI, logDir, &config.Debug{
		LogLevel:      "info",
		MaxLogsToKeep: 3,
		MaxLogLines:   100,
	})

	mainLogger, dbLogger, err := manager.GetLoggers()
	require.NoError(t, err)

	mainLogger.Info("main entry")
	dbLogger.Debug("filtered entry")
	manager.Stop()

	sessionDir := manager.GetCurrentSessionDir()
	assert.Equal(t, logDir, filepath.Dir(sessionDir))
	assert.Contains(t, filepath.Base(sessionDir), "cli")

	data, err := os.ReadFile(filepath.Join(sessionDir, "main.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "main entry")
	assert.Contains(t, string(data), manager.GetInstanceID())

	data, err = os.ReadFile(filepath.Join(sessionDir, "database.log"))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestManagerRotatesSessions(t *testing.T) {
	t.Parallel()

	logDir := t.TempDir()
	base := time.Now().Add(-time.Hour)

	for i, name := range []string{"old-a", "old-b", "old-c"} {
		dir := filepath.Join(logDir, name)
		require.NoError(t, os.Mkdir(dir, os.ModePerm))

		modTime := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(dir, modTime, modTime))
	}

	manager := telemetry.NewManager(telemetry.ServiceBot, logDir, &config.Debug{
		LogLevel:      "debug",
		MaxLogsToKeep: 2,
		MaxLogLines:   100,
	})

	_, _, err := manager.GetLoggers()
	require.NoError(t, err)
	manager.Stop()

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	names := []string{entries[0].Name(), entries[1].Name()}
	assert.Contains(t, names, "old-c")
	assert.Contains(t, names, filepath.Base(manager.GetCurrentSessionDir()))
}

func TestManagerInvalidLevel(t *testing.T) {
	t.Parallel()

	manager := telemetry.NewManager(telemetry.ServiceCLI, t.TempDir(), &config.Debug{LogLevel: "loud"})

	_, _, err := manager.GetLoggers()
	require.Error(t, err)
}
