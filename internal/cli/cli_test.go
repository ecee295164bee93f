package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	// Test that root command is created
	assert.NotNil(t, RootCmd)
	assert.Equal(t, "reelsync", RootCmd.Use)
	assert.Contains(t, RootCmd.Long, "ReelSync")
}

func TestVersionCommand(t *testing.T) {
	// Test version command
	assert.NotNil(t, versionCmd)
	assert.Equal(t, "version", versionCmd.Use)
}

func TestGetGlobalFlags(t *testing.T) {
	// Initialize CLI first
	InitCLI()

	// Test global flags getter
	flags := GetGlobalFlags()
	assert.Equal(t, "config.yaml", flags.Config)
	assert.Equal(t, "./data/reelsync.db", flags.DBPath)
	assert.False(t, flags.Verbose)
}

func TestGetVersionInfo(t *testing.T) {
	// Test version info
	info := GetVersionInfo()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.OS)
	assert.NotEmpty(t, info.Arch)
}

func TestInitCLIIdempotent(t *testing.T) {
	InitCLI()
	InitCLI()

	// Flags must not be registered twice
	flag := RootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
}

func TestRegisteredCommands(t *testing.T) {
	InitCLI()

	names := make(map[string]bool)
	for _, cmd := range RootCmd.Commands() {
		names[cmd.Name()] = true
	}

	assert.True(t, names["serve"], "serve command should be registered")
	assert.True(t, names["sync"], "sync command should be registered")
	assert.True(t, names["accounts"], "accounts command should be registered")
	assert.True(t, names["version"], "version command should be registered")
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("REELSYNC_TEST_DURATION", "45s")
	assert.Equal(t, 45*time.Second, envDuration("REELSYNC_TEST_DURATION", time.Minute))
	assert.Equal(t, time.Minute, envDuration("REELSYNC_TEST_DURATION_MISSING", time.Minute))

	t.Setenv("REELSYNC_TEST_DURATION", "not-a-duration")
	assert.Equal(t, time.Minute, envDuration("REELSYNC_TEST_DURATION", time.Minute))
}

func TestEnvInt(t *testing.T) {
	t.Setenv("REELSYNC_TEST_INT", "8")
	assert.Equal(t, 8, envInt("REELSYNC_TEST_INT", 4))
	assert.Equal(t, 4, envInt("REELSYNC_TEST_INT_MISSING", 4))
}
