package steamcmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameserverkit/gsinstall/pkg/config"
)

func mustConfig(t *testing.T, vars map[string]string) *config.Install {
	t.Helper()
	cfg, err := config.FromVars(vars)
	require.NoError(t, err)
	return cfg
}

func TestProbeScript(t *testing.T) {
	cfg := mustConfig(t, map[string]string{
		"STEAM_USER": "gabe",
		"STEAM_PASS": "hunter2",
	})

	assert.Equal(t, []string{"+login", "gabe", "hunter2", "+quit"}, ProbeScript(cfg))
}

func TestInstallScript(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want []string
	}{
		{
			name: "anonymous default",
			vars: nil,
			want: []string{
				"+force_install_dir", "/mnt/server",
				"+login", "anonymous",
				"+app_update", "896660", "validate",
				"+quit",
			},
		},
		{
			name: "authenticated with token",
			vars: map[string]string{
				"STEAM_USER": "gabe",
				"STEAM_PASS": "hunter2",
				"STEAM_AUTH": "ABC12",
			},
			want: []string{
				"+force_install_dir", "/mnt/server",
				"+login", "gabe", "hunter2", "ABC12",
				"+app_update", "896660", "validate",
				"+quit",
			},
		},
		{
			name: "windows platform with beta branch",
			vars: map[string]string{
				"APP_ID":          "1829350",
				"WINDOWS_INSTALL": "1",
				"BETA_ID":         "pts",
				"BETA_PASSWORD":   "sekrit",
				"VALIDATE":        "0",
			},
			want: []string{
				"+force_install_dir", "/mnt/server",
				"+login", "anonymous",
				"+@sSteamCmdForcePlatformType", "windows",
				"+app_update", "1829350", "-beta", "pts", "-betapassword", "sekrit",
				"+quit",
			},
		},
		{
			name: "extra flags pass through before validate",
			vars: map[string]string{"EXTRA_FLAGS": "-language english"},
			want: []string{
				"+force_install_dir", "/mnt/server",
				"+login", "anonymous",
				"+app_update", "896660", "-language", "english", "validate",
				"+quit",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InstallScript(mustConfig(t, tt.vars)))
		})
	}
}

func TestRedactArgs(t *testing.T) {
	args := []string{"+force_install_dir", "/mnt/server", "+login", "gabe", "hunter2", "ABC12", "+quit"}
	got := redactArgs(args)

	assert.Equal(t, []string{"+force_install_dir", "/mnt/server", "+login", "****", "****", "****", "+quit"}, got)
	// The input must not be mutated.
	assert.Equal(t, "gabe", args[3])
}

func writeStub(t *testing.T, script string) Runner {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "steamcmd.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return NewRunner(dir)
}

func TestRunner_CapturesOutputAndExitCode(t *testing.T) {
	r := writeStub(t, `echo "Loading Steam API...FAILED"; exit 8`)

	res, err := r.Run(context.Background(), []string{"+quit"})
	require.NoError(t, err)

	assert.Equal(t, 8, res.ExitCode)
	assert.False(t, res.TimedOut)
	assert.Contains(t, res.Output, "FAILED")
}

func TestRunner_Success(t *testing.T) {
	r := writeStub(t, `echo "Waiting for user info...OK"; exit 0`)

	res, err := r.Run(context.Background(), []string{"+quit"})
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Output, "OK")
}

func TestRunner_Timeout(t *testing.T) {
	r := writeStub(t, `sleep 10`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res, err := r.Run(ctx, nil)
	require.NoError(t, err)

	assert.True(t, res.TimedOut)
}

func TestRunner_MissingBinary(t *testing.T) {
	r := NewRunner(t.TempDir())

	_, err := r.Run(context.Background(), nil)
	assert.Error(t, err)
}
