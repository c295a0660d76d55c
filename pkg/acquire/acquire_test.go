package acquire

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameserverkit/gsinstall/pkg/config"
	"github.com/gameserverkit/gsinstall/pkg/errors"
	"github.com/gameserverkit/gsinstall/pkg/steamcmd"
)

type fakeRunner struct {
	result steamcmd.Result
	args   []string
}

func (f *fakeRunner) Run(_ context.Context, args []string) (steamcmd.Result, error) {
	f.args = args
	return f.result, nil
}

func testConfig(t *testing.T, extra map[string]string) *config.Install {
	t.Helper()
	vars := map[string]string{
		"INSTALL_DIR":  t.TempDir(),
		"STEAMCMD_DIR": t.TempDir(),
	}
	for k, v := range extra {
		vars[k] = v
	}
	cfg, err := config.FromVars(vars)
	require.NoError(t, err)
	return cfg
}

func TestRun_Success(t *testing.T) {
	cfg := testConfig(t, nil)
	runner := &fakeRunner{result: steamcmd.Result{ExitCode: 0, Output: "Success! App '896660' fully installed."}}

	require.NoError(t, Run(context.Background(), cfg, runner))

	assert.Equal(t, steamcmd.InstallScript(cfg), runner.args)

	data, err := os.ReadFile(filepath.Join(cfg.InstallDir, AppIDMarker))
	require.NoError(t, err)
	assert.Equal(t, "896660\n", string(data))
}

func TestRun_ToolFailureIsFatal(t *testing.T) {
	cfg := testConfig(t, nil)
	runner := &fakeRunner{result: steamcmd.Result{
		ExitCode: 8,
		Output:   "Update state (0x3) reconfiguring\nError! App '896660' state is 0x602 after update job.",
	}}

	err := Run(context.Background(), cfg, runner)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrToolFailed))
	assert.Contains(t, err.Error(), "state is 0x602")
	assert.NoFileExists(t, filepath.Join(cfg.InstallDir, AppIDMarker))
}

func TestRun_CreatesInstallDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh", "server")
	cfg := testConfig(t, map[string]string{"INSTALL_DIR": dir})
	runner := &fakeRunner{result: steamcmd.Result{ExitCode: 0}}

	require.NoError(t, Run(context.Background(), cfg, runner))
	assert.DirExists(t, dir)
}

func TestInstallShims(t *testing.T) {
	steamcmdDir := t.TempDir()
	home := t.TempDir()
	lib := filepath.Join(steamcmdDir, "linux64", "steamclient.so")
	require.NoError(t, os.MkdirAll(filepath.Dir(lib), 0755))
	require.NoError(t, os.WriteFile(lib, []byte("elf"), 0755))

	installed := InstallShims(steamcmdDir, home)

	assert.Equal(t, 1, installed)
	assert.FileExists(t, filepath.Join(home, ".steam", "sdk64", "steamclient.so"))
	assert.NoFileExists(t, filepath.Join(home, ".steam", "sdk32", "steamclient.so"))
}

func TestInstallShims_NothingPresent(t *testing.T) {
	// Missing libraries are skipped without error.
	assert.Equal(t, 0, InstallShims(t.TempDir(), t.TempDir()))
}

func TestTail(t *testing.T) {
	assert.Equal(t, "last line", tail("first\nsecond\nlast line\n\n"))
	assert.Equal(t, "", tail("  \n "))
}
