// Package acquire performs the actual fetch-and-validate of the server
// application via steamcmd. Acquisition is never retried here: a failed run
// aborts and the operator re-invokes the whole workflow.
package acquire

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/gameserverkit/gsinstall/pkg/config"
	"github.com/gameserverkit/gsinstall/pkg/errors"
	"github.com/gameserverkit/gsinstall/pkg/logging"
	"github.com/gameserverkit/gsinstall/pkg/steamcmd"
)

// AppIDMarker is written into the install directory after a successful
// acquisition so the runtime knows which application lives there.
const AppIDMarker = "steam_appid.txt"

// Run drives steamcmd once to fetch and validate the application into the
// install directory, then writes the app-id marker and applies the
// compatibility shims.
func Run(ctx context.Context, cfg *config.Install, runner steamcmd.Runner) error {
	log := logging.GetLogger("acquire")

	if err := os.MkdirAll(cfg.InstallDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate,
			"failed to create install directory %s", cfg.InstallDir)
	}

	log.Info().Str("appID", cfg.AppID).Bool("anonymous", cfg.Anonymous).
		Msg("Fetching application")

	res, err := runner.Run(ctx, steamcmd.InstallScript(cfg))
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return errors.Newf(errors.ErrToolFailed,
			"steamcmd exited with code %d: %s", res.ExitCode, tail(res.Output)).
			WithDetail("appID", cfg.AppID)
	}

	marker := filepath.Join(cfg.InstallDir, AppIDMarker)
	if err := os.WriteFile(marker, []byte(cfg.AppID+"\n"), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", marker)
	}

	// The shim step is an optional runtime aid; its failures must never
	// fail an otherwise complete acquisition.
	home, err := os.UserHomeDir()
	if err != nil {
		log.Warn().Err(err).Msg("Cannot resolve home directory, skipping steamclient shims")
		return nil
	}
	InstallShims(cfg.SteamcmdDir, home)

	return nil
}

// tail returns the final non-empty line of tool output for error messages.
func tail(out string) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
