// Package steamcmd drives the steamcmd CLI. The tool is opaque: the only
// observable signal is its combined output and exit code, so every
// invocation returns a structured Result and call sites decide what a
// non-zero exit means.
package steamcmd

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gameserverkit/gsinstall/pkg/config"
	installerr "github.com/gameserverkit/gsinstall/pkg/errors"
	"github.com/gameserverkit/gsinstall/pkg/logging"
)

// Result is the outcome of one steamcmd invocation. A non-zero ExitCode is
// not an error at this layer.
type Result struct {
	ExitCode int
	Output   string
	TimedOut bool
}

// Runner executes steamcmd synchronously. The returned error is reserved for
// spawn-level problems (missing binary, bad working directory); tool
// failures are reported through Result.
type Runner interface {
	Run(ctx context.Context, args []string) (Result, error)
}

type execRunner struct {
	binary string
}

// NewRunner returns a Runner invoking steamcmd.sh from the given directory.
func NewRunner(dir string) Runner {
	return &execRunner{binary: filepath.Join(dir, "steamcmd.sh")}
}

func (r *execRunner) Run(ctx context.Context, args []string) (Result, error) {
	log := logging.GetLogger("steamcmd")
	logging.LogCommand(r.binary, redactArgs(args))

	cmd := exec.CommandContext(ctx, r.binary, args...)
	out, err := cmd.CombinedOutput()

	res := Result{Output: string(out)}

	if ctx.Err() == context.DeadlineExceeded {
		// The process was killed by the deadline; its exit status carries
		// no meaning beyond "did not finish".
		res.TimedOut = true
		res.ExitCode = -1
		log.Debug().Msg("steamcmd terminated by timeout")
		return res, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, installerr.Wrapf(err, installerr.ErrToolNotFound,
			"failed to launch %s", r.binary)
	}

	return res, nil
}

// ProbeScript builds the bounded login probe: a bare login with no
// second-factor input, followed by quit.
func ProbeScript(cfg *config.Install) []string {
	return []string{"+login", cfg.Username, cfg.Password, "+quit"}
}

// InstallScript builds the full fetch-and-validate invocation.
func InstallScript(cfg *config.Install) []string {
	args := []string{"+force_install_dir", cfg.InstallDir}

	if cfg.Anonymous {
		args = append(args, "+login", "anonymous")
	} else {
		args = append(args, "+login", cfg.Username, cfg.Password)
		if cfg.GuardToken != "" {
			args = append(args, cfg.GuardToken)
		}
	}

	if cfg.WindowsPlatform {
		args = append(args, "+@sSteamCmdForcePlatformType", "windows")
	}

	args = append(args, "+app_update", cfg.AppID)
	if cfg.BetaID != "" {
		args = append(args, "-beta", cfg.BetaID)
		if cfg.BetaPassword != "" {
			args = append(args, "-betapassword", cfg.BetaPassword)
		}
	}
	args = append(args, cfg.ExtraFlags...)
	if cfg.Validate {
		args = append(args, "validate")
	}

	return append(args, "+quit")
}

// redactArgs masks everything after +login so credentials never reach the
// logs.
func redactArgs(args []string) []string {
	redacted := make([]string, len(args))
	mask := false
	for i, a := range args {
		switch {
		case a == "+login":
			redacted[i] = a
			mask = true
		case mask && !strings.HasPrefix(a, "+"):
			redacted[i] = "****"
		default:
			redacted[i] = a
			mask = false
		}
	}
	return redacted
}
