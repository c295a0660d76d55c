// Package workflow sequences the four installation stages. Stages run
// strictly in order, each gated on the success of the previous; the first
// fatal error aborts the whole run.
package workflow

import (
	"context"

	"github.com/gameserverkit/gsinstall/pkg/acquire"
	"github.com/gameserverkit/gsinstall/pkg/bepinex"
	"github.com/gameserverkit/gsinstall/pkg/config"
	"github.com/gameserverkit/gsinstall/pkg/logging"
	"github.com/gameserverkit/gsinstall/pkg/negotiate"
	"github.com/gameserverkit/gsinstall/pkg/registry"
	"github.com/gameserverkit/gsinstall/pkg/steamcmd"
	"github.com/gameserverkit/gsinstall/pkg/style"
)

// stageCount covers negotiation, acquisition, runtime and profile install.
const stageCount = 4

// Options configures a Workflow. Config is required; Runner and Registry
// default to the real implementations and exist for substitution in tests.
type Options struct {
	Config   *config.Install
	Runner   steamcmd.Runner
	Registry *registry.Client
	Quiet    bool
}

// Workflow is one installation run.
type Workflow struct {
	cfg       *config.Install
	runner    steamcmd.Runner
	installer *bepinex.Installer
	negot     *negotiate.Negotiator
	quiet     bool
}

// New assembles a Workflow from options.
func New(opts Options) *Workflow {
	cfg := opts.Config

	runner := opts.Runner
	if runner == nil {
		runner = steamcmd.NewRunner(cfg.SteamcmdDir)
	}
	client := opts.Registry
	if client == nil {
		client = registry.NewClient(cfg.RegistryURL)
	}

	return &Workflow{
		cfg:       cfg,
		runner:    runner,
		installer: bepinex.NewInstaller(cfg, client),
		negot:     negotiate.New(runner, negotiate.NewClassifier(cfg.GuardPhrases)),
		quiet:     opts.Quiet,
	}
}

// Run executes the stages in order and returns the first fatal error.
// Translate the error to a process exit code with errors.ExitCode.
func (w *Workflow) Run(ctx context.Context) error {
	log := logging.GetLogger("workflow")

	w.stage(1, "Negotiating Steam login")
	outcome, err := w.negot.Negotiate(ctx, w.cfg)
	if err != nil {
		log.Error().Err(err).Str("state", string(outcome.State)).Msg("Login negotiation did not succeed")
		return err
	}
	log.Info().Str("state", string(outcome.State)).Msg("Login negotiated")

	w.stage(2, "Fetching server files")
	if err := acquire.Run(ctx, w.cfg, w.runner); err != nil {
		log.Error().Err(err).Msg("Acquisition failed")
		return err
	}

	w.stage(3, "Installing plugin loader")
	if err := w.installer.InstallRuntime(ctx); err != nil {
		log.Error().Err(err).Msg("Plugin loader install failed")
		return err
	}

	w.stage(4, "Installing mod profile")
	if w.cfg.ProfileCode == "" {
		w.step("No profile code supplied, skipping")
		log.Info().Msg("No mod profile configured")
		return nil
	}
	if err := w.installer.InstallProfile(ctx); err != nil {
		log.Error().Err(err).Msg("Mod profile install failed")
		return err
	}

	log.Info().Msg("Installation complete")
	return nil
}

func (w *Workflow) stage(n int, title string) {
	if !w.quiet {
		style.Stage(n, stageCount, title)
	}
}

func (w *Workflow) step(msg string) {
	if !w.quiet {
		style.Step("%s", msg)
	}
}
