package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gameserverkit/gsinstall/internal/version"
	"github.com/gameserverkit/gsinstall/pkg/config"
	"github.com/gameserverkit/gsinstall/pkg/logging"
	"github.com/gameserverkit/gsinstall/pkg/style"
	"github.com/gameserverkit/gsinstall/pkg/workflow"
)

// NewRootCmd creates and returns the root command. Running the bare binary
// performs the installation; that is how container entrypoints invoke it.
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "gsinstall",
		Short: "Provision a modded dedicated game server",
		Long: `gsinstall provisions a dedicated game server inside a container: it fetches
the server files via steamcmd, overlays the BepInEx plugin loader, and
optionally applies a mod profile from the package registry.

All inputs come from environment variables; the run is strictly
non-interactive. Exit code 2 means a Steam Guard code is needed: set
STEAM_AUTH and re-run.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			style.Setup()
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"Increase verbosity (-v DEBUG, -vv TRACE)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func runInstall(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	wf := workflow.New(workflow.Options{Config: cfg})
	return wf.Run(cmd.Context())
}

// newConfigCmd shows the effective configuration with secrets redacted.
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration (credentials redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out, err := config.Render(cfg)
			if err != nil {
				return err
			}
			cmd.Print(out)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(fmt.Sprintf("gsinstall %s (commit %s, built %s)",
				version.Version, version.Commit, version.Date))
		},
	}
}
