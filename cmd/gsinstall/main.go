package main

import (
	"fmt"
	"os"

	"github.com/gameserverkit/gsinstall/internal/cli"
	"github.com/gameserverkit/gsinstall/pkg/errors"
	"github.com/gameserverkit/gsinstall/pkg/style"
)

func main() {
	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		code := errors.ExitCode(err)

		if code == errors.ExitGuardNeeded {
			fmt.Fprintln(os.Stderr, style.RenderHalt(recoveryPath(err)))
		} else {
			fmt.Fprintln(os.Stderr, style.RenderError(err))
		}

		os.Exit(code)
	}
}

// recoveryPath digs the instructions path out of the halt error so the
// final message points straight at the document.
func recoveryPath(err error) string {
	if details := errors.GetErrorDetails(err); details != nil {
		if p, ok := details["recoveryPath"].(string); ok {
			return p
		}
	}
	return "the install directory"
}
