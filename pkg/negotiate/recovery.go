package negotiate

import (
	"os"
	"path/filepath"

	"github.com/gameserverkit/gsinstall/pkg/errors"
)

// RecoveryText is the document written when the install halts pending a
// Steam Guard code. Operators are expected to find this file, not the logs.
const RecoveryText = `STEAM GUARD CODE REQUIRED
=========================

The installer could not log in to Steam because this account has Steam
Guard enabled and no code was provided.

To finish the installation:

  1. Check the email account (or mobile authenticator) associated with
     this Steam account for a Steam Guard code.
  2. Set the STEAM_AUTH variable to the code you received.
  3. Run the installation again.

Steam Guard codes expire quickly, so re-run the installation promptly
after setting the variable.
`

// WriteRecovery writes the recovery instructions to the given path,
// creating parent directories as needed.
func WriteRecovery(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate,
			"failed to create directory for %s", path)
	}
	if err := os.WriteFile(path, []byte(RecoveryText), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"failed to write recovery instructions to %s", path)
	}
	return nil
}
