package acquire

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gameserverkit/gsinstall/pkg/logging"
)

// shimPairs maps steamclient libraries shipped with steamcmd onto the SDK
// paths the game's networking layer probes at startup.
var shimPairs = []struct {
	src string
	dst string
}{
	{src: "linux64/steamclient.so", dst: ".steam/sdk64/steamclient.so"},
	{src: "linux32/steamclient.so", dst: ".steam/sdk32/steamclient.so"},
}

// InstallShims copies the steamclient libraries into the home-relative SDK
// directories. Every failure is logged and skipped; the shims are a runtime
// aid, not a requirement for booting the server. Returns the number of
// shims installed.
func InstallShims(steamcmdDir, homeDir string) int {
	log := logging.GetLogger("acquire")
	installed := 0

	for _, p := range shimPairs {
		src := filepath.Join(steamcmdDir, p.src)
		dst := filepath.Join(homeDir, p.dst)

		if _, err := os.Stat(src); err != nil {
			log.Debug().Str("path", src).Msg("Shim library not present, skipping")
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			log.Warn().Err(err).Str("path", dst).Msg("Cannot create shim directory")
			continue
		}
		if err := copyShim(src, dst); err != nil {
			log.Warn().Err(err).Str("src", src).Str("dst", dst).Msg("Shim copy failed")
			continue
		}
		log.Debug().Str("dst", dst).Msg("Shim library installed")
		installed++
	}

	return installed
}

func copyShim(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0755)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
