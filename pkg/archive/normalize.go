package archive

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gameserverkit/gsinstall/pkg/errors"
	"github.com/gameserverkit/gsinstall/pkg/logging"
)

// NormalizeNames repairs entry names containing literal backslashes under
// root: each backslash becomes a path separator, so a file named
// "BepInEx\plugins\mod.dll" moves to BepInEx/plugins/mod.dll. The operation
// is idempotent; a second pass finds nothing to rename.
func NormalizeNames(root string) error {
	log := logging.GetLogger("archive")

	// Renaming a directory invalidates the paths of everything below it,
	// so rename one entry per walk and rescan until a pass is clean.
	for {
		renamed, err := renameFirstBackslash(root)
		if err != nil {
			return err
		}
		if !renamed {
			return nil
		}
		log.Trace().Str("root", root).Msg("Normalization pass renamed an entry")
	}
}

func renameFirstBackslash(root string) (bool, error) {
	var pending string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.Contains(d.Name(), `\`) {
			pending = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to scan %s", root)
	}
	if pending == "" {
		return false, nil
	}

	parent := filepath.Dir(pending)
	fixed := strings.ReplaceAll(filepath.Base(pending), `\`, "/")
	target := filepath.Join(parent, filepath.FromSlash(fixed))

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent of %s", target)
	}
	if err := os.Rename(pending, target); err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to rename %s", pending)
	}
	return true, nil
}

// CollapseRoot flattens redundant single-child directory chains: while root
// holds exactly one entry and that entry is a directory, its contents move
// up one level. Stops as soon as the level has zero entries, more than one,
// or a file.
func CollapseRoot(root string) error {
	for {
		entries, err := os.ReadDir(root)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", root)
		}
		if len(entries) != 1 || !entries[0].IsDir() {
			return nil
		}

		child := filepath.Join(root, entries[0].Name())

		// The child may contain an entry with its own name, so it is moved
		// aside before its contents are promoted.
		tmp := child + ".collapsing"
		if err := os.Rename(child, tmp); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to stage %s", child)
		}

		sub, err := os.ReadDir(tmp)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", tmp)
		}
		for _, e := range sub {
			if err := os.Rename(filepath.Join(tmp, e.Name()), filepath.Join(root, e.Name())); err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "failed to promote %s", e.Name())
			}
		}
		if err := os.Remove(tmp); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", tmp)
		}
	}
}
