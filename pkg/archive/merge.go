package archive

import (
	"io"
	"os"
	"path/filepath"

	"github.com/gameserverkit/gsinstall/pkg/errors"
	"github.com/gameserverkit/gsinstall/pkg/logging"
)

// Merge copies the tree at src into dst. With overwrite, every source file
// replaces its destination counterpart; without it, only files missing at
// the destination are copied, so server-side edits survive.
func Merge(src, dst string, overwrite bool) error {
	log := logging.GetLogger("archive")
	copied, skipped := 0, 0

	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		if !overwrite {
			if _, serr := os.Lstat(target); serr == nil {
				skipped++
				return nil
			}
		}
		copied++
		return copyFile(path, target)
	})
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to merge %s into %s", src, dst)
	}

	log.Debug().Str("src", src).Str("dst", dst).Bool("overwrite", overwrite).
		Int("copied", copied).Int("skipped", skipped).Msg("Tree merged")
	return nil
}

// MoveTree relocates src to dst, preferring a rename and falling back to a
// copy when src and dst live on different filesystems.
func MoveTree(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent of %s", dst)
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := Merge(src, dst, true); err != nil {
		return err
	}
	if err := os.RemoveAll(src); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", src)
	}
	return nil
}

// ClearDir removes the contents of dir, leaving dir itself in place. A
// missing dir is not an error.
func ClearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", dir)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", e.Name())
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
