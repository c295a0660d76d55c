// Package archive handles mod archive extraction and the filesystem
// normalization that follows it. Archives built on other platforms may
// embed backslash separators in entry names; extraction preserves them
// verbatim and NormalizeNames repairs the layout afterwards.
package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gameserverkit/gsinstall/pkg/errors"
	"github.com/gameserverkit/gsinstall/pkg/logging"
)

// ExtractZip extracts the zip at src into the dest directory. Entry names
// escaping dest are rejected.
func ExtractZip(src, dest string) error {
	log := logging.GetLogger("archive")

	r, err := zip.OpenReader(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchiveExtract, "failed to open archive %s", src)
	}
	defer func() { _ = r.Close() }()

	if err := os.MkdirAll(dest, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", dest)
	}

	for _, f := range r.File {
		if err := extractEntry(f, dest); err != nil {
			return err
		}
	}

	log.Debug().Str("archive", src).Int("entries", len(r.File)).Msg("Archive extracted")
	return nil
}

func extractEntry(f *zip.File, dest string) error {
	// Zip-slip check runs on the separator-normalized name so a traversal
	// hidden behind backslashes is caught too.
	slashed := strings.ReplaceAll(f.Name, `\`, "/")
	if !filepath.IsLocal(slashed) {
		return errors.Newf(errors.ErrArchivePath, "archive entry %q escapes the target directory", f.Name)
	}

	target := filepath.Join(dest, f.Name)

	if f.FileInfo().IsDir() {
		if err := os.MkdirAll(target, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", target)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent of %s", target)
	}

	rc, err := f.Open()
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchiveExtract, "failed to read entry %q", f.Name)
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "failed to create %s", target)
	}

	_, err = io.Copy(out, rc)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrArchiveExtract, "failed to extract %q", f.Name)
	}
	return nil
}
