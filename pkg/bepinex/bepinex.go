// Package bepinex installs the plugin-loader runtime and, when a profile
// code is supplied, the profile's mod set. Every download and extraction in
// here is fatal: a partially merged mod set is unsafe to boot, so the whole
// workflow aborts rather than continuing.
package bepinex

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gameserverkit/gsinstall/pkg/archive"
	"github.com/gameserverkit/gsinstall/pkg/config"
	"github.com/gameserverkit/gsinstall/pkg/errors"
	"github.com/gameserverkit/gsinstall/pkg/logging"
	"github.com/gameserverkit/gsinstall/pkg/profile"
	"github.com/gameserverkit/gsinstall/pkg/registry"
)

// PluginDir is the loader's directory under the install root.
const PluginDir = "BepInEx"

// Installer installs the runtime and mod profiles into one install
// directory.
type Installer struct {
	cfg    *config.Install
	client *registry.Client
}

// NewInstaller creates an Installer for the given configuration.
func NewInstaller(cfg *config.Install, client *registry.Client) *Installer {
	return &Installer{cfg: cfg, client: client}
}

// InstallRuntime fetches the latest loader release and overlays it onto the
// install directory. The server cannot run without the loader, so any
// failure here is fatal.
func (i *Installer) InstallRuntime(ctx context.Context) error {
	log := logging.GetLogger("bepinex")

	namespace, name := i.cfg.LoaderParts()
	rel, err := i.client.LatestRelease(ctx, namespace, name)
	if err != nil {
		return err
	}

	log.Info().Str("package", i.cfg.LoaderPackage).
		Str("version", rel.Latest.VersionNumber).Msg("Installing plugin loader")

	work, err := os.MkdirTemp("", "gsinstall-runtime-")
	if err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create scratch directory")
	}
	defer func() { _ = os.RemoveAll(work) }()

	zipPath := filepath.Join(work, "runtime.zip")
	if err := i.client.Download(ctx, rel.Latest.DownloadURL, zipPath); err != nil {
		return err
	}

	tree := filepath.Join(work, "tree")
	if err := archive.ExtractZip(zipPath, tree); err != nil {
		return err
	}
	if err := archive.NormalizeNames(tree); err != nil {
		return err
	}
	// Loader packs wrap their payload in a version-named folder.
	if err := archive.CollapseRoot(tree); err != nil {
		return err
	}

	if err := archive.Merge(tree, i.cfg.InstallDir, true); err != nil {
		return err
	}

	// The settings directory doubles as the marker that the loader overlay
	// is in place.
	configDir := filepath.Join(i.cfg.InstallDir, PluginDir, "config")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", configDir)
	}

	return nil
}

// InstallProfile resolves the configured profile code and merges its mod
// set into the plugin directory under the overwrite policy.
func (i *Installer) InstallProfile(ctx context.Context) error {
	log := logging.GetLogger("bepinex")

	scratch, err := os.MkdirTemp("", "gsinstall-profile-")
	if err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create scratch directory")
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	// Resolve the profile archive into the scratch tree.
	profileZip := filepath.Join(scratch, "profile.zip")
	if err := i.client.ProfileArchive(ctx, i.cfg.ProfileCode, profileZip); err != nil {
		return err
	}
	tree := filepath.Join(scratch, "tree")
	if err := archive.ExtractZip(profileZip, tree); err != nil {
		return err
	}

	manifest, err := os.ReadFile(filepath.Join(tree, profile.ManifestName))
	if err != nil {
		return errors.Wrapf(err, errors.ErrManifestParse,
			"profile %s has no %s", i.cfg.ProfileCode, profile.ManifestName)
	}
	mods, err := profile.ParseManifest(manifest)
	if err != nil {
		return err
	}
	mods = profile.Filter(mods, i.cfg.LoaderPackage)

	log.Info().Str("profile", i.cfg.ProfileCode).Int("mods", len(mods)).
		Msg("Installing mod profile")

	for _, m := range mods {
		if err := i.installMod(ctx, m, scratch, tree); err != nil {
			return err
		}
	}

	// Archives merged above may have introduced new backslash names.
	if err := archive.NormalizeNames(tree); err != nil {
		return err
	}

	// The profile's loader-overlay subtree folds onto the tree root so one
	// merge pass lands everything in the plugin directory.
	overlay := filepath.Join(tree, PluginDir)
	if _, err := os.Stat(overlay); err == nil {
		if err := archive.Merge(overlay, tree, true); err != nil {
			return err
		}
		if err := os.RemoveAll(overlay); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to remove %s", overlay)
		}
	}

	pluginRoot := filepath.Join(i.cfg.InstallDir, PluginDir)
	if err := archive.ClearDir(filepath.Join(pluginRoot, "plugins")); err != nil {
		return err
	}
	if err := archive.Merge(tree, pluginRoot, i.cfg.Overwrite); err != nil {
		return err
	}

	log.Info().Int("mods", len(mods)).Bool("overwrite", i.cfg.Overwrite).
		Msg("Mod profile installed")
	return nil
}

// installMod downloads one pinned mod version, normalizes its layout and
// stages it under the scratch tree's plugins directory.
func (i *Installer) installMod(ctx context.Context, m profile.Mod, scratch, tree string) error {
	log := logging.GetLogger("bepinex")
	log.Debug().Str("package", m.FullName()).Str("version", m.Version.String()).
		Msg("Installing mod")

	modZip := filepath.Join(scratch, m.DirName()+".zip")
	if err := i.client.DownloadVersion(ctx, m.Namespace, m.Name, m.Version.String(), modZip); err != nil {
		return err
	}

	modDir := filepath.Join(scratch, "staged", m.DirName())
	if err := archive.ExtractZip(modZip, modDir); err != nil {
		return err
	}
	if err := archive.NormalizeNames(modDir); err != nil {
		return err
	}
	if err := archive.CollapseRoot(modDir); err != nil {
		return err
	}

	return archive.MoveTree(modDir, filepath.Join(tree, PluginDir, "plugins", m.DirName()))
}
