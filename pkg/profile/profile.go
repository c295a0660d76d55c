// Package profile models the mod list exported inside a profile archive.
package profile

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gameserverkit/gsinstall/pkg/errors"
)

// ManifestName is the manifest file inside a profile archive.
const ManifestName = "mods.yml"

// Version is a mod's exact semantic version. The registry addresses
// archives by the full triple, so it is never rounded or ranged.
type Version struct {
	Major int `yaml:"major"`
	Minor int `yaml:"minor"`
	Patch int `yaml:"patch"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Mod describes one entry of a profile's mod list.
type Mod struct {
	Namespace string
	Name      string
	Version   Version
	Enabled   bool
}

// FullName returns the registry identifier, namespace/name.
func (m Mod) FullName() string {
	return m.Namespace + "/" + m.Name
}

// DirName returns the registry-safe directory name, namespace-name.
func (m Mod) DirName() string {
	return m.Namespace + "-" + m.Name
}

// manifestEntry is the on-disk YAML shape. The name field is the flattened
// namespace-name form; the namespace itself never contains a dash, so the
// first dash is the split point.
type manifestEntry struct {
	Name    string  `yaml:"name"`
	Version Version `yaml:"version"`
	Enabled bool    `yaml:"enabled"`
}

// ParseManifest decodes a mods.yml payload into its ordered mod list.
func ParseManifest(data []byte) ([]Mod, error) {
	var entries []manifestEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestParse, "failed to parse profile manifest")
	}

	mods := make([]Mod, 0, len(entries))
	for i, e := range entries {
		namespace, name, found := strings.Cut(e.Name, "-")
		if !found || namespace == "" || name == "" {
			return nil, errors.Newf(errors.ErrManifestParse,
				"manifest entry %d has malformed package name %q", i, e.Name)
		}
		mods = append(mods, Mod{
			Namespace: namespace,
			Name:      name,
			Version:   e.Version,
			Enabled:   e.Enabled,
		})
	}
	return mods, nil
}

// Filter returns the mods to install as generic packages: disabled entries
// and the plugin-loader package (installed separately, never as a mod) are
// dropped. Order is preserved.
func Filter(mods []Mod, loaderPackage string) []Mod {
	loaderDir := strings.ReplaceAll(loaderPackage, "/", "-")

	kept := make([]Mod, 0, len(mods))
	for _, m := range mods {
		if !m.Enabled {
			continue
		}
		if m.FullName() == loaderPackage || m.DirName() == loaderDir {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}
