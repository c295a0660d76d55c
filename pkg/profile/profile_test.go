package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameserverkit/gsinstall/pkg/errors"
)

const sampleManifest = `
- name: denikson-BepInExPack_Valheim
  version:
    major: 5
    minor: 4
    patch: 2202
  enabled: true
- name: ValheimModding-Jotunn
  version:
    major: 2
    minor: 20
    patch: 1
  enabled: true
- name: RandyKnapp-EquipmentAndQuickSlots
  version:
    major: 2
    minor: 1
    patch: 10
  enabled: false
`

func TestParseManifest(t *testing.T) {
	mods, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)
	require.Len(t, mods, 3)

	assert.Equal(t, "denikson", mods[0].Namespace)
	assert.Equal(t, "BepInExPack_Valheim", mods[0].Name)
	assert.Equal(t, "5.4.2202", mods[0].Version.String())
	assert.True(t, mods[0].Enabled)

	assert.Equal(t, "ValheimModding/Jotunn", mods[1].FullName())
	assert.Equal(t, "ValheimModding-Jotunn", mods[1].DirName())
	assert.Equal(t, "2.20.1", mods[1].Version.String())

	assert.False(t, mods[2].Enabled)
}

func TestParseManifest_NameWithExtraDashes(t *testing.T) {
	mods, err := ParseManifest([]byte(`
- name: RandyKnapp-Equipment-And-Quick-Slots
  version: {major: 1, minor: 0, patch: 0}
  enabled: true
`))
	require.NoError(t, err)
	require.Len(t, mods, 1)

	// Only the first dash separates namespace from name.
	assert.Equal(t, "RandyKnapp", mods[0].Namespace)
	assert.Equal(t, "Equipment-And-Quick-Slots", mods[0].Name)
}

func TestParseManifest_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", ":\n:::"},
		{"name without dash", "- name: nodash\n  enabled: true"},
		{"empty name", "- name: \"\"\n  enabled: true"},
		{"dash at start", "- name: \"-orphan\"\n  enabled: true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.data))
			assert.True(t, errors.IsErrorCode(err, errors.ErrManifestParse))
		})
	}
}

func TestFilter(t *testing.T) {
	mods, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)

	kept := Filter(mods, "denikson/BepInExPack_Valheim")

	// Loader filtered, disabled filtered, order preserved.
	require.Len(t, kept, 1)
	assert.Equal(t, "ValheimModding/Jotunn", kept[0].FullName())
}

func TestFilter_KeepsOrder(t *testing.T) {
	mods := []Mod{
		{Namespace: "a", Name: "one", Enabled: true},
		{Namespace: "b", Name: "two", Enabled: true},
		{Namespace: "c", Name: "three", Enabled: true},
	}

	kept := Filter(mods, "x/loader")
	require.Len(t, kept, 3)
	assert.Equal(t, "a/one", kept[0].FullName())
	assert.Equal(t, "b/two", kept[1].FullName())
	assert.Equal(t, "c/three", kept[2].FullName())
}
