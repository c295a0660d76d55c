package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromVars_Defaults(t *testing.T) {
	cfg, err := FromVars(nil)
	require.NoError(t, err)

	assert.Equal(t, "896660", cfg.AppID)
	assert.Equal(t, "/mnt/server", cfg.InstallDir)
	assert.Equal(t, "/opt/steamcmd", cfg.SteamcmdDir)
	assert.Equal(t, "https://thunderstore.io", cfg.RegistryURL)
	assert.Equal(t, "denikson/BepInExPack_Valheim", cfg.LoaderPackage)
	assert.Equal(t, 30*time.Second, cfg.ProbeTimeout)
	assert.True(t, cfg.Validate)
	assert.False(t, cfg.Overwrite)
	assert.Empty(t, cfg.ProfileCode)
	assert.Equal(t, filepath.Join("/mnt/server", "steam-guard-instructions.txt"), cfg.RecoveryPath)
}

func TestFromVars_AnonymousMode(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"no credentials at all", map[string]string{}},
		{"user without password", map[string]string{"STEAM_USER": "gabe"}},
		{"password without user", map[string]string{"STEAM_PASS": "hunter2"}},
		{
			"token supplied without credentials",
			map[string]string{"STEAM_AUTH": "ABC123"},
		},
		{
			"token supplied with only a user",
			map[string]string{"STEAM_USER": "gabe", "STEAM_AUTH": "ABC123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromVars(tt.vars)
			require.NoError(t, err)

			assert.True(t, cfg.Anonymous)
			// Anonymous mode must never carry a second-factor token.
			assert.Empty(t, cfg.GuardToken)
		})
	}
}

func TestFromVars_AuthenticatedMode(t *testing.T) {
	cfg, err := FromVars(map[string]string{
		"STEAM_USER": "gabe",
		"STEAM_PASS": "hunter2",
		"STEAM_AUTH": "ABC123",
	})
	require.NoError(t, err)

	assert.False(t, cfg.Anonymous)
	assert.Equal(t, "gabe", cfg.Username)
	assert.Equal(t, "hunter2", cfg.Password)
	assert.Equal(t, "ABC123", cfg.GuardToken)
}

func TestFromVars_BooleanPolicy(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"0", false},
		{"yes", false},
		{"on", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg, err := FromVars(map[string]string{"FORCE_OVERWRITE": tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Overwrite)
		})
	}
}

func TestFromVars_Overrides(t *testing.T) {
	cfg, err := FromVars(map[string]string{
		"APP_ID":          "1829350",
		"INSTALL_DIR":     "/srv/game",
		"WINDOWS_INSTALL": "1",
		"BETA_ID":         "public-test",
		"BETA_PASSWORD":   "sekrit",
		"EXTRA_FLAGS":     "-option one -option two",
		"REGISTRY_URL":    "https://registry.example.com/",
		"PROFILE_CODE":    "0189f2c1",
	})
	require.NoError(t, err)

	assert.Equal(t, "1829350", cfg.AppID)
	assert.Equal(t, "/srv/game", cfg.InstallDir)
	assert.True(t, cfg.WindowsPlatform)
	assert.Equal(t, "public-test", cfg.BetaID)
	assert.Equal(t, "sekrit", cfg.BetaPassword)
	assert.Equal(t, []string{"-option", "one", "-option", "two"}, cfg.ExtraFlags)
	// Trailing slash is trimmed so URL joining stays predictable.
	assert.Equal(t, "https://registry.example.com", cfg.RegistryURL)
	assert.Equal(t, "0189f2c1", cfg.ProfileCode)
	assert.Equal(t, filepath.Join("/srv/game", "steam-guard-instructions.txt"), cfg.RecoveryPath)
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("STEAM_USER", "gabe")
	t.Setenv("STEAM_PASS", "hunter2")
	t.Setenv("APP_ID", "424242")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Anonymous)
	assert.Equal(t, "424242", cfg.AppID)
}

func TestLoaderParts(t *testing.T) {
	cfg, err := FromVars(map[string]string{"LOADER_PACKAGE": "bbepis/BepInExPack"})
	require.NoError(t, err)

	ns, name := cfg.LoaderParts()
	assert.Equal(t, "bbepis", ns)
	assert.Equal(t, "BepInExPack", name)
}

func TestRender_RedactsSecrets(t *testing.T) {
	cfg, err := FromVars(map[string]string{
		"STEAM_USER": "gabe",
		"STEAM_PASS": "hunter2",
	})
	require.NoError(t, err)

	out, err := Render(cfg)
	require.NoError(t, err)

	assert.NotContains(t, out, "gabe")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "has_user = true")
	assert.Contains(t, out, "has_password = true")
	assert.True(t, strings.Contains(out, "[registry]"))
}
