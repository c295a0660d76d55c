// Package config normalizes the installer's environment inputs into an
// immutable Install record. Configuration is layered: embedded TOML defaults
// first, then the documented environment variables on top. The record is
// built once at startup and passed read-only to every stage.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/gameserverkit/gsinstall/pkg/errors"
	"github.com/gameserverkit/gsinstall/pkg/logging"
)

// envKeys maps the documented environment variable names onto config keys.
// Variables outside this table are ignored.
var envKeys = map[string]string{
	"STEAM_USER":      "steam.user",
	"STEAM_PASS":      "steam.pass",
	"STEAM_AUTH":      "steam.auth",
	"APP_ID":          "app.id",
	"BETA_ID":         "app.beta_id",
	"BETA_PASSWORD":   "app.beta_password",
	"WINDOWS_INSTALL": "app.windows",
	"EXTRA_FLAGS":     "app.extra_flags",
	"VALIDATE":        "app.validate",
	"INSTALL_DIR":     "app.install_dir",
	"STEAMCMD_DIR":    "steamcmd.dir",
	"PROFILE_CODE":    "profile.code",
	"FORCE_OVERWRITE": "profile.overwrite",
	"REGISTRY_URL":    "registry.base_url",
	"LOADER_PACKAGE":  "registry.loader_package",
}

// Install is the normalized, immutable configuration snapshot for one run.
type Install struct {
	// Credentials. Anonymous is true when either Username or Password is
	// missing; in that case GuardToken is always empty, whatever was supplied.
	Username   string
	Password   string
	GuardToken string
	Anonymous  bool

	// Application selection for the distribution tool.
	AppID           string
	BetaID          string
	BetaPassword    string
	WindowsPlatform bool
	ExtraFlags      []string
	Validate        bool

	// Filesystem layout.
	InstallDir  string
	SteamcmdDir string

	// Mod profile.
	ProfileCode string
	Overwrite   bool

	// Package registry.
	RegistryURL   string
	LoaderPackage string

	// Login probe behavior.
	ProbeTimeout time.Duration
	GuardPhrases []string

	// RecoveryPath is where the second-factor instructions are written on
	// a halted run. Its existence is the external signal of the halt.
	RecoveryPath string
}

// Load builds the Install record from the process environment layered over
// the embedded defaults.
func Load() (*Install, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	cb := func(s string) string { return envKeys[s] }
	if err := k.Load(env.Provider("", ".", cb), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	return fromKoanf(k)
}

// FromVars builds the Install record from an explicit variable mapping
// instead of the process environment. Absent keys take the same defaults.
func FromVars(vars map[string]string) (*Install, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	mapped := make(map[string]interface{})
	for name, value := range vars {
		if key, ok := envKeys[name]; ok && value != "" {
			mapped[key] = value
		}
	}
	if err := k.Load(confmap.Provider(mapped, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load variables")
	}

	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Install, error) {
	log := logging.GetLogger("config")

	cfg := &Install{
		Username:        strings.TrimSpace(k.String("steam.user")),
		Password:        k.String("steam.pass"),
		GuardToken:      strings.TrimSpace(k.String("steam.auth")),
		AppID:           strings.TrimSpace(k.String("app.id")),
		BetaID:          strings.TrimSpace(k.String("app.beta_id")),
		BetaPassword:    k.String("app.beta_password"),
		WindowsPlatform: truthy(k.String("app.windows")),
		ExtraFlags:      strings.Fields(k.String("app.extra_flags")),
		Validate:        truthy(k.String("app.validate")),
		InstallDir:      k.String("app.install_dir"),
		SteamcmdDir:     k.String("steamcmd.dir"),
		ProfileCode:     strings.TrimSpace(k.String("profile.code")),
		Overwrite:       truthy(k.String("profile.overwrite")),
		RegistryURL:     strings.TrimRight(k.String("registry.base_url"), "/"),
		LoaderPackage:   k.String("registry.loader_package"),
		ProbeTimeout:    time.Duration(k.Int("steamcmd.probe_timeout_secs")) * time.Second,
		GuardPhrases:    k.Strings("steamcmd.guard_phrases"),
	}

	// Missing credentials force the anonymous path. A stray second-factor
	// token must never leak into an anonymous login.
	if cfg.Username == "" || cfg.Password == "" {
		cfg.Anonymous = true
		cfg.GuardToken = ""
	}

	if cfg.AppID == "" {
		return nil, errors.New(errors.ErrConfigValid, "application id resolved to empty")
	}
	if cfg.InstallDir == "" {
		return nil, errors.New(errors.ErrConfigValid, "install directory resolved to empty")
	}

	cfg.RecoveryPath = filepath.Join(cfg.InstallDir, k.String("steamcmd.recovery_file"))

	log.Debug().
		Bool("anonymous", cfg.Anonymous).
		Str("appID", cfg.AppID).
		Str("installDir", cfg.InstallDir).
		Bool("profile", cfg.ProfileCode != "").
		Msg("Configuration normalized")

	return cfg, nil
}

// truthy implements the boolean policy for flag-like variables: only "1" and
// "true" count, anything else is false rather than an error.
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true":
		return true
	}
	return false
}

// LoaderParts splits the configured loader package identifier into its
// namespace and name.
func (c *Install) LoaderParts() (namespace, name string) {
	namespace, name, _ = strings.Cut(c.LoaderPackage, "/")
	return namespace, name
}
