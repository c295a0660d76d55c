package config

import (
	toml "github.com/pelletier/go-toml/v2"

	"github.com/gameserverkit/gsinstall/pkg/errors"
)

// renderView is the TOML shape of Render. Secrets are reduced to presence
// booleans so the output is safe to paste into a support ticket.
type renderView struct {
	App struct {
		ID         string   `toml:"id"`
		InstallDir string   `toml:"install_dir"`
		BetaID     string   `toml:"beta_id,omitempty"`
		Windows    bool     `toml:"windows"`
		Validate   bool     `toml:"validate"`
		ExtraFlags []string `toml:"extra_flags,omitempty"`
	} `toml:"app"`
	Steam struct {
		Anonymous   bool `toml:"anonymous"`
		HasUser     bool `toml:"has_user"`
		HasPassword bool `toml:"has_password"`
		HasToken    bool `toml:"has_token"`
	} `toml:"steam"`
	Profile struct {
		Code      string `toml:"code,omitempty"`
		Overwrite bool   `toml:"overwrite"`
	} `toml:"profile"`
	Registry struct {
		BaseURL       string `toml:"base_url"`
		LoaderPackage string `toml:"loader_package"`
	} `toml:"registry"`
}

// Render returns the effective configuration as TOML with credentials
// redacted, for the config inspection command.
func Render(cfg *Install) (string, error) {
	var v renderView
	v.App.ID = cfg.AppID
	v.App.InstallDir = cfg.InstallDir
	v.App.BetaID = cfg.BetaID
	v.App.Windows = cfg.WindowsPlatform
	v.App.Validate = cfg.Validate
	v.App.ExtraFlags = cfg.ExtraFlags
	v.Steam.Anonymous = cfg.Anonymous
	v.Steam.HasUser = cfg.Username != ""
	v.Steam.HasPassword = cfg.Password != ""
	v.Steam.HasToken = cfg.GuardToken != ""
	v.Profile.Code = cfg.ProfileCode
	v.Profile.Overwrite = cfg.Overwrite
	v.Registry.BaseURL = cfg.RegistryURL
	v.Registry.LoaderPackage = cfg.LoaderPackage

	out, err := toml.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return string(out), nil
}
