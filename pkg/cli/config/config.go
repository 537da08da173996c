package config

import (
	"errors"
	"io/fs"
	"maps"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/secmon-lab/lmx/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// AppConfig is the optional TOML file overriding how catalog cards are
// presented. Every field is optional; unset fields keep the built-in rules.
type AppConfig struct {
	DefaultIcon         string            `toml:"default_icon"`
	AssessmentTitles    map[string]string `toml:"assessment_titles"`
	AssessmentIcons     []IconRule        `toml:"assessment_icons"`
	AssessmentGradients []string          `toml:"assessment_gradients"`
	QBRIcons            []IconRule        `toml:"qbr_icons"`
	QBRGradients        []string          `toml:"qbr_gradients"`

	path string
}

// IconRule maps keywords found in a card subject to an icon
type IconRule struct {
	Keywords []string `toml:"keywords"`
	Icon     string   `toml:"icon"`
}

// Validate checks if the IconRule is valid
func (r *IconRule) Validate() error {
	if r.Icon == "" {
		return ErrMissingIcon
	}
	if len(r.Keywords) == 0 {
		return goerr.Wrap(ErrMissingKeywords, "invalid icon rule", goerr.V("icon", r.Icon))
	}
	return nil
}

func validateRules(group string, rules []IconRule) error {
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid icon rule",
				goerr.V(RuleGroupKey, group),
				goerr.V(RuleIndexKey, i))
		}
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	for key := range a.AssessmentTitles {
		if types.Slugify(key) != types.AssessmentID(key) {
			return goerr.Wrap(ErrInvalidTitleKey, "invalid assessment title override", goerr.V("key", key))
		}
	}
	if err := validateRules("assessment_icons", a.AssessmentIcons); err != nil {
		return err
	}
	if err := validateRules("qbr_icons", a.QBRIcons); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Presentation config file (TOML)",
			Sources:     cli.EnvVars("LMX_CONFIG"),
			Destination: &a.path,
		},
	}
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config file", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// Configure returns the presentation rules, loading the TOML file when
// --config is set
func (a *AppConfig) Configure() (*model.Presentation, error) {
	if a.path == "" {
		return model.DefaultPresentation(), nil
	}

	loaded, err := LoadAppConfiguration(a.path)
	if err != nil {
		return nil, err
	}
	logging.Default().Info("Loaded presentation config", "path", a.path)
	return loaded.ToPresentation(), nil
}

func toModelRules(rules []IconRule) []model.IconRule {
	out := make([]model.IconRule, len(rules))
	for i, r := range rules {
		out[i] = model.IconRule{Keywords: r.Keywords, Icon: r.Icon}
	}
	return out
}

// ToPresentation overlays the configured values on the built-in rules.
// Title overrides are merged; icon rules and gradients replace the defaults.
func (a *AppConfig) ToPresentation() *model.Presentation {
	p := model.DefaultPresentation()

	if a.DefaultIcon != "" {
		p.DefaultIcon = a.DefaultIcon
	}
	titles := make(map[types.AssessmentID]string, len(a.AssessmentTitles))
	for k, v := range a.AssessmentTitles {
		titles[types.AssessmentID(k)] = v
	}
	maps.Copy(p.AssessmentTitles, titles)

	if len(a.AssessmentIcons) > 0 {
		p.AssessmentIcons = toModelRules(a.AssessmentIcons)
	}
	if len(a.AssessmentGradients) > 0 {
		p.AssessmentGradients = a.AssessmentGradients
	}
	if len(a.QBRIcons) > 0 {
		p.QBRIcons = toModelRules(a.QBRIcons)
	}
	if len(a.QBRGradients) > 0 {
		p.QBRGradients = a.QBRGradients
	}
	return p
}
