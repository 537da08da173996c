package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound  = goerr.New("configuration file not found")
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrInvalidBackend  = goerr.New("invalid storage backend")
	ErrMissingOption   = goerr.New("required option is missing")
	ErrMissingIcon     = goerr.New("icon rule requires an icon")
	ErrMissingKeywords = goerr.New("icon rule requires at least one keyword")
	ErrInvalidTitleKey = goerr.New("title override key must be a kebab-case assessment ID")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	RuleIndexKey  = "rule_index"
	RuleGroupKey  = "rule_group"
	FlagKey       = "flag"
)
