package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/service/cork"
	"github.com/secmon-lab/lmx/pkg/service/itglue"
	"github.com/urfave/cli/v3"
)

// Cork holds the Cork API credentials
type Cork struct {
	apiKey  string
	baseURL string
}

func (x *Cork) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cork-api-key",
			Usage:       "Cork API key (enables Cork QBR refresh)",
			Category:    "Cork",
			Destination: &x.apiKey,
			Sources:     cli.EnvVars("LMX_CORK_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "cork-base-url",
			Usage:       "Cork API base URL",
			Category:    "Cork",
			Value:       cork.DefaultBaseURL,
			Destination: &x.baseURL,
			Sources:     cli.EnvVars("LMX_CORK_BASE_URL"),
		},
	}
}

func (x Cork) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("api-key.len", len(x.apiKey)),
		slog.String("base-url", x.baseURL),
	)
}

// IsConfigured reports whether an API key was given
func (x *Cork) IsConfigured() bool {
	return x.apiKey != ""
}

// Configure returns the Cork client, or nil when no API key is set
func (x *Cork) Configure() (cork.Service, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	svc, err := cork.New(x.apiKey, cork.WithBaseURL(x.baseURL))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize Cork client")
	}
	return svc, nil
}

// ITGlue holds the IT Glue API credentials
type ITGlue struct {
	apiKey  string
	baseURL string
}

func (x *ITGlue) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "itglue-api-key",
			Usage:       "IT Glue API key (enables IT Glue QBR refresh)",
			Category:    "IT Glue",
			Destination: &x.apiKey,
			Sources:     cli.EnvVars("LMX_ITGLUE_API_KEY"),
		},
		&cli.StringFlag{
			Name:        "itglue-base-url",
			Usage:       "IT Glue API base URL",
			Category:    "IT Glue",
			Value:       itglue.DefaultBaseURL,
			Destination: &x.baseURL,
			Sources:     cli.EnvVars("LMX_ITGLUE_BASE_URL"),
		},
	}
}

func (x ITGlue) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("api-key.len", len(x.apiKey)),
		slog.String("base-url", x.baseURL),
	)
}

func (x *ITGlue) IsConfigured() bool {
	return x.apiKey != ""
}

// Configure returns the IT Glue client, or nil when no API key is set
func (x *ITGlue) Configure() (itglue.Service, error) {
	if !x.IsConfigured() {
		return nil, nil
	}
	svc, err := itglue.New(x.apiKey, itglue.WithBaseURL(x.baseURL))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize IT Glue client")
	}
	return svc, nil
}
