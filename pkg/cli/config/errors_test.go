package config_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lmx/pkg/cli/config"
)

func TestConfigErrors_SentinelIdentification(t *testing.T) {
	sentinels := []error{
		config.ErrConfigNotFound,
		config.ErrInvalidConfig,
		config.ErrInvalidBackend,
		config.ErrMissingOption,
		config.ErrMissingIcon,
		config.ErrMissingKeywords,
		config.ErrInvalidTitleKey,
	}

	for _, sentinel := range sentinels {
		t.Run(sentinel.Error(), func(t *testing.T) {
			wrapped := goerr.Wrap(sentinel, "outer", goerr.V(config.ConfigPathKey, "/tmp/lmx.toml"))
			gt.Bool(t, errors.Is(wrapped, sentinel)).True()

			for _, other := range sentinels {
				if other == sentinel {
					continue
				}
				gt.Bool(t, errors.Is(wrapped, other)).False()
			}
		})
	}
}

func TestConfigErrors_ContextValues(t *testing.T) {
	err := goerr.Wrap(config.ErrMissingIcon, "invalid icon rule",
		goerr.V(config.RuleGroupKey, "qbr_icons"),
		goerr.V(config.RuleIndexKey, 2))

	var ge *goerr.Error
	gt.Bool(t, errors.As(err, &ge)).True()
	values := ge.Values()
	gt.Value(t, values[config.RuleGroupKey]).Equal(any("qbr_icons"))
	gt.Value(t, values[config.RuleIndexKey]).Equal(any(2))
}
