package cli

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/usecase"
	"github.com/secmon-lab/lmx/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// ErrValidationFailed is returned by the validate command when the catalog
// has issues
var ErrValidationFailed = goerr.New("catalog validation found issues")

func printIssues(w io.Writer, result *usecase.ValidationResult) {
	for _, issue := range result.Issues {
		subject := issue.ID
		if subject == "" {
			subject = issue.JSONFile
		} else if issue.JSONFile != "" {
			subject += " (" + issue.JSONFile + ")"
		}
		printError(w, "[%s] %s: %s", issue.Catalog, subject, issue.Message)
	}
}

func cmdValidate() *cli.Command {
	var opts catalogOptions

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the presentation config and check catalog consistency",
		Flags:   opts.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			// Loading the config validates it
			uc, closer, err := opts.open(ctx)
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			defer closer()
			logger.Info("Configuration validation passed")

			result, err := uc.Validate(ctx)
			if err != nil {
				return goerr.Wrap(err, "catalog consistency check failed")
			}

			w := writerOf(c)
			if result.HasIssues() {
				for _, issue := range result.Issues {
					logger.Warn("Catalog consistency issue found",
						"catalog", issue.Catalog,
						"id", issue.ID,
						"json_file", issue.JSONFile,
						"message", issue.Message,
					)
				}
				printIssues(w, result)
				return goerr.Wrap(ErrValidationFailed, "validation failed", goerr.V("issues", len(result.Issues)))
			}

			printSuccess(w, "Catalog is consistent")
			return nil
		},
	}
}
