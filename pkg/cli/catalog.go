package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/cli/config"
	"github.com/secmon-lab/lmx/pkg/usecase"
	"github.com/secmon-lab/lmx/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// catalogOptions is the flag set shared by every command that opens the
// catalog. Each command owns its own instance.
type catalogOptions struct {
	repo config.Repository
	app  config.AppConfig
}

func (o *catalogOptions) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, o.repo.Flags()...)
	flags = append(flags, o.app.Flags()...)
	return flags
}

// open builds the catalog and use cases. The returned function closes the
// catalog.
func (o *catalogOptions) open(ctx context.Context, opts ...usecase.Option) (*usecase.UseCases, func(), error) {
	presentation, err := o.app.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load presentation config")
	}

	catalog, err := o.repo.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}

	opts = append([]usecase.Option{usecase.WithPresentation(presentation)}, opts...)
	uc := usecase.New(catalog, opts...)
	return uc, func() { safe.Close(ctx, catalog) }, nil
}

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgCyan, color.Bold)
	faintColor   = color.New(color.Faint)
)

func writerOf(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return color.Output
}

func printSuccess(w io.Writer, format string, args ...any) {
	_, _ = successColor.Fprint(w, "✔ ")
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

func printWarn(w io.Writer, format string, args ...any) {
	_, _ = warnColor.Fprintf(w, "⚠ "+format+"\n", args...)
}

func printError(w io.Writer, format string, args ...any) {
	_, _ = errorColor.Fprintf(w, "✘ "+format+"\n", args...)
}

// printTable writes a header line and tab aligned rows
func printTable(w io.Writer, header []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, h := range header {
		if i > 0 {
			_, _ = fmt.Fprint(tw, "\t")
		}
		_, _ = headerColor.Fprint(tw, h)
	}
	_, _ = fmt.Fprintln(tw)

	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				_, _ = fmt.Fprint(tw, "\t")
			}
			_, _ = fmt.Fprint(tw, cell)
		}
		_, _ = fmt.Fprintln(tw)
	}
	_ = tw.Flush()
}
