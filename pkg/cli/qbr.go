package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdQBR() *cli.Command {
	return &cli.Command{
		Name:  "qbr",
		Usage: "Manage QBR deliverables",
		Commands: []*cli.Command{
			cmdQBRList(),
			cmdQBRAdd(),
			cmdQBRRemove(),
		},
	}
}

func cmdQBRList() *cli.Command {
	var opts catalogOptions

	return &cli.Command{
		Name:  "list",
		Usage: "List registered QBR reports",
		Flags: opts.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer closer()

			cards, err := uc.QBR.ListReports(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list QBR reports")
			}

			w := writerOf(c)
			if len(cards) == 0 {
				printWarn(w, "No QBR reports registered")
				return nil
			}

			rows := make([][]string, 0, len(cards))
			for _, card := range cards {
				rows = append(rows, []string{string(card.ID), card.Company, string(card.Type), card.Title})
			}
			printTable(w, []string{"ID", "COMPANY", "TYPE", "TITLE"}, rows)
			return nil
		},
	}
}

func cmdQBRAdd() *cli.Command {
	var opts catalogOptions
	var company string
	var reportType string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "company",
			Usage:       "Company or product the report covers",
			Required:    true,
			Destination: &company,
		},
		&cli.StringFlag{
			Name:        "type",
			Usage:       "Report type (individual, aggregate)",
			Value:       string(types.ReportTypeIndividual),
			Destination: &reportType,
		},
	}
	flags = append(flags, opts.Flags()...)

	return &cli.Command{
		Name:      "add",
		Usage:     "Create a QBR report template and register it",
		ArgsUsage: "<report id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := types.ReportID(c.Args().First())
			if id == "" {
				return goerr.New("report ID is required")
			}

			uc, closer, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer closer()

			cfg, err := uc.QBR.AddReport(ctx, id, company, reportType)
			if err != nil {
				return goerr.Wrap(err, "failed to add QBR report", goerr.V("report_id", id))
			}

			w := writerOf(c)
			printSuccess(w, "Added QBR report %s", cfg.ID)
			_, _ = faintColor.Fprintf(w, "  title: %s\n  template: %s\n", cfg.Title, cfg.JSONFile)
			return nil
		},
	}
}

func cmdQBRRemove() *cli.Command {
	var opts catalogOptions

	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Unregister a QBR report and delete its files",
		ArgsUsage: "<report id>",
		Flags:     opts.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := types.ReportID(c.Args().First())
			if id == "" {
				return goerr.New("report ID is required")
			}

			uc, closer, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer closer()

			cfg, err := uc.QBR.RemoveReport(ctx, id)
			if err != nil {
				return goerr.Wrap(err, "failed to remove QBR report", goerr.V("report_id", id))
			}

			printSuccess(writerOf(c), "Removed QBR report %s", cfg.ID)
			return nil
		},
	}
}
