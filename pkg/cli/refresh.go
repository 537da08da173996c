package cli

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/cli/config"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/secmon-lab/lmx/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdRefresh() *cli.Command {
	return &cli.Command{
		Name:  "refresh",
		Usage: "Refresh a vendor QBR report from live data",
		Commands: []*cli.Command{
			cmdRefreshCork(),
			cmdRefreshITGlue(),
		},
	}
}

func printCorkClients(w io.Writer, list *model.CorkClientList) {
	rows := make([][]string, 0, len(list.Clients))
	for _, client := range list.Clients {
		rows = append(rows, []string{client.UUID, client.Name, client.Status})
	}
	printTable(w, []string{"UUID", "NAME", "STATUS"}, rows)
}

func printITGlueClients(w io.Writer, list *model.ITGlueClientList) {
	rows := make([][]string, 0, len(list.Clients))
	for _, client := range list.Clients {
		rows = append(rows, []string{client.UUID, client.Name})
	}
	printTable(w, []string{"ID", "NAME"}, rows)
}

func printRefreshResult(w io.Writer, vendor types.Vendor, result *model.RefreshResult) {
	printSuccess(w, "%s", result.Message)
	if result.ClientName != "" {
		_, _ = faintColor.Fprintf(w, "  client: %s\n", result.ClientName)
	}
	_, _ = faintColor.Fprintf(w, "  report: %s\n", vendor.TemplateReportID())
}

func cmdRefreshCork() *cli.Command {
	var opts catalogOptions
	var corkCfg config.Cork
	var slackCfg config.Slack

	var flags []cli.Flag
	flags = append(flags, opts.Flags()...)
	flags = append(flags, corkCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:      "cork",
		Usage:     "Refresh the Cork QBR report; lists clients when no UUID is given",
		ArgsUsage: "[client uuid]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			svc, err := corkCfg.Configure()
			if err != nil {
				return err
			}
			notifier, err := slackCfg.Configure()
			if err != nil {
				return err
			}

			uc, closer, err := opts.open(ctx, usecase.WithCork(svc), usecase.WithNotifier(notifier))
			if err != nil {
				return err
			}
			defer closer()

			w := writerOf(c)
			clientUUID := c.Args().First()
			if clientUUID == "" {
				list, err := uc.Refresh.ListCorkClients(ctx)
				if err != nil {
					return err
				}
				printCorkClients(w, list)
				return nil
			}

			result, err := uc.Refresh.RefreshCork(ctx, clientUUID)
			if err != nil {
				return goerr.Wrap(err, "Cork refresh failed", goerr.V("client_uuid", clientUUID))
			}
			printRefreshResult(w, types.VendorCork, result)
			return nil
		},
	}
}

func cmdRefreshITGlue() *cli.Command {
	var opts catalogOptions
	var itglueCfg config.ITGlue
	var slackCfg config.Slack

	var flags []cli.Flag
	flags = append(flags, opts.Flags()...)
	flags = append(flags, itglueCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:      "itglue",
		Usage:     "Refresh the IT Glue QBR report; lists organizations when no ID is given",
		ArgsUsage: "[organization id]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			svc, err := itglueCfg.Configure()
			if err != nil {
				return err
			}
			notifier, err := slackCfg.Configure()
			if err != nil {
				return err
			}

			uc, closer, err := opts.open(ctx, usecase.WithITGlue(svc), usecase.WithNotifier(notifier))
			if err != nil {
				return err
			}
			defer closer()

			w := writerOf(c)
			orgID := c.Args().First()
			if orgID == "" {
				list, err := uc.Refresh.ListITGlueClients(ctx)
				if err != nil {
					return err
				}
				printITGlueClients(w, list)
				return nil
			}

			result, err := uc.Refresh.RefreshITGlue(ctx, orgID)
			if err != nil {
				return goerr.Wrap(err, "IT Glue refresh failed", goerr.V("organization_id", orgID))
			}
			printRefreshResult(w, types.VendorITGlue, result)
			return nil
		},
	}
}
