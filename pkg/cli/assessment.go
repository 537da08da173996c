package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lmx/pkg/domain/model"
	"github.com/secmon-lab/lmx/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

func cmdAssessment() *cli.Command {
	return &cli.Command{
		Name:    "assessment",
		Aliases: []string{"a"},
		Usage:   "Manage the assessment library",
		Commands: []*cli.Command{
			cmdAssessmentList(),
			cmdAssessmentAdd(),
			cmdAssessmentRemove(),
			cmdAssessmentRun(),
		},
	}
}

func cmdAssessmentList() *cli.Command {
	var opts catalogOptions

	return &cli.Command{
		Name:  "list",
		Usage: "List registered assessments",
		Flags: opts.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer closer()

			cards, err := uc.Assessment.ListAssessments(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list assessments")
			}

			w := writerOf(c)
			if len(cards) == 0 {
				printWarn(w, "No assessments registered")
				return nil
			}

			rows := make([][]string, 0, len(cards))
			for _, card := range cards {
				rows = append(rows, []string{string(card.ID), card.Title, card.Status})
			}
			printTable(w, []string{"ID", "TITLE", "STATUS"}, rows)
			return nil
		},
	}
}

func cmdAssessmentAdd() *cli.Command {
	var opts catalogOptions

	return &cli.Command{
		Name:      "add",
		Usage:     "Create a starter assessment and register it",
		ArgsUsage: "<name>",
		Flags:     opts.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			name := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(name) == "" {
				return goerr.New("assessment name is required")
			}

			uc, closer, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer closer()

			id, cfg, err := uc.Assessment.AddAssessment(ctx, name)
			if err != nil {
				return goerr.Wrap(err, "failed to add assessment", goerr.V("name", name))
			}

			w := writerOf(c)
			printSuccess(w, "Added assessment %s", id)
			_, _ = faintColor.Fprintf(w, "  template: %s\n", cfg.JSONFile)
			return nil
		},
	}
}

func cmdAssessmentRemove() *cli.Command {
	var opts catalogOptions

	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Unregister an assessment and delete its template",
		ArgsUsage: "<name or id>",
		Flags:     opts.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			name := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(name) == "" {
				return goerr.New("assessment name or ID is required")
			}

			uc, closer, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer closer()

			id, err := uc.Assessment.RemoveAssessment(ctx, name)
			if err != nil {
				return goerr.Wrap(err, "failed to remove assessment", goerr.V("name", name))
			}

			printSuccess(writerOf(c), "Removed assessment %s", id)
			return nil
		},
	}
}

// readAnswers accepts either {"answers": {...}} or a bare question -> label map
func readAnswers(path string) (model.AnswerSheet, error) {
	// #nosec G304 - path is provided by CLI flag
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read answers file", goerr.V("path", path))
	}

	var wrapped struct {
		Answers model.AnswerSheet `json:"answers"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Answers) > 0 {
		return wrapped.Answers, nil
	}

	var answers model.AnswerSheet
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, goerr.Wrap(err, "failed to parse answers file", goerr.V("path", path))
	}
	return answers, nil
}

func printReport(w io.Writer, report *model.AssessmentReport) {
	_, _ = headerColor.Fprintln(w, report.AssessmentInfo.Title)
	_, _ = fmt.Fprintf(w, "Overall score: %d%% (%s risk)\n", report.Summary.OverallScore, report.Summary.RiskLevel)
	_, _ = fmt.Fprintf(w, "Answered: %d/%d questions\n\n", report.Summary.AnsweredQuestions, report.Summary.TotalQuestions)

	rows := make([][]string, 0, len(report.CategoryBreakdown))
	for _, cat := range report.CategoryBreakdown {
		rows = append(rows, []string{cat.Title, strconv.Itoa(cat.Score) + "%", string(cat.RiskLevel)})
	}
	printTable(w, []string{"CATEGORY", "SCORE", "RISK"}, rows)

	if len(report.Recommendations) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = headerColor.Fprintln(w, "Recommendations")
		for _, rec := range report.Recommendations {
			_, _ = fmt.Fprintf(w, "  [%s] %s: %s\n", rec.Priority, rec.Category, rec.Issue)
		}
	}
}

func cmdAssessmentRun() *cli.Command {
	var opts catalogOptions
	var answersPath string
	var save bool
	var asJSON bool

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "answers",
			Usage:       "JSON file mapping question titles to scoring labels",
			Required:    true,
			Destination: &answersPath,
		},
		&cli.BoolFlag{
			Name:        "save",
			Usage:       "Persist the scored result",
			Destination: &save,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "Print the full report as JSON",
			Destination: &asJSON,
		},
	}
	flags = append(flags, opts.Flags()...)

	return &cli.Command{
		Name:      "run",
		Usage:     "Score an answer sheet against an assessment",
		ArgsUsage: "<name or id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			name := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(name) == "" {
				return goerr.New("assessment name or ID is required")
			}

			answers, err := readAnswers(answersPath)
			if err != nil {
				return err
			}

			uc, closer, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer closer()

			id, err := uc.Assessment.ResolveAssessmentID(ctx, name)
			if err != nil {
				return goerr.Wrap(err, "failed to resolve assessment", goerr.V("name", name))
			}

			var report *model.AssessmentReport
			var resultID types.ResultID
			if save {
				result, err := uc.Assessment.SubmitAssessment(ctx, id, answers)
				if err != nil {
					return goerr.Wrap(err, "failed to submit assessment", goerr.V("assessment_id", id))
				}
				report, resultID = result.Report, result.ID
			} else {
				report, err = uc.Assessment.ScoreAssessment(ctx, id, answers)
				if err != nil {
					return goerr.Wrap(err, "failed to score assessment", goerr.V("assessment_id", id))
				}
			}

			w := writerOf(c)
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return goerr.Wrap(err, "failed to write report")
				}
			} else {
				printReport(w, report)
			}

			if resultID != "" {
				printSuccess(w, "Saved result %s", resultID)
			}
			return nil
		},
	}
}
