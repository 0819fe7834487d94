package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/giantswarm/brix-meter/internal/runner"
	"github.com/giantswarm/brix-meter/internal/scorer"
	"github.com/giantswarm/brix-meter/internal/session"
)

func newScoreCmd() *cobra.Command {
	var (
		templateName string
		inputFile    string
		outputDir    string
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "score [label...]",
		Short: "Score one or more labels",
		Long: `Score food names or described actions. Each label is sent to the model with
the selected template and the reply is classified into a tier.

A single label is printed directly. Several labels (as arguments or via --input, one
per line) are scored as a batch run; with --output-dir the run is also written to
<output-dir>/<run-id>/resultset.json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			labels := args
			if inputFile != "" {
				fromFile, err := runner.ReadLabels(inputFile)
				if err != nil {
					return err
				}
				labels = append(labels, fromFile...)
			}
			if len(labels) == 0 {
				return fmt.Errorf("no labels given: pass them as arguments or via --input")
			}

			cfg, err := loadAppConfig()
			if err != nil {
				return err
			}
			svc, _, err := newServiceFromConfig()
			if err != nil {
				return err
			}
			conn := scorer.Connection{APIKey: cfg.APIKey}

			out := cmd.OutOrStdout()

			if len(labels) == 1 && outputDir == "" {
				result := svc.Score(cmd.Context(), session.ScoreInput{
					Text:         labels[0],
					TemplateName: templateName,
					Connection:   conn,
				})
				if asJSON {
					return writeJSON(out, result)
				}
				printResult(cmd, labels[0], result)
				return nil
			}

			r := runner.NewRunner(svc, conn, outputDir)
			if !asJSON {
				r.SetProgressFunc(func(label string, idx, total int) {
					fmt.Fprintf(cmd.ErrOrStderr(), "\r  Scoring %d/%d...", idx, total)
				})
			}

			run, err := r.Run(cmd.Context(), templateName, labels)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(out, run)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "\n\n")
			for _, lr := range run.Results {
				printResult(cmd, lr.Label, lr.Result)
			}
			fmt.Fprintf(out, "\nScored: %d, failed: %d\n", run.Summary.Scored, run.Summary.Failed)
			if run.Path != "" {
				fmt.Fprintf(out, "Results written to: %s\n", run.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&templateName, "template", "t", "", "Template name (default: built-in default template)")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "File with one label per line")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for batch run results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}

func printResult(cmd *cobra.Command, label string, r scorer.Result) {
	out := cmd.OutOrStdout()
	if !r.OK() {
		fmt.Fprintf(out, "%s: %s\n  %s\n", label, r.Tier.Label(), r.Message)
		return
	}
	fmt.Fprintf(out, "%s: %s (%s)\n", label, r.RawReply, r.Tier.Label())
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, strings.TrimSpace(string(data)))
	return err
}
