package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/nlquery/pkg/app"
	"github.com/malbeclabs/nlquery/pkg/pipeline"
	"github.com/malbeclabs/nlquery/pkg/report"
)

// defaultBatchQuestions is the smoke-test set run when no file is given.
var defaultBatchQuestions = []string{
	"Show all elements in the ground floor",
	"How many smoke detectors are needed in total?",
	"List all electrical elements",
	"What fire safety elements are in the basement?",
}

type BatchCmd struct {
	concurrency int
	json        bool
	maxRows     int
	parquetPath string
}

func NewBatchCmd() *BatchCmd {
	return &BatchCmd{}
}

func (c *BatchCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "Answer questions from a file, one per line ('-' reads stdin)",
		Long: "Answer questions from a file, one per line. Blank lines and lines starting with '#' are skipped.\n" +
			"Without a file a built-in set of sample questions is run.",
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(func(ctx context.Context, log *slog.Logger, a *app.App, cmd *cobra.Command, args []string) error {
			questions := defaultBatchQuestions
			if len(args) == 1 {
				var err error
				questions, err = readQuestions(args[0], cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			log.Debug("cli: running batch", "questions", len(questions), "concurrency", c.concurrency)

			outcomes := a.Pipeline.RunBatch(ctx, questions, c.concurrency)
			if c.parquetPath != "" {
				if err := writeReport(c.parquetPath, outcomes); err != nil {
					return err
				}
				log.Info("cli: wrote batch report", "path", c.parquetPath, "records", len(outcomes))
			}
			if c.json {
				return writeJSON(cmd.OutOrStdout(), outcomes)
			}

			w := cmd.OutOrStdout()
			var failed int
			for i, out := range outcomes {
				fmt.Fprintf(w, "%d. %s\n", i+1, out.NaturalQuery)
				fmt.Fprintln(w, strings.Repeat("-", 60))
				renderOutcome(w, out, c.maxRows)
				fmt.Fprintln(w)
				if !out.Success {
					failed++
				}
			}
			fmt.Fprintf(w, "%d questions, %d answered, %d failed\n", len(outcomes), len(outcomes)-failed, failed)
			return nil
		}),
	}
	cmd.Flags().IntVarP(&c.concurrency, "concurrency", "c", 4, "Number of questions answered concurrently")
	cmd.Flags().BoolVar(&c.json, "json", false, "Print the outcomes as a JSON array")
	cmd.Flags().IntVar(&c.maxRows, "max-rows", 5, "Maximum result rows to print per question (0 for all)")
	cmd.Flags().StringVar(&c.parquetPath, "parquet", "", "Also write one record per question to this Parquet file")
	return cmd
}

func writeReport(path string, outcomes []pipeline.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	if _, err := report.WriteParquet(f, outcomes); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readQuestions(path string, stdin io.Reader) ([]string, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open questions file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return parseQuestions(r)
}

func parseQuestions(r io.Reader) ([]string, error) {
	var questions []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		questions = append(questions, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read questions: %w", err)
	}
	return questions, nil
}
