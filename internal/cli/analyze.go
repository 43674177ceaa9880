package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/credence/internal/model"
)

var (
	analyzeText   string
	analyzeDomain string
	analyzeOut    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [url]",
	Short: "Analyze a single article and print its credibility report",
	Long: `Analyze runs the full pipeline once, synchronously, and prints the
credibility report as JSON.

Pass a URL to fetch and analyze a published article, "-" to read article
text from stdin, or --text to analyze pasted text (optionally with --domain
to credit the publisher).

Example:
  credence analyze https://www.reuters.com/world/some-article
  credence analyze - < article.txt
  credence analyze --text "$(cat article.txt)" --domain reuters.com
  credence analyze https://example.com/story --json report.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "analyze raw article text instead of a URL")
	analyzeCmd.Flags().StringVar(&analyzeDomain, "domain", "", "publisher domain for --text input")
	analyzeCmd.Flags().StringVar(&analyzeOut, "json", "", "also write the report to this path")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	input := model.AnalysisInput{Text: analyzeText, Domain: analyzeDomain}
	if len(args) == 1 {
		if args[0] == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			input.Text = string(data)
		} else {
			input.URL = args[0]
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	j, err := engine.Submit(input)
	if err != nil {
		return err
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Submitted request %s\n", j.ID)
	}

	snap, err := awaitResult(engine, j.ID, cfg.Analysis.JobTimeout)
	if err != nil {
		return err
	}
	if snap.Status == model.StatusError {
		return fmt.Errorf("analysis failed: %s", snap.Error.Error())
	}

	data, err := json.MarshalIndent(snap.Result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if analyzeOut != "" {
		if err := os.WriteFile(analyzeOut, data, 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Report written to %s\n", analyzeOut)
		}
	}

	fmt.Println(string(data))
	return nil
}

// awaitResult polls the job until it reaches a terminal state.
func awaitResult(engine interface {
	Poll(id string) (model.AnalysisJob, error)
}, id string, timeout time.Duration) (model.AnalysisJob, error) {
	deadline := time.Now().Add(timeout + 10*time.Second)
	for time.Now().Before(deadline) {
		snap, err := engine.Poll(id)
		if err != nil {
			return model.AnalysisJob{}, err
		}
		if snap.Status.Terminal() {
			return snap, nil
		}
		time.Sleep(250 * time.Millisecond)
	}
	return model.AnalysisJob{}, fmt.Errorf("analysis did not finish within %v", timeout)
}
