package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pdfqa/internal/backend"
	"github.com/ziadkadry99/pdfqa/internal/progress"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Upload a PDF and ask one question about it",
	Long: `Uploads the PDF given by --file to the backend, asks the question and prints
the answer together with the latency, CPU and memory the model reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringP("file", "f", "", "PDF to upload (required)")
	askCmd.Flags().Bool("json", false, "output the answer and metrics as JSON")
	askCmd.Flags().Bool("copy", false, "copy the answer to the clipboard")
	askCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(askCmd)
}

type askResultJSON struct {
	Document string          `json:"document"`
	Pages    int             `json:"pages,omitempty"`
	Query    string          `json:"query"`
	Answer   string          `json:"answer"`
	Metrics  backend.Metrics `json:"metrics"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	filePath, _ := cmd.Flags().GetString("file")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	copyAnswer, _ := cmd.Flags().GetBool("copy")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.loadDocument(filePath)
	if err != nil {
		return err
	}

	reporter := progress.NewReporter(os.Stderr)
	if !jsonOutput {
		fmt.Fprintf(os.Stderr, "Document: %s\n", describeDocument(f.Reference, f.Size()))
	}

	if err := withSpinner(reporter, "Uploading "+f.Name, func() error { return a.session.Upload(f) }); err != nil {
		return a.failure(err)
	}
	if err := withSpinner(reporter, "Waiting for the answer", func() error { return a.session.Query(args[0]) }); err != nil {
		return a.failure(err)
	}

	result := a.session.Result()
	if result == nil {
		return fmt.Errorf("no answer received")
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(askResultJSON{
			Document: f.Name,
			Pages:    f.Pages,
			Query:    result.Query,
			Answer:   result.Answer,
			Metrics:  result.Metrics,
		}); err != nil {
			return err
		}
	} else {
		fmt.Printf("\n%s\n\n", result.Answer)
		printMetrics(result.Metrics)
	}

	if copyAnswer {
		if err := a.session.Export(); err != nil {
			return a.failure(err)
		}
		fmt.Fprintln(os.Stderr, a.session.Notification().Text)
	}
	return nil
}
