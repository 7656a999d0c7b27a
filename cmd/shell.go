package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pdfqa/internal/notify"
	"github.com/ziadkadry99/pdfqa/internal/progress"
	"github.com/ziadkadry99/pdfqa/internal/session"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session: upload documents and ask questions from a menu",
	RunE:  runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

const (
	actionUpload = "Upload a PDF"
	actionAsk    = "Ask a question"
	actionRecent = "Open a recent document"
	actionRemove = "Remove the active document"
	actionCopy   = "Copy the last answer"
	actionQuit   = "Quit"
)

// noticePrinter writes each new notification once.
type noticePrinter struct {
	mu   sync.Mutex
	last notify.Notification
}

func (p *noticePrinter) observe(snap session.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := snap.Notification
	if n == p.last {
		return
	}
	p.last = n
	if n.IsZero() {
		return
	}
	fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Severity, n.Text)
}

func runShell(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	printer := &noticePrinter{}
	unsubscribe := a.session.Subscribe(printer.observe)
	defer unsubscribe()

	reporter := progress.NewReporter(os.Stderr)
	fmt.Printf("Connected to %s\n\n", a.cfg.BackendURL)

	for {
		printStatus(a.session.Snapshot())

		menu := promptui.Select{
			Label: "What next",
			Items: shellActions(a.session.Snapshot()),
			Size:  6,
		}
		_, action, err := menu.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return fmt.Errorf("menu: %w", err)
		}

		switch action {
		case actionUpload:
			shellUpload(a, reporter)
		case actionAsk:
			shellAsk(a, reporter)
		case actionRecent:
			shellRecent(a)
		case actionRemove:
			a.session.RemoveDocument()
		case actionCopy:
			a.session.Export()
		case actionQuit:
			return nil
		}
	}
}

func shellActions(snap session.Snapshot) []string {
	items := []string{actionUpload}
	if snap.CanQuery {
		items = append(items, actionAsk)
	}
	if len(snap.Recent) > 0 {
		items = append(items, actionRecent)
	}
	if snap.Document != nil {
		items = append(items, actionRemove)
	}
	if snap.Result != nil {
		items = append(items, actionCopy)
	}
	return append(items, actionQuit)
}

func printStatus(snap session.Snapshot) {
	if snap.Document == nil {
		fmt.Println("No document selected.")
		return
	}
	line := "Active document: " + describeDocument(*snap.Document, 0)
	if snap.IndexMismatch() {
		line += fmt.Sprintf(" (answers come from %s)", snap.Indexed)
	}
	fmt.Println(line)
}

func shellUpload(a *app, reporter progress.Reporter) {
	prompt := promptui.Prompt{
		Label: "Path to PDF",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("enter a file path")
			}
			if _, err := os.Stat(strings.TrimSpace(s)); err != nil {
				return errors.New("file not found")
			}
			return nil
		},
	}
	path, err := prompt.Run()
	if err != nil {
		return
	}

	f, err := a.loadDocument(strings.TrimSpace(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	withSpinner(reporter, "Uploading "+f.Name, func() error { return a.session.Upload(f) })
}

func shellAsk(a *app, reporter progress.Reporter) {
	prompt := promptui.Prompt{Label: "Question"}
	question, err := prompt.Run()
	if err != nil {
		return
	}

	if err := withSpinner(reporter, "Waiting for the answer", func() error { return a.session.Query(question) }); err != nil {
		return
	}
	if r := a.session.Result(); r != nil {
		fmt.Printf("\n%s\n\n", r.Answer)
		printMetrics(r.Metrics)
		fmt.Println()
	}
}

func shellRecent(a *app) {
	entries := a.session.Recent()
	if len(entries) == 0 {
		fmt.Println("No recent documents.")
		return
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	picker := promptui.Select{Label: "Recent documents", Items: names}
	idx, _, err := picker.Run()
	if err != nil {
		return
	}
	if err := a.session.SelectRecent(entries[idx].ID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}
