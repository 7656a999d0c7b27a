package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pdfqa/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "pdfqa",
	Short: "Ask questions about PDF documents using a local inference backend",
	Long: `pdfqa uploads a PDF to a running inference backend and lets you ask
natural-language questions about it. Answers come back with the latency,
CPU and memory the model used to produce them.

Use it one question at a time with "ask", interactively with "shell", or
from the browser with "ui".`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
