package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pdfqa/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a pdfqa configuration file with an interactive wizard",
	Long:  `Asks for the backend address, notification timeout, dashboard port and log level, then writes them to the config file (.pdfqa.yml by default).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.RunWizard(cfgFile); err != nil {
			return err
		}
		fmt.Println("Try it with: pdfqa ask --file report.pdf \"What is this document about?\"")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
