package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/pdfqa/internal/config"
)

// Version is set via ldflags at build time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pdfqa version and the backend it is configured for",
	RunE: func(cmd *cobra.Command, args []string) error {
		short, _ := cmd.Flags().GetBool("short")
		if short {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
			return nil
		}

		// A broken or missing config file should not hide the version.
		backendURL := config.DefaultConfig().BackendURL
		if cfg, err := config.Load(cfgFile); err == nil {
			backendURL = cfg.BackendURL
		}
		printVersion(cmd.OutOrStdout(), backendURL)
		return nil
	},
}

func printVersion(w io.Writer, backendURL string) {
	fmt.Fprintf(w, "pdfqa %s (%s %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "backend: %s\n", backendURL)
}

func init() {
	versionCmd.Flags().Bool("short", false, "print only the version number")
	rootCmd.AddCommand(versionCmd)
}
