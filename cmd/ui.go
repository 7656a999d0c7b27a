package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/pdfqa/internal/dashboard"
	"github.com/ziadkadry99/pdfqa/internal/server"
)

var uiPort int

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Start the browser dashboard",
	Long:  `Serves the PDF Assistant dashboard on localhost. The page talks to this process, which forwards uploads and questions to the configured backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.cfg.ListenPort
		if cmd.Flags().Changed("port") {
			port = uiPort
		}

		srv := server.New(server.Config{Port: port}, a.log.Named("http"), a.metrics.Handler())
		dash := dashboard.New(a.session, a.log.Named("dashboard"), a.cfg.MaxUploadBytes())
		dash.RegisterRoutes(srv.Router())

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down dashboard...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.log.Warn("shutdown", zap.Error(err))
			}
		}()

		fmt.Fprintf(os.Stderr, "pdfqa %s dashboard on http://127.0.0.1:%d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Backend: %s\n", a.cfg.BackendURL)
		fmt.Fprintf(os.Stderr, "  Metrics: http://127.0.0.1:%d/metrics\n", port)

		return srv.Start()
	},
}

func init() {
	uiCmd.Flags().IntVar(&uiPort, "port", 0, "port to listen on (overrides listen_port)")
	rootCmd.AddCommand(uiCmd)
}
