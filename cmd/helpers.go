package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/ziadkadry99/pdfqa/internal/backend"
	"github.com/ziadkadry99/pdfqa/internal/config"
	"github.com/ziadkadry99/pdfqa/internal/document"
	"github.com/ziadkadry99/pdfqa/internal/logging"
	"github.com/ziadkadry99/pdfqa/internal/metrics"
	"github.com/ziadkadry99/pdfqa/internal/notify"
	"github.com/ziadkadry99/pdfqa/internal/progress"
	"github.com/ziadkadry99/pdfqa/internal/session"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `pdfqa init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:  level,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
}

// app bundles what every command needs: config, logger, metrics and one
// session talking to the configured backend.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Recorder
	session *session.Session
}

func newApp(opts ...session.Option) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	client := backend.NewClient(cfg.BackendURL,
		backend.WithUploadField(cfg.UploadField),
		backend.WithLogger(log.Named("backend")),
	)
	rec := metrics.New()

	opts = append([]session.Option{
		session.WithLogger(log.Named("session")),
		session.WithRecorder(rec),
		session.WithNotificationTTL(cfg.NotificationTTL.Std()),
		session.WithRecentLimit(cfg.RecentLimit),
	}, opts...)

	return &app{
		cfg:     cfg,
		log:     log,
		metrics: rec,
		session: session.New(client, opts...),
	}, nil
}

func (a *app) Close() {
	a.session.Close()
	a.log.Sync()
}

// loadDocument reads a PDF from disk and applies the upload size limit.
func (a *app) loadDocument(path string) (*document.File, error) {
	f, err := document.Load(path)
	if err != nil {
		return nil, err
	}
	if limit := a.cfg.MaxUploadBytes(); limit > 0 && f.Size() > limit {
		return nil, fmt.Errorf("%s is %s, the limit is %s", f.Name,
			humanize.IBytes(uint64(f.Size())), humanize.IBytes(uint64(limit)))
	}
	return f, nil
}

func describeDocument(ref document.Reference, size int64) string {
	var parts []string
	if size > 0 {
		parts = append(parts, humanize.IBytes(uint64(size)))
	}
	if ref.Pages > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", ref.Pages, plural(ref.Pages, "page", "pages")))
	}
	if len(parts) == 0 {
		return ref.Name
	}
	return fmt.Sprintf("%s (%s)", ref.Name, strings.Join(parts, ", "))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func formatMeasurement(m backend.Measurement, unit string, digits int) string {
	if !m.Available {
		return "Unavailable"
	}
	return fmt.Sprintf("%.*f %s", digits, m.Value, unit)
}

func printMetrics(m backend.Metrics) {
	fmt.Printf("  Latency:    %s\n", formatMeasurement(m.LatencySeconds, "s", 2))
	fmt.Printf("  LLM CPU:    %s\n", formatMeasurement(m.CPUPercent, "%", 1))
	fmt.Printf("  LLM memory: %s\n", formatMeasurement(m.ResidentMemoryMB, "MB", 1))
}

// failure prefers the error notification the session raised, which is the
// text a dashboard user would have seen.
func (a *app) failure(err error) error {
	if n := a.session.Notification(); n.Severity == notify.SeverityError && n.Text != "" {
		a.log.Debug("command failed", zap.Error(err))
		return errors.New(n.Text)
	}
	return err
}

// withSpinner runs fn while the reporter shows message.
func withSpinner(r progress.Reporter, message string, fn func() error) error {
	r.Start(message)
	defer r.Stop()
	return fn()
}
