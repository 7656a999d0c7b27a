// Package dashboard serves the browser UI for a session: an embedded page,
// JSON endpoints for each user action, and a websocket that pushes the
// session state whenever it changes.
package dashboard

import (
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/pdfqa/internal/render"
	"github.com/ziadkadry99/pdfqa/internal/session"
)

// Dashboard observes one session and forwards user actions to it.
type Dashboard struct {
	session   *session.Session
	md        *render.Markdown
	log       *zap.Logger
	maxUpload int64

	// running is set while an upload or query started from the dashboard
	// is outstanding. The dashboard refuses a second one rather than
	// relying on the session to serialise them.
	running atomic.Bool
}

// New creates a dashboard for s. Browser uploads larger than maxUpload
// bytes are refused.
func New(s *session.Session, log *zap.Logger, maxUpload int64) *Dashboard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dashboard{
		session:   s,
		md:        render.NewMarkdown(),
		log:       log,
		maxUpload: maxUpload,
	}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", d.handleState)
		r.Post("/upload", d.handleUpload)
		r.Post("/ask", d.handleAsk)
		r.Post("/recent/{id}/select", d.handleSelectRecent)
		r.Delete("/document", d.handleRemoveDocument)
		r.Post("/export", d.handleExport)
		r.Delete("/notification", d.handleDismiss)
	})
	r.Get("/ws/state", d.handleWebSocket)
}

// acquire claims the single request slot. It reports false if an upload or
// query is already running.
func (d *Dashboard) acquire() bool {
	return d.running.CompareAndSwap(false, true)
}

func (d *Dashboard) release() { d.running.Store(false) }
