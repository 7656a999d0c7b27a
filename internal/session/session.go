// Package session owns the state of one document question-answering
// session: the active document, the recent uploads, the last answer, the
// busy indicator and the status notification. All mutation goes through the
// controller methods; presentation layers observe it through Snapshot and
// Subscribe.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/ziadkadry99/pdfqa/internal/backend"
	"github.com/ziadkadry99/pdfqa/internal/document"
	"github.com/ziadkadry99/pdfqa/internal/notify"
	"github.com/ziadkadry99/pdfqa/internal/recent"
)

// Backend is the inference server as seen by the controllers.
type Backend interface {
	UploadPDF(ctx context.Context, filename string, data []byte) (*backend.UploadResponse, error)
	AskPDF(ctx context.Context, query string) (*backend.AskResponse, error)
}

// Clipboard receives exported answers.
type Clipboard interface {
	WriteAll(text string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(string) error

func (f ClipboardFunc) WriteAll(text string) error { return f(text) }

// SystemClipboard writes to the OS clipboard.
var SystemClipboard Clipboard = ClipboardFunc(clipboard.WriteAll)

// Recorder observes controller outcomes, typically for metrics.
type Recorder interface {
	ObserveUpload(outcome Outcome, bytes int64)
	ObserveQuery(outcome Outcome, latency backend.Measurement)
	ObserveExport(outcome Outcome)
}

type nopRecorder struct{}

func (nopRecorder) ObserveUpload(Outcome, int64)              {}
func (nopRecorder) ObserveQuery(Outcome, backend.Measurement) {}
func (nopRecorder) ObserveExport(Outcome)                     {}

// Result is the most recent completed answer.
type Result struct {
	Query   string          `json:"query"`
	Answer  string          `json:"answer"`
	Metrics backend.Metrics `json:"metrics"`
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Document     *document.Reference `json:"document"`
	Busy         bool                `json:"busy"`
	CanQuery     bool                `json:"can_query"`
	Result       *Result             `json:"result"`
	Notification notify.Notification `json:"notification"`
	Recent       []recent.Entry      `json:"recent"`
	// Indexed is the name of the last document the backend indexed during
	// this session. It differs from Document after picking an older entry
	// from the recent list, since that does not upload anything.
	Indexed string `json:"indexed,omitempty"`
}

// IndexMismatch reports whether questions would be answered from a
// different document than the one shown as active.
func (s Snapshot) IndexMismatch() bool {
	return s.Document != nil && s.Indexed != "" && s.Document.Name != s.Indexed
}

// Option configures a Session.
type Option func(*Session)

// WithClipboard sets the export target.
func WithClipboard(c Clipboard) Option {
	return func(s *Session) { s.clip = c }
}

// WithRecorder sets the outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Session) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithNotificationTTL sets how long notifications stay visible.
func WithNotificationTTL(d time.Duration) Option {
	return func(s *Session) { s.notifyTTL = d }
}

// WithScheduler replaces the notification timer implementation.
func WithScheduler(sched notify.Scheduler) Option {
	return func(s *Session) { s.scheduler = sched }
}

// WithRecentLimit sets the capacity of the recent documents list.
func WithRecentLimit(n int) Option {
	return func(s *Session) { s.recentLimit = n }
}

// ticket ties an outstanding request to the session lifetime it was
// started in and to its position among requests of the same kind.
type ticket struct {
	epoch uint64
	seq   uint64
}

// Session is safe for concurrent use. Controllers block for the duration of
// their request; run them on their own goroutine to keep a UI responsive.
type Session struct {
	backend  Backend
	clip     Clipboard
	recorder Recorder
	log      *zap.Logger

	notifyTTL   time.Duration
	scheduler   notify.Scheduler
	recentLimit int

	notes  *notify.Manager
	recent *recent.Cache

	mu       sync.Mutex
	doc      document.Reference
	indexed  string
	result   *Result
	inflight int
	querySeq  uint64
	uploadSeq uint64
	epoch    uint64
	closed   bool
	ctx      context.Context
	cancel   context.CancelFunc

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// New creates a session that talks to b.
func New(b Backend, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		backend:     b,
		clip:        SystemClipboard,
		recorder:    nopRecorder{},
		log:         zap.NewNop(),
		notifyTTL:   notify.DefaultTTL,
		recentLimit: recent.DefaultLimit,
		ctx:         ctx,
		cancel:      cancel,
		subs:        make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}

	notifyOpts := []notify.Option{notify.WithOnChange(func(notify.Notification) { s.emit() })}
	if s.scheduler != nil {
		notifyOpts = append(notifyOpts, notify.WithScheduler(s.scheduler))
	}
	s.notes = notify.NewManager(s.notifyTTL, notifyOpts...)
	s.recent = recent.New(s.recentLimit)
	return s
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		Busy:    s.inflight > 0,
		Indexed: s.indexed,
	}
	if !s.doc.IsZero() {
		doc := s.doc
		snap.Document = &doc
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	snap.CanQuery = snap.Document != nil && !snap.Busy
	s.mu.Unlock()

	snap.Notification = s.notes.Current()
	snap.Recent = s.recent.Entries()
	return snap
}

// ActiveDocument returns the active document and whether there is one.
func (s *Session) ActiveDocument() (document.Reference, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc, !s.doc.IsZero()
}

// Busy reports whether a request is outstanding.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// CanQuery reports whether a question may be asked right now.
func (s *Session) CanQuery() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.doc.IsZero() && s.inflight == 0
}

// Result returns the last answer, or nil.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return nil
	}
	r := *s.result
	return &r
}

// Notification returns the visible notification.
func (s *Session) Notification() notify.Notification { return s.notes.Current() }

// Recent returns the recent uploads, most recent first.
func (s *Session) Recent() []recent.Entry { return s.recent.Entries() }

// RemoveDocument clears the active document unconditionally.
func (s *Session) RemoveDocument() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.doc = document.Reference{}
	s.mu.Unlock()

	s.log.Debug("document removed")
	s.emit()
}

// SelectRecent makes a recent entry the active document without uploading
// it again. The recent list order is unchanged.
func (s *Session) SelectRecent(id string) error {
	entry, err := s.recent.Get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.doc = document.Reference{Name: entry.Name, MIMEType: document.PDFMIMEType}
	indexed := s.indexed
	s.mu.Unlock()

	s.log.Debug("recent document selected", zap.String("name", entry.Name))
	if indexed != "" && indexed != entry.Name {
		s.notes.Notify(selectedStaleText(entry.Name, indexed), notify.SeverityInfo)
	} else {
		s.emit()
	}
	return nil
}

// DismissNotification hides the current notification.
func (s *Session) DismissNotification() { s.notes.Dismiss() }

// Subscribe registers fn to receive a snapshot after every state change.
// fn runs synchronously on the goroutine that made the change and must not
// block. The returned function unregisters it.
func (s *Session) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Close ends the session. Pending notification timers are cancelled,
// outstanding requests are abandoned and their results ignored, and
// subscribers are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.epoch++
	s.cancel()
	s.mu.Unlock()

	s.notes.Close()

	s.subMu.Lock()
	s.subs = make(map[int]func(Snapshot))
	s.subMu.Unlock()
}

// beginUpload marks an upload as outstanding and returns the ticket and
// context it must use.
func (s *Session) beginUpload() (ticket, context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ticket{}, nil, ErrClosed
	}
	s.inflight++
	s.uploadSeq++
	return ticket{epoch: s.epoch, seq: s.uploadSeq}, s.ctx, nil
}

// end releases the busy indicator. It runs on every exit path.
func (s *Session) end() {
	s.mu.Lock()
	if s.inflight > 0 {
		s.inflight--
	}
	closed := s.closed
	s.mu.Unlock()

	if !closed {
		s.emit()
	}
}

// ownsLocked reports whether results for t may still be applied.
func (s *Session) ownsLocked(t ticket) bool {
	return !s.closed && t.epoch == s.epoch
}

func (s *Session) emit() {
	s.subMu.Lock()
	if len(s.subs) == 0 {
		s.subMu.Unlock()
		return
	}
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	snap := s.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}
