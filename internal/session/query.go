package session

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/pdfqa/internal/backend"
	"github.com/ziadkadry99/pdfqa/internal/notify"
)

// Query asks a question about the active document. The previous answer and
// notification are cleared once the request is accepted. A failed request
// leaves no answer behind. There is no automatic retry.
func (s *Session) Query(text string) (err error) {
	var latency backend.Measurement
	defer func() { s.recorder.ObserveQuery(classify(err), latency) }()

	if strings.TrimSpace(text) == "" {
		s.notes.Notify("Please enter a question.", notify.SeverityError)
		return ErrEmptyQuery
	}

	s.mu.Lock()
	if s.doc.IsZero() {
		s.mu.Unlock()
		s.notes.Notify("Upload a PDF before asking a question.", notify.SeverityError)
		return ErrNoActiveDocument
	}
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.inflight++
	s.querySeq++
	seq := s.querySeq
	t := ticket{epoch: s.epoch}
	ctx := s.ctx
	s.result = nil
	docName := s.doc.Name
	s.mu.Unlock()
	defer s.end()

	s.notes.Dismiss()
	s.emit()
	s.log.Debug("query started", zap.String("document", docName), zap.Int("chars", len(text)))

	resp, reqErr := s.backend.AskPDF(ctx, text)

	s.mu.Lock()
	if !s.ownsLocked(t) {
		s.mu.Unlock()
		s.log.Debug("query result dropped, session closed")
		return ErrClosed
	}
	// A newer query started while this one was outstanding; its answer is
	// the one the user is waiting for.
	if seq != s.querySeq {
		s.mu.Unlock()
		s.log.Debug("query result superseded", zap.Uint64("seq", seq), zap.Error(reqErr))
		if reqErr != nil {
			return fmt.Errorf("asking about %s: %w", docName, reqErr)
		}
		return nil
	}
	if reqErr != nil {
		s.mu.Unlock()
		s.log.Warn("query failed", zap.Error(reqErr))
		s.notes.Notify(failureText("Query", reqErr), notify.SeverityError)
		return fmt.Errorf("asking about %s: %w", docName, reqErr)
	}
	s.result = &Result{Query: text, Answer: resp.Response, Metrics: resp.Metrics}
	s.mu.Unlock()

	latency = resp.Metrics.LatencySeconds
	s.log.Info("query answered",
		zap.String("document", docName),
		zap.Stringer("latency_s", resp.Metrics.LatencySeconds),
		zap.Stringer("cpu_pct", resp.Metrics.CPUPercent),
		zap.Stringer("mem_mb", resp.Metrics.ResidentMemoryMB),
	)
	s.notes.Notify(answeredText(resp.Metrics.LatencySeconds.Available, resp.Metrics.LatencySeconds.Value), notify.SeveritySuccess)
	return nil
}

func answeredText(haveLatency bool, seconds float64) string {
	if haveLatency {
		return fmt.Sprintf("Answer ready in %.2fs.", seconds)
	}
	return "Answer ready."
}
