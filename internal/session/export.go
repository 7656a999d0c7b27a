package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/pdfqa/internal/notify"
)

// Export copies the last answer to the clipboard. It does not touch the
// document, the answer or the busy indicator.
func (s *Session) Export() (err error) {
	defer func() { s.recorder.ObserveExport(classify(err)) }()

	r := s.Result()
	if r == nil {
		s.notes.Notify("There is no answer to copy yet.", notify.SeverityError)
		return ErrNoResult
	}

	if err := s.clip.WriteAll(r.Answer); err != nil {
		s.log.Warn("clipboard write failed", zap.Error(err))
		s.notes.Notify(fmt.Sprintf("Could not copy the answer: %v", err), notify.SeverityError)
		return fmt.Errorf("%w: %v", ErrClipboard, err)
	}

	s.notes.Notify("Answer copied to clipboard.", notify.SeveritySuccess)
	return nil
}
