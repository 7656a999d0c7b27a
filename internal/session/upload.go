package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ziadkadry99/pdfqa/internal/document"
	"github.com/ziadkadry99/pdfqa/internal/notify"
)

// Upload sends f to the backend and, on success, makes it the active
// document and records it in the recent list. On any failure the active
// document is cleared. The busy indicator is held for the duration of the
// request and always released.
//
// Overlapping calls are the caller's responsibility to prevent; they do not
// corrupt state, the most recently started upload decides the outcome.
func (s *Session) Upload(f *document.File) (err error) {
	var size int64
	if f != nil {
		size = f.Size()
	}
	defer func() { s.recorder.ObserveUpload(classify(err), size) }()

	if !f.IsPDF() {
		mimeType := ""
		if f != nil {
			mimeType = f.MIMEType
		}
		s.log.Warn("upload rejected", zap.String("mime_type", mimeType))
		s.notes.Notify("Please choose a PDF file.", notify.SeverityError)
		return ErrInvalidFileType
	}

	t, ctx, err := s.beginUpload()
	if err != nil {
		return err
	}
	defer s.end()

	s.log.Debug("upload started", zap.String("name", f.Name), zap.Int64("bytes", size))
	s.notes.Notify(fmt.Sprintf("Uploading %s...", f.Name), notify.SeverityInfo)

	resp, reqErr := s.backend.UploadPDF(ctx, f.Name, f.Data)

	s.mu.Lock()
	if !s.ownsLocked(t) {
		s.mu.Unlock()
		s.log.Debug("upload result dropped, session closed", zap.String("name", f.Name))
		return ErrClosed
	}
	// A newer upload started while this one was outstanding; its outcome
	// decides the active document and the notification.
	if t.seq != s.uploadSeq {
		s.mu.Unlock()
		s.log.Debug("upload outcome superseded", zap.String("name", f.Name), zap.Error(reqErr))
		if reqErr != nil {
			return fmt.Errorf("uploading %s: %w", f.Name, reqErr)
		}
		return nil
	}
	if reqErr != nil {
		s.doc = document.Reference{}
		s.mu.Unlock()

		s.log.Warn("upload failed", zap.String("name", f.Name), zap.Error(reqErr))
		s.notes.Notify(failureText("Upload", reqErr), notify.SeverityError)
		return fmt.Errorf("uploading %s: %w", f.Name, reqErr)
	}
	s.doc = f.Reference
	s.indexed = f.Name
	s.mu.Unlock()

	s.recent.RecordSuccess(f.Name)

	msg := resp.Message
	if msg == "" {
		msg = fmt.Sprintf("%s uploaded.", f.Name)
	}
	s.log.Info("upload succeeded", zap.String("name", f.Name), zap.Int("pages", f.Pages))
	s.notes.Notify(msg, notify.SeveritySuccess)
	return nil
}
