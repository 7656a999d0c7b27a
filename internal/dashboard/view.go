package dashboard

import (
	_ "embed"
	"net/http"

	"go.uber.org/zap"

	"github.com/ziadkadry99/pdfqa/internal/session"
)

// stateView is the session snapshot as sent to the browser.
type stateView struct {
	session.Snapshot
	AnswerHTML    string `json:"answer_html,omitempty"`
	IndexMismatch bool   `json:"index_mismatch"`
}

func (d *Dashboard) view(snap session.Snapshot) stateView {
	v := stateView{
		Snapshot:      snap,
		IndexMismatch: snap.IndexMismatch(),
	}
	if snap.Result != nil {
		html, err := d.md.HTML(snap.Result.Answer)
		if err != nil {
			d.log.Warn("rendering answer", zap.Error(err))
		} else {
			v.AnswerHTML = html
		}
	}
	return v
}

func (d *Dashboard) currentView() stateView {
	return d.view(d.session.Snapshot())
}

//go:embed index.html
var indexPage []byte

func (d *Dashboard) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(indexPage)
}
