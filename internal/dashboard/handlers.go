package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/pdfqa/internal/backend"
	"github.com/ziadkadry99/pdfqa/internal/document"
	"github.com/ziadkadry99/pdfqa/internal/recent"
	"github.com/ziadkadry99/pdfqa/internal/session"
)

// actionResponse is returned by every action endpoint.
type actionResponse struct {
	Error string    `json:"error,omitempty"`
	State stateView `json:"state"`
}

type askRequest struct {
	Query string `json:"query"`
}

func (d *Dashboard) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.currentView())
}

func (d *Dashboard) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !d.acquire() {
		d.writeBusy(w)
		return
	}
	defer d.release()

	if d.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, d.maxUpload+1<<20) // form overhead
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		d.writeAction(w, http.StatusBadRequest, errors.New("invalid multipart form: "+err.Error()))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["pdf"]
	if len(files) == 0 {
		// Same outcome as choosing nothing in a file picker.
		d.writeAction(w, statusFor(d.session.Upload(nil)), session.ErrInvalidFileType)
		return
	}

	f, err := document.FromUpload(files[0], d.maxUpload)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, document.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		d.writeAction(w, status, err)
		return
	}

	err = d.session.Upload(f)
	d.writeAction(w, statusFor(err), err)
}

func (d *Dashboard) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		d.writeAction(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	if !d.acquire() {
		d.writeBusy(w)
		return
	}
	defer d.release()

	err := d.session.Query(req.Query)
	d.writeAction(w, statusFor(err), err)
}

func (d *Dashboard) handleSelectRecent(w http.ResponseWriter, r *http.Request) {
	err := d.session.SelectRecent(chi.URLParam(r, "id"))
	d.writeAction(w, statusFor(err), err)
}

func (d *Dashboard) handleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	d.session.RemoveDocument()
	d.writeAction(w, http.StatusOK, nil)
}

func (d *Dashboard) handleExport(w http.ResponseWriter, r *http.Request) {
	err := d.session.Export()
	d.writeAction(w, statusFor(err), err)
}

func (d *Dashboard) handleDismiss(w http.ResponseWriter, r *http.Request) {
	d.session.DismissNotification()
	d.writeAction(w, http.StatusOK, nil)
}

func (d *Dashboard) writeBusy(w http.ResponseWriter) {
	d.writeAction(w, http.StatusConflict, errors.New("another request is still running"))
}

func (d *Dashboard) writeAction(w http.ResponseWriter, status int, err error) {
	resp := actionResponse{State: d.currentView()}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

// statusFor maps a controller error to an HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, recent.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, session.ErrEmptyQuery), errors.Is(err, session.ErrNoActiveDocument),
		errors.Is(err, session.ErrNoResult):
		return http.StatusUnprocessableEntity
	case errors.Is(err, backend.ErrServer), errors.Is(err, backend.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, session.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
