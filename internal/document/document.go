// Package document builds document references from files on disk or from
// browser uploads.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFMIMEType is the only MIME type accepted for upload.
const PDFMIMEType = "application/pdf"

// ErrTooLarge is returned for uploads over the size limit.
var ErrTooLarge = errors.New("file too large")

// Reference identifies the active document. Pages is zero when the page
// count is unknown, e.g. for a document restored from the recent list.
type Reference struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Pages    int    `json:"pages,omitempty"`
}

// IsZero reports whether no document is referenced.
func (r Reference) IsZero() bool { return r.Name == "" }

// File is a document together with its payload, as held during an upload.
type File struct {
	Reference
	Data []byte
}

// IsPDF reports whether the declared MIME type is exactly the PDF type.
func (f *File) IsPDF() bool {
	return f != nil && f.MIMEType == PDFMIMEType
}

// Size returns the payload length in bytes.
func (f *File) Size() int64 { return int64(len(f.Data)) }

// Load reads path from disk. The MIME type is sniffed from the content,
// not taken from the extension.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return FromBytes(filepath.Base(path), data), nil
}

// FromBytes wraps an in-memory payload, sniffing its MIME type.
func FromBytes(name string, data []byte) *File {
	return &File{
		Reference: Reference{
			Name:     name,
			MIMEType: DetectMIME(data),
			Pages:    pageCountOrZero(data),
		},
		Data: data,
	}
}

// FromUpload reads a multipart file part, keeping the MIME type the client
// declared for it. At most limit bytes are read; larger parts are rejected.
func FromUpload(fh *multipart.FileHeader, limit int64) (*File, error) {
	if limit > 0 && fh.Size > limit {
		return nil, fmt.Errorf("%w: %s exceeds the %d byte upload limit", ErrTooLarge, fh.Filename, limit)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading upload %s: %w", fh.Filename, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds the %d byte upload limit", ErrTooLarge, fh.Filename, limit)
	}

	declared := fh.Header.Get("Content-Type")
	ref := Reference{Name: filepath.Base(fh.Filename), MIMEType: declared}
	if declared == PDFMIMEType {
		ref.Pages = pageCountOrZero(data)
	}
	return &File{Reference: ref, Data: data}, nil
}

// DetectMIME returns the sniffed MIME type of data.
func DetectMIME(data []byte) string {
	mt := mimetype.Detect(data)
	if mt.Is(PDFMIMEType) {
		return PDFMIMEType
	}
	return mt.String()
}

// CountPages returns the number of pages in a PDF payload.
func CountPages(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("parsing pdf: %v", r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("parsing pdf: %w", err)
	}
	return reader.NumPage(), nil
}

func pageCountOrZero(data []byte) int {
	if len(data) == 0 || !mimetype.Detect(data).Is(PDFMIMEType) {
		return 0
	}
	n, err := CountPages(data)
	if err != nil {
		return 0
	}
	return n
}
