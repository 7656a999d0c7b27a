package document

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// buildPDF assembles a structurally valid PDF with the given number of
// blank pages and a correct cross-reference table.
func buildPDF(pages int) []byte {
	var objs []string
	kids := make([]string, pages)
	for i := 0; i < pages; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		objs = append(objs, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestDetectMIME(t *testing.T) {
	if got := DetectMIME(buildPDF(1)); got != PDFMIMEType {
		t.Errorf("DetectMIME(pdf) = %q, want %q", got, PDFMIMEType)
	}
	if got := DetectMIME([]byte("just some notes")); got == PDFMIMEType {
		t.Errorf("plain text detected as pdf")
	}
}

func TestCountPages(t *testing.T) {
	n, err := CountPages(buildPDF(3))
	if err != nil {
		t.Fatalf("CountPages: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 pages, got %d", n)
	}
}

func TestCountPagesGarbage(t *testing.T) {
	if _, err := CountPages([]byte("%PDF-1.4 truncated")); err == nil {
		t.Error("expected error for truncated pdf")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	pdfPath := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(pdfPath, buildPDF(2), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(pdfPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Name != "report.pdf" || !f.IsPDF() {
		t.Errorf("unexpected reference %+v", f.Reference)
	}
	if f.Pages != 2 {
		t.Errorf("expected 2 pages, got %d", f.Pages)
	}

	// A text file renamed to .pdf is still not a PDF.
	fakePath := filepath.Join(dir, "fake.pdf")
	if err := os.WriteFile(fakePath, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err = Load(fakePath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.IsPDF() {
		t.Errorf("expected text content to be rejected, got %q", f.MIMEType)
	}

	if _, err := Load(filepath.Join(dir, "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}

func uploadRequest(t *testing.T, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="pdf"; filename="%s"`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return req
}

func TestFromUploadKeepsDeclaredType(t *testing.T) {
	req := uploadRequest(t, "notes.pdf", "text/plain", []byte("hello"))
	f, err := FromUpload(req.MultipartForm.File["pdf"][0], 1<<20)
	if err != nil {
		t.Fatalf("FromUpload: %v", err)
	}
	if f.MIMEType != "text/plain" {
		t.Errorf("expected declared type text/plain, got %q", f.MIMEType)
	}
	if f.IsPDF() {
		t.Error("declared text/plain must not be treated as pdf")
	}
}

func TestFromUploadPDF(t *testing.T) {
	req := uploadRequest(t, "report.pdf", PDFMIMEType, buildPDF(4))
	f, err := FromUpload(req.MultipartForm.File["pdf"][0], 1<<20)
	if err != nil {
		t.Fatalf("FromUpload: %v", err)
	}
	if !f.IsPDF() || f.Name != "report.pdf" || f.Pages != 4 {
		t.Errorf("unexpected file %+v", f.Reference)
	}
}

func TestFromUploadLimit(t *testing.T) {
	req := uploadRequest(t, "big.pdf", PDFMIMEType, bytes.Repeat([]byte("x"), 2048))
	_, err := FromUpload(req.MultipartForm.File["pdf"][0], 1024)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}
