// Package backend talks to the PDF question-answering inference server.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is where the inference server listens by default.
	DefaultBaseURL = "http://localhost:5000"
	// DefaultUploadField is the multipart field the server reads the PDF from.
	DefaultUploadField = "pdf"

	uploadPath = "/upload_pdf"
	askPath    = "/ask_pdf"
)

// Client issues upload and ask requests. Requests carry no timeout of their
// own; callers bound them through the context.
type Client struct {
	baseURL     string
	uploadField string
	http        *http.Client
	log         *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUploadField sets the multipart field name used for uploads.
func WithUploadField(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.uploadField = name
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		uploadField: DefaultUploadField,
		http:        &http.Client{},
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string { return c.baseURL }

// UploadPDF sends one PDF as a multipart form.
func (c *Client) UploadPDF(ctx context.Context, filename string, data []byte) (*UploadResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, c.uploadField, filename))
	h.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("creating multipart part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("writing multipart part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	status, respBody, err := c.post(ctx, "upload", uploadPath, mw.FormDataContentType(), &body)
	if err != nil {
		return nil, err
	}
	if !successful(status) {
		return nil, serverError(status, respBody)
	}

	var out UploadResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &ServerError{StatusCode: status, Cause: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return &out, nil
}

// AskPDF sends a question about the most recently uploaded document.
func (c *Client) AskPDF(ctx context.Context, query string) (*AskResponse, error) {
	payload, err := json.Marshal(AskRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("marshalling ask request: %w", err)
	}

	status, respBody, err := c.post(ctx, "ask", askPath, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	if !successful(status) {
		return nil, serverError(status, respBody)
	}

	var raw struct {
		Response *string `json:"response"`
		Metrics  Metrics `json:"metrics"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, &ServerError{StatusCode: status, Cause: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if raw.Response == nil {
		return nil, &ServerError{StatusCode: status, Cause: fmt.Errorf("%w: missing response field", ErrMalformedResponse)}
	}
	return &AskResponse{Response: *raw.Response, Metrics: raw.Metrics}, nil
}

func (c *Client) post(ctx context.Context, op, path, contentType string, body io.Reader) (int, []byte, error) {
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return 0, nil, fmt.Errorf("creating %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	c.log.Debug("backend request", zap.String("op", op), zap.String("url", url))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &NetworkError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{Op: op, URL: url, Err: fmt.Errorf("reading response: %w", err)}
	}

	c.log.Debug("backend response",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)),
	)
	return resp.StatusCode, respBody, nil
}

// serverError builds a ServerError from a non-200 response, keeping the
// backend's message when the body carries one.
func serverError(status int, body []byte) *ServerError {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return &ServerError{StatusCode: status, Cause: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return &ServerError{StatusCode: status, Message: eb.Message}
}

func successful(status int) bool { return status >= 200 && status < 300 }
