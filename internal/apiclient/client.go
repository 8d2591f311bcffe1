package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// TokenSource supplies the bearer token for requests that do not carry one.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client calls the teacher REST API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  TokenSource
	// OnUnauthorized runs once for every 401 before ErrAuth is returned.
	OnUnauthorized func(ctx context.Context)
	// AvatarMaxPx bounds uploaded profile images; 0 keeps the original size.
	AvatarMaxPx int
}

// New creates a client. A timeout of zero or less leaves requests bounded only by
// the transport and the caller's context.
func New(baseURL string, timeout time.Duration, tokens TokenSource, onUnauthorized func(context.Context)) *Client {
	if timeout < 0 {
		timeout = 0
	}
	return &Client{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		HTTP:           &http.Client{Timeout: timeout},
		Tokens:         tokens,
		OnUnauthorized: onUnauthorized,
	}
}

// File is an attachment sent in a multipart body.
type File struct {
	Field string
	Name  string
	Data  []byte
}

// Multipart is a form body with optional file attachments.
type Multipart struct {
	Fields map[string]string
	Files  []File
}

// Request describes one call. Route is the metrics label; it defaults to Path.
type Request struct {
	Method    string
	Path      string
	Route     string
	Query     url.Values
	Body      interface{}
	Multipart *Multipart
	Token     string
}

// Response is a successful reply. Body is empty for 204 and zero-length replies.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Empty reports whether the reply carried no body.
func (r *Response) Empty() bool { return r == nil || len(r.Body) == 0 }

// Do sends req and normalizes every failure into *APIError, except context cancellation.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	route := req.Route
	if route == "" {
		route = req.Path
	}

	httpReq, err := c.newRequest(ctx, method, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		observe(method, route, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, ErrUnreachable
	}
	defer resp.Body.Close()
	observe(method, route, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		if c.OnUnauthorized != nil {
			c.OnUnauthorized(ctx)
		}
		return nil, ErrAuth
	}

	out := &Response{Status: resp.StatusCode, Header: resp.Header}
	if resp.StatusCode == http.StatusNoContent || resp.ContentLength == 0 {
		if resp.StatusCode < 300 {
			return out, nil
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, ErrUnreachable
	}
	if resp.StatusCode < 300 {
		out.Body = body
		return out, nil
	}
	return nil, failure(resp.StatusCode, resp.Header.Get("Content-Type"), body)
}

func (c *Client) newRequest(ctx context.Context, method string, req Request) (*http.Request, error) {
	u := c.BaseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Multipart != nil:
		buf, ct, err := encodeMultipart(req.Multipart)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.Body != nil && hasBody(method):
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, "encoding request body")
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	} else {
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/json")
	}

	token := req.Token
	if token == "" && c.Tokens != nil {
		if token, err = c.Tokens.Token(ctx); err != nil {
			return nil, errors.Wrap(err, "reading session token")
		}
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut:
		return true
	}
	return false
}

func encodeMultipart(m *Multipart) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", errors.Wrap(err, "writing form field")
		}
	}
	for _, f := range m.Files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return nil, "", errors.Wrap(err, "creating form file")
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", errors.Wrap(err, "writing form file")
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "closing multipart body")
	}
	return &buf, w.FormDataContentType(), nil
}

// failure turns a non-2xx reply into an *APIError with the server's message when it sent one.
func failure(status int, contentType string, body []byte) *APIError {
	if strings.Contains(contentType, "application/json") {
		var payload interface{}
		if err := json.Unmarshal(body, &payload); err == nil {
			msg := messageOf(payload)
			if msg == "" {
				msg = fmt.Sprintf("HTTP xatolik! Status: %d", status)
			}
			return &APIError{Status: status, Message: msg, Body: payload}
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		text = fmt.Sprintf("Serverdan noma'lum javob (status: %d)", status)
	}
	return &APIError{Status: status, Message: text}
}

func messageOf(payload interface{}) string {
	obj, ok := payload.(map[string]interface{})
	if !ok {
		return ""
	}
	for _, key := range []string{"message", "error"} {
		switch v := obj[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case []interface{}:
			parts := make([]string, 0, len(v))
			for _, p := range v {
				parts = append(parts, fmt.Sprint(p))
			}
			if len(parts) > 0 {
				return strings.Join(parts, "; ")
			}
		case nil:
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}
