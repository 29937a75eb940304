// Package vantixapi is the only code that talks to the Vantix REST backend.
//
// Every call takes the caller's bearer token explicitly. The package never
// stores a session and never decides what to do when one expires: a 401 or
// 403 comes back as ErrSessionExpired and the caller applies its own policy.
package vantixapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxErrorBody = 64 << 10

type API struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for baseURL (for example http://127.0.0.1:8000/api/v1).
// A nil httpClient gets a client with a 15 second timeout.
func New(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *API) BaseURL() string { return c.baseURL }

// ListParams is the pagination window accepted by every list endpoint.
type ListParams struct {
	Skip  int
	Limit int
}

func (p ListParams) apply(q url.Values) {
	if p.Skip > 0 {
		q.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
}

func setID(q url.Values, key string, id int64) {
	if id > 0 {
		q.Set(key, strconv.FormatInt(id, 10))
	}
}

// FilePart is a file attached to a multipart request.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

func (f *FilePart) empty() bool { return f == nil || len(f.Data) == 0 }

type request struct {
	op       string
	fallback string
	method   string
	path     string
	query    url.Values
	token    string
	json     any
	form     url.Values
	fields   map[string]string
	files    []*FilePart
}

func (c *API) newHTTPRequest(ctx context.Context, req request) (*http.Request, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.fields != nil || len(req.files) > 0:
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		for key, value := range req.fields {
			if err := writer.WriteField(key, value); err != nil {
				return nil, err
			}
		}
		for _, f := range req.files {
			if f.empty() {
				continue
			}
			part, err := writer.CreatePart(fileHeader(f))
			if err != nil {
				return nil, err
			}
			if _, err := part.Write(f.Data); err != nil {
				return nil, err
			}
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}
		body = &buf
		contentType = writer.FormDataContentType()
	case req.form != nil:
		body = strings.NewReader(req.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.json != nil:
		encoded, err := json.Marshal(req.json)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	return httpReq, nil
}

// do sends req and decodes a 2xx JSON body into out (when out is non-nil).
func (c *API) do(ctx context.Context, req request, out any) error {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", req.op, err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", req.op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &RequestError{
			Op:      req.op,
			Status:  resp.StatusCode,
			Message: detailMessage(raw, req.fallback),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", req.op, err)
	}
	return nil
}

func fileHeader(f *FilePart) textproto.MIMEHeader {
	contentType := f.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(f.Data)
	}
	filename := f.Filename
	if filename == "" {
		filename = f.Field
	}
	return textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, filename)},
		"Content-Type":        {contentType},
	}
}

func pathID(id int64) string { return strconv.FormatInt(id, 10) }
