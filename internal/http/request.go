package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request represents an HTTP request relative to the client's base URL
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    interface{}
}

// NewRequest creates a new HTTP request
func NewRequest(method, path string) *Request {
	return &Request{
		Method:  method,
		Path:    path,
		Headers: make(map[string]string),
	}
}

// WithHeader adds a header to the request
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// WithBody sets the body of the request
func (r *Request) WithBody(body interface{}) *Request {
	r.Body = body
	return r
}

// Build constructs an http.Request from the Request.
// Raw JSON, strings and byte slices are sent as-is; any other value is
// marshalled to JSON and Content-Type defaults to application/json.
func (r *Request) Build(ctx context.Context, baseURL string) (*http.Request, error) {
	reqURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	if reqURL.Path == "" {
		reqURL.Path = r.Path
	} else {
		reqURL.Path = strings.TrimRight(reqURL.Path, "/") + "/" + strings.TrimLeft(r.Path, "/")
	}

	var bodyReader io.Reader
	if r.Body != nil {
		switch body := r.Body.(type) {
		case json.RawMessage:
			bodyReader = bytes.NewReader(body)
			r.defaultContentType("application/json")
		case string:
			bodyReader = strings.NewReader(body)
		case []byte:
			bodyReader = bytes.NewReader(body)
		case io.Reader:
			bodyReader = body
		default:
			jsonBody, err := json.Marshal(body)
			if err != nil {
				return nil, err
			}
			bodyReader = bytes.NewReader(jsonBody)
			r.defaultContentType("application/json")
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, reqURL.String(), bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

func (r *Request) defaultContentType(contentType string) {
	if _, ok := r.Headers["Content-Type"]; !ok {
		r.Headers["Content-Type"] = contentType
	}
}
