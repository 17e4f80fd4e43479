package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Response represents a fully read HTTP response
type Response struct {
	StatusCode   int
	Status       string
	Headers      http.Header
	Body         []byte
	ResponseTime time.Duration
}

// BodyString returns the response body as a string
func (r *Response) BodyString() string {
	return string(r.Body)
}

// DecodeJSON unmarshals the response body into v
func (r *Response) DecodeJSON(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// Message returns the "message" field of a Kruize JSON reply, or the
// trimmed body when the reply is not JSON or has no message.
func (r *Response) Message() string {
	if gjson.ValidBytes(r.Body) {
		if msg := gjson.GetBytes(r.Body, "message"); msg.Exists() {
			return msg.String()
		}
	}
	return strings.TrimSpace(string(r.Body))
}

// GetHeader returns the value of the specified header
func (r *Response) GetHeader(key string) string {
	return r.Headers.Get(key)
}

// IsSuccess returns true if the response status code is in the 2xx range
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsClientError returns true if the response status code is in the 4xx range
func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

// IsServerError returns true if the response status code is in the 5xx range
func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500 && r.StatusCode < 600
}
