package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			t.Errorf("Expected method GET, got %s", r.Method)
		}
		if r.URL.Path != "/listExperiments" {
			t.Errorf("Expected path /listExperiments, got %s", r.URL.Path)
		}
		if r.Header.Get("X-Test-Header") != "test-value" {
			t.Errorf("Expected header X-Test-Header: test-value, got %s", r.Header.Get("X-Test-Header"))
		}
		if r.Header.Get("User-Agent") != "kruize-load-test" {
			t.Errorf("Expected User-Agent kruize-load-test, got %s", r.Header.Get("User-Agent"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"success"}`))
	}))
	defer server.Close()

	client := NewClient(
		WithTimeout(5*time.Second),
		WithHeader("User-Agent", "kruize-load-test"),
		WithBaseURL(server.URL),
	)

	req := NewRequest("GET", "/listExperiments")
	req.WithHeader("X-Test-Header", "test-value")

	resp, err := client.Do(context.Background(), req)
	if err != nil {
		t.Fatalf("Error executing request: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if resp.GetHeader("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type: application/json, got %s", resp.GetHeader("Content-Type"))
	}
	if resp.BodyString() != `{"message":"success"}` {
		t.Errorf("Unexpected body %s", resp.BodyString())
	}
	if resp.ResponseTime <= 0 {
		t.Errorf("Expected positive response time, got %v", resp.ResponseTime)
	}
}

func TestClient_PostJSON(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected method POST, got %s", r.Method)
		}
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	payload := []map[string]string{{"experiment_name": "exp-1"}}
	resp, err := client.PostJSON(context.Background(), "/createExperiment", payload)
	if err != nil {
		t.Fatalf("Error executing request: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("Expected success, got %d", resp.StatusCode)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", gotContentType)
	}

	var decoded []map[string]string
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("Body is not JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["experiment_name"] != "exp-1" {
		t.Errorf("Unexpected body %s", gotBody)
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(WithBaseURL(url), WithTimeout(time.Second))
	if _, err := client.PostJSON(context.Background(), "/createMetricProfile", map[string]string{}); err == nil {
		t.Error("Expected an error for a closed server")
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithTimeout(0))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Do(ctx, NewRequest("GET", "/")); err == nil {
		t.Error("Expected an error when the context expires")
	}
}

func TestClient_WithOptions(t *testing.T) {
	timeout := 10 * time.Second
	baseURL := "http://127.0.0.1:8080"
	headerKey := "X-Test"
	headerValue := "test-value"

	client := NewClient(
		WithTimeout(timeout),
		WithBaseURL(baseURL),
		WithHeader(headerKey, headerValue),
	)

	if client.httpClient.Timeout != timeout {
		t.Errorf("Expected timeout %v, got %v", timeout, client.httpClient.Timeout)
	}
	if client.BaseURL() != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.BaseURL())
	}
	if client.headers[headerKey] != headerValue {
		t.Errorf("Expected header %s: %s, got %s", headerKey, headerValue, client.headers[headerKey])
	}

	if NewClient().httpClient.Timeout != DefaultTimeout {
		t.Errorf("Expected default timeout %v", DefaultTimeout)
	}
}
