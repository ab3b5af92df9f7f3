package evolution

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/evogo/evolution/models"
)

// newTestClient spins up a fake gateway and a client pointed at it.
func newTestClient(t *testing.T, cfg Config, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	if cfg.APIKey == "" {
		cfg.APIKey = "test-key"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	client, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func TestRequestSendsAPIKeyHeader(t *testing.T) {
	var gotKey, gotContentType string
	client := newTestClient(t, Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("apikey")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{}`))
	}))

	_, err := client.Request(context.Background(), http.MethodPost, "/instance/create", &RequestOptions{
		Body: map[string]any{"instanceName": "bot1"},
	})
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if gotKey != "test-key" {
		t.Errorf("apikey header = %q, want test-key", gotKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
}

func TestRequestReturnsRawSuccessBody(t *testing.T) {
	client := newTestClient(t, Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":"created"}`))
	}))

	raw, err := client.Request(context.Background(), http.MethodPost, "/instance/create", nil)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if string(raw) != `{"status":"created"}` {
		t.Errorf("raw = %s", raw)
	}
}

func TestRequestErrorTaxonomy(t *testing.T) {
	var status int
	var body string
	client := newTestClient(t, Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))

	call := func(t *testing.T, code int, payload string) error {
		t.Helper()
		status, body = code, payload
		_, err := client.Request(context.Background(), http.MethodGet, "/instance/fetchInstances", nil)
		if err == nil {
			t.Fatal("Request() error = nil, want taxonomy error")
		}
		return err
	}

	t.Run("401 authentication", func(t *testing.T) {
		err := call(t, http.StatusUnauthorized, `{"status":401,"error":"Unauthorized","response":{"message":["Invalid API key"]}}`)
		var authErr *AuthenticationError
		if !errors.As(err, &authErr) {
			t.Fatalf("error = %T, want *AuthenticationError", err)
		}
		if authErr.StatusCode != 401 {
			t.Errorf("StatusCode = %d, want 401", authErr.StatusCode)
		}
		if authErr.Message != "Invalid API key" {
			t.Errorf("Message = %q, want Invalid API key", authErr.Message)
		}
	})

	t.Run("404 not found", func(t *testing.T) {
		err := call(t, http.StatusNotFound, `{"status":404,"error":"Not Found","response":{"message":["Instance ghost not found"]}}`)
		var nfErr *NotFoundError
		if !errors.As(err, &nfErr) {
			t.Fatalf("error = %T, want *NotFoundError", err)
		}
		if nfErr.Message != "Instance ghost not found" {
			t.Errorf("Message = %q", nfErr.Message)
		}
	})

	t.Run("400 remote validation", func(t *testing.T) {
		err := call(t, http.StatusBadRequest, `{"status":400,"error":"Bad Request","response":{"message":["number is required"]}}`)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("error = %T, want *ValidationError", err)
		}
		if valErr.Source != ValidationRemote {
			t.Errorf("Source = %q, want remote", valErr.Source)
		}
		if valErr.Message != "number is required" {
			t.Errorf("Message = %q", valErr.Message)
		}
		if valErr.Fragment == "" {
			t.Error("Fragment is empty, want payload copy")
		}
	})

	t.Run("500 plain api error", func(t *testing.T) {
		err := call(t, http.StatusInternalServerError, `boom`)
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error = %T, want *APIError", err)
		}
		if apiErr.StatusCode != 500 {
			t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
		}
		if apiErr.Message != "Internal Server Error" {
			t.Errorf("Message = %q, want status text fallback", apiErr.Message)
		}
		var nfErr *NotFoundError
		if errors.As(err, &nfErr) {
			t.Error("plain 500 matched *NotFoundError")
		}
	})

	t.Run("subtypes unwrap to the root", func(t *testing.T) {
		err := call(t, http.StatusUnauthorized, `{"message":"nope"}`)
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatal("*AuthenticationError did not unwrap to *APIError")
		}
		if apiErr.StatusCode != 401 {
			t.Errorf("unwrapped StatusCode = %d, want 401", apiErr.StatusCode)
		}
	})
}

func TestRequestRetriesOn5xx(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, Config{RetryCount: 2}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))

	raw, err := client.Request(context.Background(), http.MethodGet, "/instance/fetchInstances", nil)
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Errorf("raw = %s", raw)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("gateway hits = %d, want 3", got)
	}
}

func TestRequestDoesNotRetryWhenDisabled(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, Config{RetryCount: 0}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Request(context.Background(), http.MethodGet, "/instance/fetchInstances", nil)
	if err == nil {
		t.Fatal("Request() error = nil, want *APIError")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("gateway hits = %d, want 1", got)
	}
}

func TestRequestTimeout(t *testing.T) {
	client := newTestClient(t, Config{Timeout: 50 * time.Millisecond}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))

	_, err := client.Request(context.Background(), http.MethodGet, "/instance/fetchInstances", nil)
	var toErr *TimeoutError
	if !errors.As(err, &toErr) {
		t.Fatalf("error = %v (%T), want *TimeoutError", err, err)
	}
	if toErr.Err == nil {
		t.Error("TimeoutError.Err = nil, want transport cause")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Error("*TimeoutError did not unwrap to *APIError")
	}
}

func TestRequestContextDeadline(t *testing.T) {
	client := newTestClient(t, Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Request(ctx, http.MethodGet, "/instance/fetchInstances", nil)
	var toErr *TimeoutError
	if !errors.As(err, &toErr) {
		t.Fatalf("error = %v (%T), want *TimeoutError", err, err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("errors.Is(err, context.DeadlineExceeded) = false, want true")
	}
}

func TestResolvePathPlaceholder(t *testing.T) {
	t.Run("explicit instance escaped", func(t *testing.T) {
		var gotPath string
		client := newTestClient(t, Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.EscapedPath()
			w.Write([]byte(`{}`))
		}))

		_, err := client.Request(context.Background(), http.MethodGet, "/instance/connect/{instance}", &RequestOptions{Instance: "bot one"})
		if err != nil {
			t.Fatalf("Request() error = %v", err)
		}
		if gotPath != "/instance/connect/bot%20one" {
			t.Errorf("path = %q, want /instance/connect/bot%%20one", gotPath)
		}
	})

	t.Run("default instance fallback", func(t *testing.T) {
		var gotPath string
		client := newTestClient(t, Config{DefaultInstance: "primary"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(`{}`))
		}))

		_, err := client.Request(context.Background(), http.MethodGet, "/instance/connect/{instance}", nil)
		if err != nil {
			t.Fatalf("Request() error = %v", err)
		}
		if gotPath != "/instance/connect/primary" {
			t.Errorf("path = %q, want /instance/connect/primary", gotPath)
		}
	})

	t.Run("unresolvable placeholder", func(t *testing.T) {
		var hits atomic.Int32
		client := newTestClient(t, Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write([]byte(`{}`))
		}))

		_, err := client.Request(context.Background(), http.MethodGet, "/instance/connect/{instance}", nil)
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("error = %v (%T), want *ConfigurationError", err, err)
		}
		if hits.Load() != 0 {
			t.Error("gateway was contacted despite missing instance name")
		}
	})

	t.Run("plain path untouched", func(t *testing.T) {
		var gotPath string
		client := newTestClient(t, Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(`{}`))
		}))

		if _, err := client.Request(context.Background(), http.MethodGet, "/instance/fetchInstances", nil); err != nil {
			t.Fatalf("Request() error = %v", err)
		}
		if gotPath != "/instance/fetchInstances" {
			t.Errorf("path = %q", gotPath)
		}
	})
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy gateway", func(t *testing.T) {
		client := newTestClient(t, Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":200,"message":"Welcome to the Evolution API"}`))
		}))
		if !client.HealthCheck(context.Background()) {
			t.Error("HealthCheck() = false, want true")
		}
	})

	t.Run("failing gateway", func(t *testing.T) {
		client := newTestClient(t, Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		if client.HealthCheck(context.Background()) {
			t.Error("HealthCheck() = true, want false")
		}
	})

	t.Run("unreachable gateway", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		cfg := Config{BaseURL: srv.URL, APIKey: "test-key", Timeout: time.Second}
		client, err := New(cfg, zap.NewNop())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		t.Cleanup(client.Close)
		srv.Close()

		if client.HealthCheck(context.Background()) {
			t.Error("HealthCheck() = true, want false")
		}
	})
}

func TestNewRejectsBadConfig(t *testing.T) {
	var cfgErr *ConfigurationError
	if _, err := New(Config{}, nil); !errors.As(err, &cfgErr) {
		t.Fatalf("New() error = %v, want *ConfigurationError", err)
	}
}

func TestDecodeIntoModelValidation(t *testing.T) {
	var out models.SendResponse
	err := decodeInto(json.RawMessage(`{"status":123}`), &out)
	if err == nil {
		t.Fatal("decodeInto() error = nil, want model validation error")
	}
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %T, want *ValidationError", err)
	}
	if valErr.Source != ValidationModel {
		t.Errorf("Source = %q, want model", valErr.Source)
	}
	if valErr.Field != "status" {
		t.Errorf("Field = %q, want status", valErr.Field)
	}
	if valErr.Fragment != `{"status":123}` {
		t.Errorf("Fragment = %q", valErr.Fragment)
	}
}

func TestTruncateFragment(t *testing.T) {
	long := make([]byte, fragmentLimit+100)
	for i := range long {
		long[i] = 'x'
	}
	got := truncateFragment(long)
	if len(got) != fragmentLimit+3 {
		t.Errorf("len = %d, want %d", len(got), fragmentLimit+3)
	}
	if got[len(got)-3:] != "..." {
		t.Errorf("fragment does not end with ellipsis: %q", got[len(got)-6:])
	}

	if got := truncateFragment([]byte("  {\"a\":1}  ")); got != `{"a":1}` {
		t.Errorf("truncateFragment() = %q, want trimmed payload", got)
	}
}

func TestExtractMessageShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"flat string", `{"message":"Unauthorized"}`, "Unauthorized"},
		{"message list", `{"message":["first","second"]}`, "first; second"},
		{"nested response", `{"error":"Bad Request","response":{"message":["number is required"]}}`, "number is required"},
		{"error only", `{"error":"Bad Request"}`, "Bad Request"},
		{"not json", `<html>panic</html>`, "fallback"},
		{"empty body", ``, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractMessage([]byte(tt.body), "fallback"); got != tt.want {
				t.Errorf("extractMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
