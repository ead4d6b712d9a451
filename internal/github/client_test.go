package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/plugmarket/plugmarket/internal/logger"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(Options{
		Token:   "test-token",
		Repo:    "owner/repo",
		Branch:  "main",
		BaseURL: srv.URL,
	}, logger.New("error", false))

	return client, srv
}

func TestGetFile(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/owner/repo/contents/plugins.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("ref"); got != "main" {
			t.Errorf("ref = %q, want main", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}

		// GitHub wraps base64 content with newlines.
		encoded := base64.StdEncoding.EncodeToString([]byte(`{"version":"1.0.0"}`))
		wrapped := encoded[:10] + "\n" + encoded[10:]
		_ = json.NewEncoder(w).Encode(map[string]string{
			"content":  wrapped,
			"encoding": "base64",
			"sha":      "abc123",
		})
	}))

	file, err := client.GetFile(context.Background(), "plugins.json")
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if string(file.Content) != `{"version":"1.0.0"}` {
		t.Errorf("Content = %q", file.Content)
	}
	if file.SHA != "abc123" {
		t.Errorf("SHA = %q, want abc123", file.SHA)
	}
}

func TestGetFileNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetFile(context.Background(), "plugins.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetFile() error = %v, want ErrNotFound", err)
	}
}

func TestPutFile(t *testing.T) {
	var got putRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q, want PUT", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))

	err := client.PutFile(context.Background(), "plugins/p/plugin.py", "添加插件: p", []byte("print('hi')"), "")
	if err != nil {
		t.Fatalf("PutFile() error = %v", err)
	}

	if got.Message != "添加插件: p" {
		t.Errorf("message = %q", got.Message)
	}
	if got.Branch != "main" {
		t.Errorf("branch = %q, want main", got.Branch)
	}
	if got.SHA != "" {
		t.Errorf("sha = %q, want empty on create", got.SHA)
	}
	decoded, err := base64.StdEncoding.DecodeString(got.Content)
	if err != nil {
		t.Fatalf("content is not base64: %v", err)
	}
	if string(decoded) != "print('hi')" {
		t.Errorf("content = %q", decoded)
	}
}

func TestPutFileAttachesSHA(t *testing.T) {
	var got putRequest
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))

	if err := client.PutFile(context.Background(), "plugins.json", "msg", []byte("{}"), "oldsha"); err != nil {
		t.Fatalf("PutFile() error = %v", err)
	}
	if got.SHA != "oldsha" {
		t.Errorf("sha = %q, want oldsha", got.SHA)
	}
}

func TestPutFileConflict(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	err := client.PutFile(context.Background(), "plugins.json", "msg", []byte("{}"), "stale")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("PutFile() error = %v, want ErrConflict", err)
	}
}

func TestPutFileUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"rate limited"}`))
	}))

	err := client.PutFile(context.Background(), "plugins.json", "msg", []byte("{}"), "")
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("PutFile() error = %v, want StatusError", err)
	}
	if serr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %v, want 403", serr.StatusCode)
	}
}
