package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDockerInvokeAgainstRealHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/invoke" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	d := &Docker{cfg: DefaultDockerConfig()}
	endpoint := strings.TrimPrefix(srv.URL, "http://")
	resp, err := d.Invoke(context.Background(), endpoint, []byte("payload"))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if string(resp.Output) != "ok" {
		t.Fatalf("Output = %q, want %q", resp.Output, "ok")
	}
}

func TestDockerInvokeNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := &Docker{cfg: DefaultDockerConfig()}
	endpoint := strings.TrimPrefix(srv.URL, "http://")
	if _, err := d.Invoke(context.Background(), endpoint, nil); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestDockerProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := &Docker{cfg: DefaultDockerConfig()}
	endpoint := strings.TrimPrefix(srv.URL, "http://")
	if err := d.Probe(context.Background(), endpoint); err != nil {
		t.Fatalf("Probe: %v", err)
	}
}

func TestDefaultDockerConfig(t *testing.T) {
	cfg := DefaultDockerConfig()
	if cfg.AgentPort != 9000 {
		t.Errorf("AgentPort = %d, want 9000", cfg.AgentPort)
	}
	if cfg.Network == "" {
		t.Error("Network should not be empty")
	}
}
