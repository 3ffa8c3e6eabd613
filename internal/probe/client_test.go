package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"edgeaudit/internal/model"
)

func TestRemote_DecodesProbeResponse(t *testing.T) {
	var gotAuth, gotURL, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotURL = r.URL.Query().Get("url")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"region":"fra1","ttfb":87,"status":200,"headers":{"x-vercel-cache":"HIT","x-unknown":"zzz"}}`))
	}))
	defer srv.Close()

	r := NewRemote(srv.URL+"/", "s3cret", nil)
	got, err := r.Probe(context.Background(), "https://nike.com/?a=b", "fra1")
	if err != nil {
		t.Fatal(err)
	}

	if gotAuth != "Bearer s3cret" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotURL != "https://nike.com/?a=b" {
		t.Errorf("url param = %q", gotURL)
	}
	if gotPath != "/api/probes/fra1" {
		t.Errorf("path = %q", gotPath)
	}
	if got.Region != "fra1" || got.TTFB != 87 || got.Status != 200 || got.Failed() {
		t.Errorf("got %+v", got)
	}
	if v, _ := got.Headers.Get(model.HeaderVercelCache); v != "HIT" || len(got.Headers) != 1 {
		t.Errorf("headers = %v", got.Headers)
	}
}

func TestRemote_ProbeErrorIsData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"region":"syd1","ttfb":6001,"status":0,"headers":{},"error":"Timeout after 6000ms"}`))
	}))
	defer srv.Close()

	got, err := NewRemote(srv.URL, "x", nil).Probe(context.Background(), "https://apple.com", "syd1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Error != "Timeout after 6000ms" || got.Status != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestRemote_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewRemote(srv.URL, "x", nil).Probe(context.Background(), "https://apple.com", "iad1")
	if err == nil || err.Error() != "Probe iad1 returned 401" {
		t.Errorf("err = %v", err)
	}
}

func TestRemote_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	if _, err := NewRemote(srv.URL, "x", nil).Probe(context.Background(), "https://apple.com", "iad1"); err == nil {
		t.Error("expected decode error")
	}
}

func TestRemote_EndpointOverride(t *testing.T) {
	r := NewRemote("https://audit.example.com", "x", map[string]string{"lhr1": "https://lhr1.example.com/api/probes/lhr1"})
	if got := r.Endpoint("lhr1"); got != "https://lhr1.example.com/api/probes/lhr1" {
		t.Errorf("lhr1 endpoint = %q", got)
	}
	if got := r.Endpoint("iad1"); got != "https://audit.example.com/api/probes/iad1" {
		t.Errorf("iad1 endpoint = %q", got)
	}
}

func TestLocal_NeverErrors(t *testing.T) {
	got, err := NewLocal(NewExecutor()).Probe(context.Background(), "not a url", "iad1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Failed() {
		t.Errorf("got %+v, want failed result", got)
	}
}
