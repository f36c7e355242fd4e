package fetch

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xobust/hitta-ram/pkg/models"
)

func TestClientSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		fmt.Fprint(w, "<html><body>ok</body></html>")
	}))
	defer ts.Close()

	body, err := New().Get(ts.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !strings.Contains(body, "ok") {
		t.Errorf("unexpected body: %q", body)
	}
	if gotUA != UserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, UserAgent)
	}
	if !strings.Contains(gotAccept, "text/html") {
		t.Errorf("Accept = %q, want text/html", gotAccept)
	}
}

func TestClientRefetchesSameURL(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			hits++
		}
		fmt.Fprintf(w, "<html><body>visit %d</body></html>", hits)
	}))
	defer ts.Close()

	c := New()
	if _, err := c.Get(ts.URL); err != nil {
		t.Fatalf("first Get failed: %v", err)
	}
	body, err := c.Get(ts.URL)
	if err != nil {
		t.Fatalf("second Get of the same URL failed: %v", err)
	}
	if !strings.Contains(body, "visit 2") {
		t.Errorf("second Get body = %q, want a fresh fetch", body)
	}
}

func TestClientNon2xxIsFetchFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := New().Get(ts.URL)
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}
	if !errors.Is(err, models.ErrFetchFailed) {
		t.Errorf("error %v should wrap ErrFetchFailed", err)
	}
}

type stubFetcher struct {
	body string
	err  error
}

func (s *stubFetcher) Get(string) (string, error) { return s.body, s.err }

func TestFallbackUsesSecondaryOnFailure(t *testing.T) {
	f := &Fallback{
		Primary:   &stubFetcher{err: models.ErrFetchFailed},
		Secondary: &stubFetcher{body: "rendered"},
	}
	body, err := f.Get("https://example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if body != "rendered" {
		t.Errorf("body = %q, want %q", body, "rendered")
	}
}

func TestFallbackSkipsSecondaryOnSuccess(t *testing.T) {
	f := &Fallback{
		Primary:   &stubFetcher{body: "static"},
		Secondary: &stubFetcher{body: "rendered"},
	}
	body, err := f.Get("https://example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if body != "static" {
		t.Errorf("body = %q, want %q", body, "static")
	}
}
