package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chromedp/cdproto/network"
	cdpruntime "github.com/chromedp/cdproto/runtime"
)

func TestCollector_CountsAndReset(t *testing.T) {
	c := newCollector()
	c.handle(&network.EventRequestWillBeSent{Request: &network.Request{Method: "GET"}})
	c.handle(&network.EventRequestWillBeSent{Request: &network.Request{Method: "POST"}})
	c.handle(&network.EventLoadingFailed{})
	c.handle(&cdpruntime.EventConsoleAPICalled{Type: cdpruntime.APITypeError})
	c.handle(&cdpruntime.EventConsoleAPICalled{Type: cdpruntime.APITypeWarning})
	c.handle(&cdpruntime.EventExceptionThrown{
		ExceptionDetails: &cdpruntime.ExceptionDetails{Text: "Uncaught (in promise) unhandled rejection"},
	})

	requests, failed, writes, _, errors, warnings, rejections := c.counts()
	if requests != 2 || failed != 1 || writes != 1 {
		t.Errorf("network counts: requests=%d failed=%d writes=%d", requests, failed, writes)
	}
	if errors != 1 || warnings != 1 || rejections != 1 {
		t.Errorf("console counts: errors=%d warnings=%d rejections=%d", errors, warnings, rejections)
	}

	c.reset()
	requests, failed, writes, blocked, errors, warnings, rejections := c.counts()
	if requests+failed+writes+blocked+errors+warnings+rejections != 0 {
		t.Error("reset must clear all counters")
	}
}

func TestIsWriteMethod(t *testing.T) {
	for m, want := range map[string]bool{
		"GET": false, "HEAD": false, "OPTIONS": false,
		"POST": true, "put": true, "PATCH": true, "DELETE": true,
	} {
		if got := isWriteMethod(m); got != want {
			t.Errorf("isWriteMethod(%q) = %v, want %v", m, got, want)
		}
	}
}

func TestDiffStateKeys(t *testing.T) {
	before := map[string]int{"local:cart": 17, "local:theme": 3, "session:token": 9}
	after := map[string]int{"local:cart": 99, "local:theme": 3, "local:draft": 1}
	got := diffStateKeys(before, after)
	want := []string{"local:cart", "local:draft", "session:token"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("changed keys (-want +got):\n%s", diff)
	}
	if diffStateKeys(before, before) != nil {
		t.Error("identical snapshots must diff to nil")
	}
}

func TestSourceResolvable(t *testing.T) {
	if SourceResolvable("") {
		t.Error("empty path must not resolve")
	}
	if SourceResolvable("/definitely/not/a/real/path") {
		t.Error("missing path must not resolve")
	}
	if !SourceResolvable(t.TempDir()) {
		t.Error("existing dir must resolve")
	}
}

func TestURLReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound) // any response counts
	}))
	defer srv.Close()

	ctx := context.Background()
	if !URLReachable(ctx, srv.URL) {
		t.Error("responding server must be reachable")
	}
	if URLReachable(ctx, "http://127.0.0.1:1/nope") {
		t.Error("refused connection must not be reachable")
	}
}
