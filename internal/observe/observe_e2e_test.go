//go:build e2e

package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/odavlstudio/verax-sub011/internal/capture"
	"github.com/odavlstudio/verax-sub011/internal/promise"
	"github.com/odavlstudio/verax-sub011/internal/scope"
)

const fixturePage = `<!DOCTYPE html>
<html><body>
<button id="speak" onclick="document.getElementById('out').textContent='Saved'">Speak</button>
<button id="mute" onclick="void 0">Mute</button>
<div id="out" role="status"></div>
</body></html>`

func startFixture(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(fixturePage))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestObserver_CapturesFeedbackAndSilence(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	url := startFixture(t)
	obs := New(Config{Headless: true, Timeout: 20 * time.Second, Settle: 500 * time.Millisecond})

	promises := []promise.Promise{
		{ID: "p-speak", Selector: "#speak", Interaction: "click"},
		{ID: "p-mute", Selector: "#mute", Interaction: "click"},
		{ID: "p-ghost", Selector: "#missing", Interaction: "click"},
	}
	observations, err := obs.ObserveAll(ctx, url, promises)
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if len(observations) != 3 {
		t.Fatalf("want 3 observations, got %d", len(observations))
	}

	speak := observations[0]
	if !strings.Contains(speak.AfterHTML, "Saved") {
		t.Error("feedback text missing from after document")
	}
	res := scope.Classify(speak.BeforeHTML, speak.AfterHTML)
	if res.Classification != scope.ClassInScope || !res.Meaningful {
		t.Errorf("working button must classify in-scope meaningful, got %+v", res)
	}

	mute := observations[1]
	res = scope.Classify(mute.BeforeHTML, mute.AfterHTML)
	if res.Changed {
		t.Errorf("dead button must observe no change, got %+v", res)
	}

	ghost := observations[2]
	var failed bool
	for _, o := range ghost.Outcomes {
		if o.Status == capture.StatusFailed {
			failed = true
		}
	}
	if !failed {
		t.Error("missing selector must record a failed outcome")
	}
}
