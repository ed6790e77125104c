package format_test

import (
	"strings"
	"testing"

	"github.com/odavlstudio/verax-sub011/internal/format"
)

func TestASCII_BasicTable(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("Promise", "Status", "Confidence")
	tb.Row("save-button", "CONFIRMED", 0.95)
	tb.Row("checkout-link", "SUSPECTED", 0.35)
	out := tb.String()

	for _, want := range []string{"Promise", "save-button", "0.95"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "PROMISE") {
		t.Errorf("headers must keep their given case:\n%s", out)
	}
	// ASCII mode uses StyleLight box-drawing characters.
	if !strings.Contains(out, "───") {
		t.Errorf("expected box-drawing characters in ASCII output:\n%s", out)
	}
}

func TestMarkdown_BasicTable(t *testing.T) {
	tb := format.NewTable(format.Markdown)
	tb.Header("Type", "Count")
	tb.Row("silent-failure", 2)
	tb.Row("promise-fulfilled", 7)
	out := tb.String()

	if !strings.Contains(out, "| Type") {
		t.Errorf("expected markdown header with '| Type':\n%s", out)
	}
	if !strings.Contains(out, "---") {
		t.Errorf("expected markdown separator '---':\n%s", out)
	}
}

func TestFooterAndAlign(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("Type", "Count")
	tb.Row("silent-failure", 2)
	tb.Footer("TOTAL", 2)
	tb.RightAlign(2)
	out := tb.String()

	if !strings.Contains(out, "TOTAL") {
		t.Errorf("expected footer 'TOTAL' in output:\n%s", out)
	}
}

func TestHelpers(t *testing.T) {
	if got := format.Percent(0.856); got != "85.6%" {
		t.Errorf("Percent = %q", got)
	}
	if got := format.Truncate("interaction with #save", 10); got != "interac..." {
		t.Errorf("Truncate = %q", got)
	}
	if format.BoolMark(true) != "✓" || format.BoolMark(false) != "✗" {
		t.Error("BoolMark marks wrong")
	}
}
