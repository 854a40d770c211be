package diag

import (
	"errors"
	"strings"
	"testing"
)

func TestDiagnosticErrorFormat(t *testing.T) {
	d := Lex("main.qml", 3, 7, "unexpected character")
	got := d.Error()
	want := "main.qml:3:7: lex-error: unexpected character"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDiagnosticWithoutPositionUsesDash(t *testing.T) {
	d := IOFailure("main.qml", errors.New("permission denied"))
	if !strings.Contains(d.Error(), "main.qml:-: io-failure: permission denied") {
		t.Fatalf("unexpected format: %s", d.Error())
	}
}

func TestAmbiguousAndNoMatchHelpers(t *testing.T) {
	amb := Ambiguous("main.qml", "Rectangle", 3)
	if amb.Kind != KindSelectorAmbiguous {
		t.Fatalf("unexpected kind: %s", amb.Kind)
	}
	nm := NoMatch("main.qml", "Rectangle:footer")
	if nm.Kind != KindSelectorNoMatch {
		t.Fatalf("unexpected kind: %s", nm.Kind)
	}
}

func TestUnifiedDiffPlain(t *testing.T) {
	out := UnifiedDiff("main.qml", "a\nb\nc\n", "a\nx\nc\n", 3, false)
	if !strings.Contains(out, "-b") || !strings.Contains(out, "+x") {
		t.Fatalf("unexpected diff output: %s", out)
	}
}

func TestUnifiedDiffColorized(t *testing.T) {
	out := UnifiedDiff("main.qml", "a\n", "b\n", 3, true)
	if out == "" {
		t.Fatal("expected non-empty colorized diff")
	}
}
