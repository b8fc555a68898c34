package commitment

import (
	"testing"

	"trivia-proof-service/internal/domain"
)

func TestCommitKnownVector(t *testing.T) {
	// sha256("true")
	want := "0xb5bea41b6c623f7c09f1bf24dcae58ebab3c0cdd90ad966bc43a45b44867e12b"
	if got := Commit("True").String(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestCommitNormalizationIdempotent(t *testing.T) {
	inputs := []string{"", " ", "Paris", "  PARIS\t", "\nparis ", "Ünïcödé ", "New York City", "42"}
	for _, in := range inputs {
		if Commit(in) != Commit(Normalize(in)) {
			t.Fatalf("commit(%q) differs from commit of its normalized form", in)
		}
	}
	if Commit("  PaRiS \n") != Commit("paris") {
		t.Fatalf("expected case and whitespace variants to match")
	}
	if Commit("paris") == Commit("pari s") {
		t.Fatalf("expected inner whitespace to matter")
	}
}

func TestNormalizeMatchesJavaScript(t *testing.T) {
	tests := []struct{ in, want string }{
		{"\ufeffTrue\ufeff", "true"},
		{"\u00a0Paris\u3000", "paris"},
		{"\u0085x", "\u0085x"},
		{"\u0130", "i\u0307"},
		{"\u039f\u0394\u039f\u03a3", "\u03bf\u03b4\u03bf\u03c2"},
		{"\u03a3\u0391", "\u03c3\u03b1"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCommitFormat(t *testing.T) {
	s := Commit("").String()
	if len(s) != 66 || s[:2] != "0x" {
		t.Fatalf("unexpected commitment format %q", s)
	}
	parsed, err := domain.ParseHash(s)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != Commit("") {
		t.Fatalf("round trip mismatch")
	}
}

func TestEqual(t *testing.T) {
	a := Commit("a")
	if !Equal(a, Commit(" A ")) {
		t.Fatalf("expected equal commitments")
	}
	if Equal(a, Commit("b")) {
		t.Fatalf("expected different commitments")
	}
}
