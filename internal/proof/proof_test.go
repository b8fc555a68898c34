package proof

import (
	"strings"
	"testing"

	"trivia-proof-service/internal/commitment"
	"trivia-proof-service/internal/domain"
)

const (
	sessionID  = "9b2f8a9e-5b0c-4f7e-8d1a-2c3b4d5e6f70"
	questionID = "1c8d7e6f-0a1b-4c2d-9e3f-4a5b6c7d8e9f"
	player     = "0x1111111111111111111111111111111111111111"
)

func TestToBytes32UUID(t *testing.T) {
	b, truncated := ToBytes32(sessionID)
	if truncated {
		t.Fatalf("uuid should not truncate")
	}
	want := "0x9b2f8a9e5b0c4f7e8d1a2c3b4d5e6f70" + strings.Repeat("0", 32)
	if b.String() != want {
		t.Fatalf("expected %s, got %s", want, b.String())
	}
}

func TestToBytes32OnlyCanonicalUUID(t *testing.T) {
	canonical, _ := ToBytes32(sessionID)
	aliases := []string{
		strings.ToUpper(sessionID),
		"{" + sessionID + "}",
		"urn:uuid:" + sessionID,
		strings.ReplaceAll(sessionID, "-", ""),
	}
	seen := map[domain.Bytes32]string{canonical: sessionID}
	for _, alias := range aliases {
		b, _ := ToBytes32(alias)
		if prev, ok := seen[b]; ok {
			t.Fatalf("%q encodes the same as %q", alias, prev)
		}
		seen[b] = alias
	}

	upper, truncated := ToBytes32(strings.ToUpper(sessionID))
	if !truncated {
		t.Fatalf("expected a 36 byte text id to be truncated")
	}
	if string(upper[:32]) != strings.ToUpper(sessionID)[:32] {
		t.Fatalf("expected non-canonical uuid encoded as text, got %s", upper)
	}
}

func TestToBytes32PlainString(t *testing.T) {
	b, truncated := ToBytes32("abc")
	if truncated {
		t.Fatalf("short id should not truncate")
	}
	want := "0x616263" + strings.Repeat("0", 58)
	if b.String() != want {
		t.Fatalf("expected %s, got %s", want, b.String())
	}

	long := strings.Repeat("x", 40)
	b, truncated = ToBytes32(long)
	if !truncated {
		t.Fatalf("expected truncation flag for 40 byte id")
	}
	if string(b[:]) != long[:32] {
		t.Fatalf("expected first 32 bytes kept")
	}

	exact := strings.Repeat("y", 32)
	if _, truncated := ToBytes32(exact); truncated {
		t.Fatalf("32 byte id must fit exactly")
	}
}

func TestBuildDeterministic(t *testing.T) {
	candidate := commitment.Commit("True")
	a := Build(sessionID, questionID, player, 1, candidate)
	b := Build(sessionID, questionID, player, 1, candidate)
	if a != b {
		t.Fatalf("expected identical proofs, got %+v and %+v", a, b)
	}
	if a.Player != player || a.ScoreDelta != 1 || a.Truncated {
		t.Fatalf("unexpected proof fields %+v", a)
	}
}

func TestBuildBindsEveryInput(t *testing.T) {
	candidate := commitment.Commit("True")
	base := Build(sessionID, questionID, player, 1, candidate)

	variants := map[string]domain.Proof{
		"session":   Build("0b2f8a9e-5b0c-4f7e-8d1a-2c3b4d5e6f70", questionID, player, 1, candidate),
		"question":  Build(sessionID, "2c8d7e6f-0a1b-4c2d-9e3f-4a5b6c7d8e9f", player, 1, candidate),
		"player":    Build(sessionID, questionID, "0x2222222222222222222222222222222222222222", 1, candidate),
		"delta":     Build(sessionID, questionID, player, 0, candidate),
		"candidate": Build(sessionID, questionID, player, 1, commitment.Commit("False")),
	}
	seen := map[domain.Hash]string{base.ProofHash: "base"}
	for name, p := range variants {
		if prev, ok := seen[p.ProofHash]; ok {
			t.Fatalf("changing %s collided with %s", name, prev)
		}
		seen[p.ProofHash] = name
	}
}

func TestBuildFlagsTruncation(t *testing.T) {
	p := Build(strings.Repeat("s", 33), questionID, player, 0, commitment.Commit("x"))
	if !p.Truncated {
		t.Fatalf("expected truncated flag")
	}
}
