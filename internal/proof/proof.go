// Package proof builds the deterministic digests handed to the on-chain submitter.
package proof

import (
	"crypto/sha256"
	"strconv"

	"github.com/google/uuid"

	"trivia-proof-service/internal/domain"
)

const separator = ":"

// ToBytes32 encodes an identifier into a left-justified, zero-padded 32-byte field.
// Canonical UUIDs (36 chars, lower-case, dashed) contribute their 16 raw bytes; anything
// else, including other spellings of a UUID, contributes its UTF-8 bytes. The second return
// value reports whether the identifier had to be truncated.
func ToBytes32(id string) (domain.Bytes32, bool) {
	var out domain.Bytes32
	raw := []byte(id)
	if parsed, ok := canonicalUUID(id); ok {
		raw = parsed[:]
	}
	n := copy(out[:], raw)
	return out, n < len(raw)
}

// Build derives the proof for one verification outcome. It is a pure function of its inputs.
func Build(sessionID, questionID, player string, scoreDelta int, candidate domain.Hash) domain.Proof {
	session, sessionTruncated := ToBytes32(sessionID)
	question, questionTruncated := ToBytes32(questionID)

	buf := make([]byte, 0, 66*3+len(player)+8)
	buf = append(buf, session.String()...)
	buf = append(buf, separator...)
	buf = append(buf, question.String()...)
	buf = append(buf, separator...)
	buf = append(buf, player...)
	buf = append(buf, separator...)
	buf = append(buf, candidate.String()...)
	buf = append(buf, separator...)
	buf = strconv.AppendInt(buf, int64(scoreDelta), 10)

	return domain.Proof{
		SessionID:  session,
		Player:     player,
		QuestionID: question,
		ScoreDelta: scoreDelta,
		ProofHash:  sha256.Sum256(buf),
		Truncated:  sessionTruncated || questionTruncated,
	}
}

// canonicalUUID accepts only the form uuid.UUID.String produces, so distinct identifier
// strings never share an encoding.
func canonicalUUID(id string) (uuid.UUID, bool) {
	if len(id) != 36 {
		return uuid.UUID{}, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return uuid.UUID{}, false
	}
	return parsed, true
}
