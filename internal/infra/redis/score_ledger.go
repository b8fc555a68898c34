package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-proof-service/internal/domain"
)

// applyDeltaScript increments and stamps a score row in one atomic step.
// KEYS[1] score hash, KEYS[2] session player set.
// ARGV delta, proof hash, updated_at (unix nanos), player.
var applyDeltaScript = redis.NewScript(`
local total = redis.call('HINCRBY', KEYS[1], 'total', ARGV[1])
redis.call('HSET', KEYS[1], 'proof', ARGV[2], 'updated_at', ARGV[3], 'player', ARGV[4])
redis.call('SADD', KEYS[2], ARGV[4])
return total
`)

// ScoreLedger keeps score rows as Redis hashes:
//
//	HSET quiz:{sessionID}:score:{player} total .. proof .. updated_at ..
//	SADD quiz:{sessionID}:players {player}
type ScoreLedger struct {
	client *redis.Client
	now    func() time.Time
}

func NewScoreLedger(client *redis.Client) *ScoreLedger {
	return NewScoreLedgerWithClock(client, time.Now)
}

// NewScoreLedgerWithClock allows deterministic timestamps in tests.
func NewScoreLedgerWithClock(client *redis.Client, now func() time.Time) *ScoreLedger {
	return &ScoreLedger{client: client, now: now}
}

func (l *ScoreLedger) ApplyDelta(ctx context.Context, sessionID, playerID string, delta int, proofHash domain.Hash) (domain.ScoreEntry, error) {
	updatedAt := l.now().UTC()
	total, err := applyDeltaScript.Run(ctx, l.client,
		[]string{l.scoreKey(sessionID, playerID), l.playersKey(sessionID)},
		delta, proofHash.String(), updatedAt.UnixNano(), playerID,
	).Int()
	if err != nil {
		return domain.ScoreEntry{}, fmt.Errorf("apply delta: %w", err)
	}
	return domain.ScoreEntry{
		SessionID:           sessionID,
		PlayerID:            playerID,
		TotalScore:          total,
		LastProofCommitment: proofHash,
		UpdatedAt:           updatedAt,
	}, nil
}

func (l *ScoreLedger) Leaderboard(ctx context.Context, sessionID string) ([]domain.ScoreEntry, error) {
	players, err := l.client.SMembers(ctx, l.playersKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	if len(players) == 0 {
		return []domain.ScoreEntry{}, nil
	}

	pipe := l.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(players))
	for i, player := range players {
		cmds[i] = pipe.HGetAll(ctx, l.scoreKey(sessionID, player))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}

	entries := make([]domain.ScoreEntry, 0, len(players))
	for i, cmd := range cmds {
		entry, err := parseScore(sessionID, players[i], cmd.Val())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	domain.SortLeaderboard(entries)
	return entries, nil
}

func parseScore(sessionID, player string, fields map[string]string) (domain.ScoreEntry, error) {
	total, err := strconv.Atoi(fields["total"])
	if err != nil {
		return domain.ScoreEntry{}, fmt.Errorf("score %s/%s total: %w", sessionID, player, err)
	}
	nanos, err := strconv.ParseInt(fields["updated_at"], 10, 64)
	if err != nil {
		return domain.ScoreEntry{}, fmt.Errorf("score %s/%s updated_at: %w", sessionID, player, err)
	}
	proofHash, err := domain.ParseHash(fields["proof"])
	if err != nil {
		return domain.ScoreEntry{}, fmt.Errorf("score %s/%s proof: %w", sessionID, player, err)
	}
	return domain.ScoreEntry{
		SessionID:           sessionID,
		PlayerID:            player,
		TotalScore:          total,
		LastProofCommitment: proofHash,
		UpdatedAt:           time.Unix(0, nanos).UTC(),
	}, nil
}

// Keys share the {sessionID} hash tag so the script stays on one cluster slot.
func (l *ScoreLedger) scoreKey(sessionID, playerID string) string {
	return "quiz:{" + sessionID + "}:score:" + playerID
}

func (l *ScoreLedger) playersKey(sessionID string) string {
	return "quiz:{" + sessionID + "}:players"
}
