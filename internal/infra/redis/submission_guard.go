package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SubmissionGuard claims (session, player, question) triples with SET NX so the first
// submission wins across every instance sharing the Redis.
type SubmissionGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSubmissionGuard keeps claims for ttl; zero keeps them until the key is deleted.
func NewSubmissionGuard(client *redis.Client, ttl time.Duration) *SubmissionGuard {
	return &SubmissionGuard{client: client, ttl: ttl}
}

func (g *SubmissionGuard) Claim(ctx context.Context, sessionID, playerID, questionID string) (bool, error) {
	return g.client.SetNX(ctx, g.key(sessionID, playerID, questionID), "1", g.ttl).Result()
}

func (g *SubmissionGuard) Release(ctx context.Context, sessionID, playerID, questionID string) error {
	return g.client.Del(ctx, g.key(sessionID, playerID, questionID)).Err()
}

func (g *SubmissionGuard) key(sessionID, playerID, questionID string) string {
	return "quiz:" + sessionID + ":claim:" + playerID + ":" + questionID
}
