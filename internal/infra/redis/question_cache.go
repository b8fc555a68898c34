package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-proof-service/internal/app"
	"trivia-proof-service/internal/domain"
)

// QuestionCache caches a session's questions in Redis (hash per session) in front of a
// durable app.QuestionStore and fills it from that store on a miss.
// Questions are stored as: HSET quiz:{sessionID}:questions {questionID} {json}
// Every append bumps quiz:{sessionID}:questions:gen; a fill only writes if the generation
// it read before loading is still current.
type QuestionCache struct {
	client  *redis.Client
	backing app.QuestionStore
	ttl     time.Duration
	sf      singleflight.Group
}

// KEYS[1] questions hash, KEYS[2] generation; ARGV[1] expected generation, ARGV[2] ttl ms,
// then field/value pairs.
var fillScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
  return 0
end
for i = 3, #ARGV, 2 do
  redis.call('HSET', KEYS[1], ARGV[i], ARGV[i + 1])
end
if tonumber(ARGV[2]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 1
`)

func NewQuestionCache(client *redis.Client, backing app.QuestionStore, ttl time.Duration) *QuestionCache {
	return &QuestionCache{client: client, backing: backing, ttl: ttl}
}

// AppendQuestions writes through to the backing store and drops the cached copy.
func (c *QuestionCache) AppendQuestions(ctx context.Context, sessionID string, questions []domain.Question) ([]domain.Question, error) {
	stored, err := c.backing.AppendQuestions(ctx, sessionID, questions)
	if err != nil {
		return nil, err
	}
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, c.generationKey(sessionID))
	pipe.Del(ctx, c.questionsKey(sessionID))
	_, _ = pipe.Exec(ctx)
	return stored, nil
}

func (c *QuestionCache) ListQuestions(ctx context.Context, sessionID string) ([]domain.Question, error) {
	cached, err := c.client.HGetAll(ctx, c.questionsKey(sessionID)).Result()
	if err == nil && len(cached) > 0 {
		if questions, ok := decodeQuestions(cached); ok {
			return questions, nil
		}
	}
	return c.fill(ctx, sessionID)
}

func (c *QuestionCache) GetQuestion(ctx context.Context, sessionID, questionID string) (domain.Question, error) {
	key := c.questionsKey(sessionID)
	raw, err := c.client.HGet(ctx, key, questionID).Result()
	if err == nil {
		var q domain.Question
		if json.Unmarshal([]byte(raw), &q) == nil {
			return q, nil
		}
	}
	if errors.Is(err, redis.Nil) {
		// The hash may predate a re-ingestion; the store decides.
		if n, existsErr := c.client.Exists(ctx, key).Result(); existsErr == nil && n > 0 {
			return c.backing.GetQuestion(ctx, sessionID, questionID)
		}
	}

	questions, err := c.fill(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotIngested) {
			return domain.Question{}, domain.ErrQuestionNotFound
		}
		return domain.Question{}, err
	}
	for _, q := range questions {
		if q.ID == questionID {
			return q, nil
		}
	}
	return c.backing.GetQuestion(ctx, sessionID, questionID)
}

func (c *QuestionCache) fill(ctx context.Context, sessionID string) ([]domain.Question, error) {
	gen, err := c.client.Get(ctx, c.generationKey(sessionID)).Result()
	if err != nil {
		gen = "0"
	}

	// Keyed by generation so callers arriving after an append never share an older load.
	result, err, _ := c.sf.Do(sessionID+"@"+gen, func() (interface{}, error) {
		key := c.questionsKey(sessionID)

		// re-check cache in case another goroutine filled it
		if cached, err := c.client.HGetAll(ctx, key).Result(); err == nil && len(cached) > 0 {
			if questions, ok := decodeQuestions(cached); ok {
				return questions, nil
			}
		}

		questions, err := c.backing.ListQuestions(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return questions, nil
		}

		args := make([]interface{}, 0, 2+2*len(questions))
		args = append(args, gen, c.ttlWithJitter().Milliseconds())
		for _, q := range questions {
			data, err := json.Marshal(q)
			if err != nil {
				return questions, nil
			}
			args = append(args, q.ID, string(data))
		}
		_ = fillScript.Run(ctx, c.client, []string{key, c.generationKey(sessionID)}, args...).Err()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) questionsKey(sessionID string) string {
	return "quiz:" + sessionID + ":questions"
}

func (c *QuestionCache) generationKey(sessionID string) string {
	return c.questionsKey(sessionID) + ":gen"
}

func decodeQuestions(cached map[string]string) ([]domain.Question, bool) {
	questions := make([]domain.Question, 0, len(cached))
	for _, raw := range cached {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, false
		}
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].Index < questions[j].Index })
	return questions, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int64N(jitterMax+1))
}
