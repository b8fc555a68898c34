// Package trivia fetches raw questions from the Open Trivia Database.
package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"trivia-proof-service/internal/domain"
)

const DefaultBaseURL = "https://opentdb.com"

var responseCodeMessages = map[int]string{
	1: "No results found for the specified parameters",
	2: "Invalid parameter in request",
	3: "Token not found",
	4: "Token exhausted, reset needed",
}

type apiQuestion struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []apiQuestion `json:"results"`
}

// Client talks to the OpenTDB api.php endpoint. Requests are spaced by a limiter because
// the public API allows one request per IP every few seconds.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client; minInterval <= 0 disables throttling.
func NewClient(baseURL string, timeout, minInterval time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// FetchQuestions returns the upstream questions as delivered, entities still encoded.
// Every failure unwraps to domain.ErrUpstream.
func (c *Client) FetchQuestions(ctx context.Context, opts domain.IngestOptions) ([]domain.RawQuestion, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(opts), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.Upstream("OpenTDB API error: " + strconv.Itoa(resp.StatusCode))
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode OpenTDB response: %w", domain.ErrUpstream, err)
	}
	if body.ResponseCode != 0 {
		msg, ok := responseCodeMessages[body.ResponseCode]
		if !ok {
			msg = "Unknown OpenTDB error"
		}
		return nil, domain.Upstream(msg)
	}

	questions := make([]domain.RawQuestion, 0, len(body.Results))
	for _, q := range body.Results {
		questions = append(questions, domain.RawQuestion{
			Category:         q.Category,
			Type:             q.Type,
			Difficulty:       q.Difficulty,
			Prompt:           q.Question,
			CorrectAnswer:    q.CorrectAnswer,
			IncorrectAnswers: q.IncorrectAnswers,
		})
	}
	return questions, nil
}

func (c *Client) buildURL(opts domain.IngestOptions) string {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(opts.Count))
	if opts.Category > 0 {
		params.Set("category", strconv.Itoa(opts.Category))
	}
	if opts.Difficulty != "" && opts.Difficulty != "any" {
		params.Set("difficulty", opts.Difficulty)
	}
	if opts.Type != "" && opts.Type != "any" {
		params.Set("type", opts.Type)
	}
	return c.baseURL + "/api.php?" + params.Encode()
}
