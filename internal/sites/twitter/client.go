package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samarth30/twitter-engagement-bot/internal/core/domain"
	"github.com/samarth30/twitter-engagement-bot/internal/core/ports"
)

const DefaultBaseURL = "https://api.twitter.com/2"

// pageSize is the max_results requested per mention-timeline call.
const pageSize = 100

// Client is the adapter for the Twitter v2 API. It implements ports.Platform
// and owns the wait-for-reset retry on rate-limited fetches; posting-side
// backoff belongs to the caller, which must re-check dedup between attempts.
type Client struct {
	BaseURL     string
	BearerToken string
	UserID      string
	HTTPClient  *http.Client

	maxRetries int
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewClient(baseURL, bearerToken, userID string, maxRetries int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:     baseURL,
		BearerToken: bearerToken,
		UserID:      userID,
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
		maxRetries:  maxRetries,
		now:         time.Now,
		sleep:       ctxSleep,
	}
}

var _ ports.Platform = (*Client)(nil)

// FetchMentions requests mentions of the bot account with ID strictly
// greater than sinceID. On a rate-limit response it waits until the window
// resets (plus a one second buffer) and retries, up to maxRetries times.
func (c *Client) FetchMentions(ctx context.Context, sinceID string) (domain.MentionBatch, error) {
	q := url.Values{}
	q.Set("max_results", strconv.Itoa(pageSize))
	q.Set("tweet.fields", "created_at,author_id,conversation_id,in_reply_to_user_id,referenced_tweets,text,entities,attachments")
	q.Set("user.fields", "name,username")
	q.Set("expansions", "author_id,referenced_tweets.id")
	if sinceID != "" {
		q.Set("since_id", sinceID)
	}
	endpoint := fmt.Sprintf("%s/users/%s/mentions?%s", c.BaseURL, c.UserID, q.Encode())

	for attempt := 0; ; attempt++ {
		var res mentionsResponse
		err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &res)
		if err == nil {
			batch := domain.MentionBatch{NewestID: res.Meta.NewestID}
			for _, t := range res.Data {
				batch.Mentions = append(batch.Mentions, toDomain(t))
			}
			return batch, nil
		}

		var rl *domain.RateLimitError
		if !errors.As(err, &rl) {
			return domain.MentionBatch{}, fmt.Errorf("fetch mentions: %w: %w", domain.ErrUpstream, err)
		}
		if attempt >= c.maxRetries {
			return domain.MentionBatch{}, fmt.Errorf("fetch mentions: %w", domain.ErrRateLimitExhausted)
		}

		wait := rl.Reset.Sub(c.now()) + time.Second
		if wait < 0 {
			wait = time.Second
		}
		slog.Info("Rate limit hit while fetching mentions",
			"wait", wait, "attempt", attempt+1, "max", c.maxRetries)
		if err := c.sleep(ctx, wait); err != nil {
			return domain.MentionBatch{}, err
		}
	}
}

// GetTweet looks up a single tweet by ID with the same field set as the
// mention timeline. Used to resolve conversation roots.
func (c *Client) GetTweet(ctx context.Context, id string) (domain.Mention, error) {
	q := url.Values{}
	q.Set("tweet.fields", "created_at,author_id,conversation_id,in_reply_to_user_id,referenced_tweets,text,entities,attachments")
	endpoint := fmt.Sprintf("%s/tweets/%s?%s", c.BaseURL, url.PathEscape(id), q.Encode())

	var res tweetResponse
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return domain.Mention{}, fmt.Errorf("get tweet %s: %w: %w", id, domain.ErrUpstream, err)
	}
	if res.Data.ID == "" {
		return domain.Mention{}, fmt.Errorf("get tweet %s: %w: empty response", id, domain.ErrUpstream)
	}
	return toDomain(res.Data), nil
}

// PostReply posts a reply addressed to targetID. Rate-limit responses
// surface as *domain.RateLimitError so the poster can run its own backoff.
// Media upload is not wired on the v2 adapter; the image URL travels with
// the reply but only text is posted.
func (c *Client) PostReply(ctx context.Context, targetID string, reply domain.Reply) (domain.PostedReply, error) {
	var req replyRequest
	req.Text = reply.Text
	req.Reply.InReplyToTweetID = targetID

	body, err := json.Marshal(req)
	if err != nil {
		return domain.PostedReply{}, fmt.Errorf("post reply: %w: %w", domain.ErrPost, err)
	}

	var res replyResponse
	if err := c.doJSON(ctx, http.MethodPost, c.BaseURL+"/tweets", body, &res); err != nil {
		if domain.IsRateLimit(err) {
			return domain.PostedReply{}, err
		}
		return domain.PostedReply{}, fmt.Errorf("post reply to %s: %w: %w", targetID, domain.ErrPost, err)
	}
	if res.Data.ID == "" {
		return domain.PostedReply{}, fmt.Errorf("post reply to %s: %w: no tweet id in response", targetID, domain.ErrPost)
	}
	return domain.PostedReply{ID: res.Data.ID}, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &domain.RateLimitError{Reset: parseReset(resp.Header.Get("x-rate-limit-reset"), c.now())}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errRes struct {
			Errors []apiError `json:"errors"`
			Title  string     `json:"title"`
			Detail string     `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errRes)
		detail := errRes.Detail
		if detail == "" && len(errRes.Errors) > 0 {
			detail = errRes.Errors[0].Detail
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, detail)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// parseReset converts the x-rate-limit-reset header (epoch seconds) to a
// time. A missing or bad header falls back to one minute out.
func parseReset(header string, now time.Time) time.Time {
	epoch, err := strconv.ParseInt(header, 10, 64)
	if err != nil || epoch <= 0 {
		return now.Add(time.Minute)
	}
	return time.Unix(epoch, 0)
}

func toDomain(t apiTweet) domain.Mention {
	m := domain.Mention{
		ID:             t.ID,
		Text:           t.Text,
		AuthorID:       t.AuthorID,
		ConversationID: t.ConversationID,
		CreatedAt:      t.CreatedAt,
	}
	for _, e := range t.Entities.Mentions {
		m.MentionedUsers = append(m.MentionedUsers, e.Username)
	}
	return m
}

func ctxSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
