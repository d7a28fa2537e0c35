package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samarth30/twitter-engagement-bot/internal/core/domain"
	"github.com/samarth30/twitter-engagement-bot/internal/core/ports"
)

// PostResult is the outcome of a reply attempt: either a confirmed post or a
// skip because the tweet was already handled.
type PostResult struct {
	Skipped bool
	Posted  domain.PostedReply
}

// Poster sends replies with the at-most-once guarantee. The dedup check runs
// before every network attempt, and the marker is written only after the
// platform confirms the reply.
type Poster struct {
	platform ports.Platform
	store    ports.Storage

	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewPoster(platform ports.Platform, store ports.Storage, maxRetries int) *Poster {
	return &Poster{
		platform:   platform,
		store:      store,
		maxRetries: maxRetries,
		sleep:      ctxSleep,
	}
}

// PostReply replies to tweetID unless a marker for it already exists. On a
// rate-limit response it backs off exponentially and retries from the dedup
// check, since a concurrent path may have completed in the meantime.
func (p *Poster) PostReply(ctx context.Context, tweetID string, reply domain.Reply) (PostResult, error) {
	for attempt := 0; ; attempt++ {
		replied, err := p.store.HasReplied(ctx, tweetID)
		if err != nil {
			return PostResult{}, err
		}
		if replied {
			slog.Debug("Skipping tweet, already replied", "tweet_id", tweetID)
			return PostResult{Skipped: true}, nil
		}

		posted, err := p.platform.PostReply(ctx, tweetID, reply)
		if err == nil {
			outcome, err := p.store.MarkReplied(ctx, tweetID)
			if err != nil {
				return PostResult{}, err
			}
			if outcome == ports.AlreadyExists {
				// A concurrent path won the race after we posted; benign.
				slog.Info("Tweet already marked as replied", "tweet_id", tweetID)
			}
			slog.Info("Reply sent", "tweet_id", tweetID, "reply_id", posted.ID)
			return PostResult{Posted: posted}, nil
		}

		if !domain.IsRateLimit(err) {
			return PostResult{}, err
		}
		if attempt >= p.maxRetries {
			return PostResult{}, fmt.Errorf("post reply to %s: %w", tweetID, domain.ErrRateLimitExhausted)
		}

		delay := backoffDelay(attempt, p.maxRetries)
		slog.Info("Rate limit hit while posting, backing off",
			"tweet_id", tweetID, "delay", delay, "attempt", attempt+1, "max", p.maxRetries)
		if err := p.sleep(ctx, delay); err != nil {
			return PostResult{}, err
		}
	}
}

// backoffDelay is 1000*2^attempt milliseconds, capped at the delay the final
// allowed attempt would use.
func backoffDelay(attempt, maxRetries int) time.Duration {
	maxDelay := time.Duration(1<<maxRetries) * time.Second
	d := time.Duration(1<<attempt) * time.Second
	if d > maxDelay {
		return maxDelay
	}
	return d
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
