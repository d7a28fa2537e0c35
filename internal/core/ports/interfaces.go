package ports

import (
	"context"

	"github.com/samarth30/twitter-engagement-bot/internal/core/domain"
)

// InsertOutcome is the result of a unique-constrained marker insert. A
// duplicate key is a normal outcome ("another path already handled this"),
// not an error.
type InsertOutcome int

const (
	Inserted InsertOutcome = iota
	AlreadyExists
)

// Storage is the narrow door to the durable state store: one singleton
// cursor record plus append-only replied markers with uniqueness enforced
// by the store itself.
type Storage interface {
	// GetCursor returns the singleton cursor, creating it from the seed
	// mention ID on first access.
	GetCursor(ctx context.Context) (domain.Cursor, error)
	// UpdateCursor applies a partial update; nil fields keep their value.
	// Creates the record if it is missing.
	UpdateCursor(ctx context.Context, upd domain.CursorUpdate) (domain.Cursor, error)
	// HasReplied reports whether a marker exists for the tweet.
	HasReplied(ctx context.Context, tweetID string) (bool, error)
	// MarkReplied inserts a marker. AlreadyExists signals a concurrent or
	// earlier path won the race; it is never an error.
	MarkReplied(ctx context.Context, tweetID string) (InsertOutcome, error)
	// ListReplied returns all markers, newest first. Diagnostic use only.
	ListReplied(ctx context.Context) ([]domain.RepliedMarker, error)
}

// Platform is the social-platform adapter.
type Platform interface {
	// FetchMentions returns mentions with ID strictly greater than sinceID,
	// waiting out rate-limit windows up to a bounded retry count.
	FetchMentions(ctx context.Context, sinceID string) (domain.MentionBatch, error)
	// GetTweet looks up a single tweet, typically a conversation root.
	GetTweet(ctx context.Context, id string) (domain.Mention, error)
	// PostReply posts a reply addressed to the target tweet. A rate-limit
	// response surfaces as *domain.RateLimitError for the caller's backoff.
	PostReply(ctx context.Context, targetID string, reply domain.Reply) (domain.PostedReply, error)
}

// Brain generates reply text for composed mention input.
type Brain interface {
	Generate(ctx context.Context, input string) (domain.Reply, error)
}

// Notifier delivers operator-facing notices. Implementations must not block
// the pipeline; delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, title, body string)
}
