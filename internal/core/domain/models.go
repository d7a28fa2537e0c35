package domain

import "time"

// Mention is a single tweet that mentions the bot account. It lives for one
// processing cycle only; the durable record of what happened to it is the
// replied marker, not the mention itself.
type Mention struct {
	ID             string
	Text           string
	AuthorID       string
	ConversationID string
	MentionedUsers []string
	CreatedAt      time.Time
}

// MentionBatch is one page of mentions plus the platform's summary of it.
type MentionBatch struct {
	Mentions []Mention
	NewestID string
}

// Cursor is the singleton fetch position: the newest mention ID the bot has
// observed and when the last cycle completed.
type Cursor struct {
	LastMentionID   string
	LastProcessedAt time.Time
}

// CursorUpdate is a partial cursor mutation; nil fields are left unchanged.
type CursorUpdate struct {
	LastMentionID   *string
	LastProcessedAt *time.Time
}

// RepliedMarker records that a tweet has already received a reply.
// Markers are append-only and never updated.
type RepliedMarker struct {
	TweetID   string
	CreatedAt time.Time
}

// Reply is the generated response for a mention.
type Reply struct {
	Text     string
	ImageURL string
}

// PostedReply is the platform's confirmation of a created reply.
type PostedReply struct {
	ID string
}
