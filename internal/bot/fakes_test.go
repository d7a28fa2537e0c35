package bot

import (
	"context"
	"sync"
	"time"

	"github.com/samarth30/twitter-engagement-bot/internal/core/domain"
	"github.com/samarth30/twitter-engagement-bot/internal/core/ports"
)

// fakeStore is an in-memory ports.Storage with the same atomic unique-insert
// semantics the real stores provide.
type fakeStore struct {
	mu      sync.Mutex
	cursor  domain.Cursor
	markers map[string]domain.RepliedMarker

	cursorUpdates []domain.CursorUpdate
	failAll       error
}

func newFakeStore(seed string) *fakeStore {
	return &fakeStore{
		cursor:  domain.Cursor{LastMentionID: seed, LastProcessedAt: time.Now()},
		markers: make(map[string]domain.RepliedMarker),
	}
}

func (s *fakeStore) GetCursor(ctx context.Context) (domain.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return domain.Cursor{}, s.failAll
	}
	return s.cursor, nil
}

func (s *fakeStore) UpdateCursor(ctx context.Context, upd domain.CursorUpdate) (domain.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return domain.Cursor{}, s.failAll
	}
	if upd.LastMentionID != nil {
		s.cursor.LastMentionID = *upd.LastMentionID
	}
	if upd.LastProcessedAt != nil {
		s.cursor.LastProcessedAt = *upd.LastProcessedAt
	}
	s.cursorUpdates = append(s.cursorUpdates, upd)
	return s.cursor, nil
}

func (s *fakeStore) HasReplied(ctx context.Context, tweetID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return false, s.failAll
	}
	_, ok := s.markers[tweetID]
	return ok, nil
}

func (s *fakeStore) MarkReplied(ctx context.Context, tweetID string) (ports.InsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return ports.AlreadyExists, s.failAll
	}
	if _, ok := s.markers[tweetID]; ok {
		return ports.AlreadyExists, nil
	}
	s.markers[tweetID] = domain.RepliedMarker{TweetID: tweetID, CreatedAt: time.Now()}
	return ports.Inserted, nil
}

func (s *fakeStore) ListReplied(ctx context.Context) ([]domain.RepliedMarker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.RepliedMarker
	for _, m := range s.markers {
		out = append(out, m)
	}
	return out, nil
}

func (s *fakeStore) markerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.markers)
}

// fakePlatform scripts mention fetches, root lookups, and reply posts.
type fakePlatform struct {
	mu sync.Mutex

	batch    domain.MentionBatch
	fetchErr error
	// roots maps tweet ID to the conversation root returned by GetTweet.
	roots      map[string]domain.Mention
	rootErr    error
	fetchCalls int

	postCalls []string
	// postErrs are consumed one per PostReply call; nil means success.
	postErrs []error
	fetchGo  chan struct{}
}

func (p *fakePlatform) FetchMentions(ctx context.Context, sinceID string) (domain.MentionBatch, error) {
	p.mu.Lock()
	p.fetchCalls++
	gate := p.fetchGo
	p.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return domain.MentionBatch{}, ctx.Err()
		}
	}
	if p.fetchErr != nil {
		return domain.MentionBatch{}, p.fetchErr
	}
	return p.batch, nil
}

func (p *fakePlatform) GetTweet(ctx context.Context, id string) (domain.Mention, error) {
	if p.rootErr != nil {
		return domain.Mention{}, p.rootErr
	}
	root, ok := p.roots[id]
	if !ok {
		return domain.Mention{}, domain.ErrUpstream
	}
	return root, nil
}

func (p *fakePlatform) PostReply(ctx context.Context, targetID string, reply domain.Reply) (domain.PostedReply, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.postCalls)
	p.postCalls = append(p.postCalls, targetID)
	if n < len(p.postErrs) && p.postErrs[n] != nil {
		return domain.PostedReply{}, p.postErrs[n]
	}
	return domain.PostedReply{ID: "posted-" + targetID}, nil
}

func (p *fakePlatform) postCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.postCalls)
}

// fakeBrain echoes a canned reply and records its inputs.
type fakeBrain struct {
	mu     sync.Mutex
	inputs []string
	reply  domain.Reply
	err    error
}

func (b *fakeBrain) Generate(ctx context.Context, input string) (domain.Reply, error) {
	b.mu.Lock()
	b.inputs = append(b.inputs, input)
	b.mu.Unlock()
	if b.err != nil {
		return domain.Reply{}, b.err
	}
	if b.reply.Text == "" {
		return domain.Reply{Text: "echo: " + input}, nil
	}
	return b.reply, nil
}

// recordSleep replaces the timed-wait hook and records requested durations.
func recordSleep(waits *[]time.Duration) func(context.Context, time.Duration) error {
	var mu sync.Mutex
	return func(_ context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		*waits = append(*waits, d)
		return nil
	}
}
