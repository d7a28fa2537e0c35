package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samarth30/twitter-engagement-bot/internal/core/domain"
	"github.com/samarth30/twitter-engagement-bot/internal/core/ports"
)

// Processor drives one cycle: fetch mentions since the cursor, classify each
// one, generate a reply, and post it. Mentions are processed in concurrent
// batches with a fixed pause between batches to stay inside rate budgets.
type Processor struct {
	platform ports.Platform
	brain    ports.Brain
	poster   *Poster

	botUserID  string
	batchSize  int
	batchPause time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewProcessor(platform ports.Platform, brain ports.Brain, poster *Poster, botUserID string, batchSize int, batchPause time.Duration) *Processor {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Processor{
		platform:   platform,
		brain:      brain,
		poster:     poster,
		botUserID:  botUserID,
		batchSize:  batchSize,
		batchPause: batchPause,
		sleep:      ctxSleep,
	}
}

// ProcessCycle fetches and answers new mentions. It returns the newest
// mention ID observed in the fetched batch so the caller can persist it as
// the new cursor; an empty batch returns the cursor's current value.
// Per-mention failures are logged and contained; only fetch-stage errors
// abort the cycle.
func (p *Processor) ProcessCycle(ctx context.Context, cursor domain.Cursor) (string, error) {
	batch, err := p.platform.FetchMentions(ctx, cursor.LastMentionID)
	if err != nil {
		return cursor.LastMentionID, err
	}
	if len(batch.Mentions) == 0 {
		slog.Info("No new mentions")
		return cursor.LastMentionID, nil
	}

	slog.Info("Processing mentions", "count", len(batch.Mentions), "since_id", cursor.LastMentionID)

	mentions := batch.Mentions
	for start := 0; start < len(mentions); start += p.batchSize {
		end := start + p.batchSize
		if end > len(mentions) {
			end = len(mentions)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, m := range mentions[start:end] {
			g.Go(func() error {
				if err := p.processMention(gctx, m); err != nil {
					slog.Error("Failed to process mention", "mention_id", m.ID, "error", err)
				}
				return nil
			})
		}
		// Always nil; per-mention errors never abort the batch.
		_ = g.Wait()

		if ctx.Err() != nil {
			return cursor.LastMentionID, ctx.Err()
		}
		if end < len(mentions) {
			if err := p.sleep(ctx, p.batchPause); err != nil {
				return cursor.LastMentionID, err
			}
		}
	}

	if batch.NewestID == "" {
		return cursor.LastMentionID, nil
	}
	return batch.NewestID, nil
}

// processMention answers a single mention, or skips it: self-authored
// mentions and replies whose conversation root cannot be retrieved are
// dropped silently.
func (p *Processor) processMention(ctx context.Context, m domain.Mention) error {
	if m.AuthorID == p.botUserID {
		slog.Debug("Skipping self-mention", "mention_id", m.ID)
		return nil
	}

	input, ok := p.composeInput(ctx, m)
	if !ok {
		return nil
	}

	reply, err := p.brain.Generate(ctx, input)
	if err != nil {
		return fmt.Errorf("generate reply for %s: %w", m.ID, err)
	}

	result, err := p.poster.PostReply(ctx, m.ID, reply)
	if err != nil {
		return err
	}
	if result.Skipped {
		slog.Info("Mention already answered", "mention_id", m.ID)
	}
	return nil
}

// composeInput builds the generation input for a mention. Root mentions use
// their own text; replies prepend the conversation root's text separated by
// a single space. Returns ok=false when the mention should be skipped.
func (p *Processor) composeInput(ctx context.Context, m domain.Mention) (string, bool) {
	cls := domain.Classify(m)
	if cls.Kind == domain.KindRoot {
		return m.Text, true
	}

	if cls.RootID == "" {
		slog.Debug("Mention has no conversation id, skipping", "mention_id", m.ID)
		return "", false
	}
	root, err := p.platform.GetTweet(ctx, cls.RootID)
	if err != nil {
		// Root deleted or inaccessible: drop the mention, not the cycle.
		slog.Info("Conversation root not retrievable, skipping mention",
			"mention_id", m.ID, "root_id", cls.RootID, "error", err)
		return "", false
	}
	return root.Text + " " + m.Text, true
}
