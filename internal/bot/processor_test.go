package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samarth30/twitter-engagement-bot/internal/core/domain"
)

const botUserID = "BOT"

func newTestProcessor(platform *fakePlatform, brain *fakeBrain, store *fakeStore) *Processor {
	poster := NewPoster(platform, store, 3)
	p := NewProcessor(platform, brain, poster, botUserID, 10, 5*time.Second)
	p.sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func TestProcessCycleRootMention(t *testing.T) {
	store := newFakeStore("1")
	brain := &fakeBrain{reply: domain.Reply{Text: "checked"}}
	platform := &fakePlatform{
		batch: domain.MentionBatch{
			Mentions: []domain.Mention{
				{ID: "10", ConversationID: "10", Text: "hi @Bot", AuthorID: "U1"},
			},
			NewestID: "10",
		},
	}
	proc := newTestProcessor(platform, brain, store)

	newest, err := proc.ProcessCycle(context.Background(), domain.Cursor{LastMentionID: "1"})
	require.NoError(t, err)

	assert.Equal(t, "10", newest)
	assert.Equal(t, []string{"hi @Bot"}, brain.inputs)
	assert.Equal(t, []string{"10"}, platform.postCalls)

	replied, err := store.HasReplied(context.Background(), "10")
	require.NoError(t, err)
	assert.True(t, replied)
}

func TestProcessCycleReplyInConversation(t *testing.T) {
	store := newFakeStore("1")
	brain := &fakeBrain{}
	platform := &fakePlatform{
		batch: domain.MentionBatch{
			Mentions: []domain.Mention{
				{ID: "11", ConversationID: "5", Text: "hi @Bot", AuthorID: "U1"},
			},
			NewestID: "11",
		},
		roots: map[string]domain.Mention{
			"5": {ID: "5", ConversationID: "5", Text: "root claim"},
		},
	}
	proc := newTestProcessor(platform, brain, store)

	_, err := proc.ProcessCycle(context.Background(), domain.Cursor{LastMentionID: "1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"root claim hi @Bot"}, brain.inputs)
	assert.Equal(t, []string{"11"}, platform.postCalls)
}

func TestProcessCycleSkipsSelfMentions(t *testing.T) {
	store := newFakeStore("1")
	brain := &fakeBrain{}
	platform := &fakePlatform{
		batch: domain.MentionBatch{
			Mentions: []domain.Mention{
				{ID: "12", ConversationID: "12", Text: "talking to myself", AuthorID: botUserID},
			},
			NewestID: "12",
		},
	}
	proc := newTestProcessor(platform, brain, store)

	newest, err := proc.ProcessCycle(context.Background(), domain.Cursor{LastMentionID: "1"})
	require.NoError(t, err)

	assert.Equal(t, "12", newest, "cursor still advances past self-mentions")
	assert.Empty(t, brain.inputs)
	assert.Equal(t, 0, platform.postCount())
}

func TestProcessCycleSkipsUnretrievableRoot(t *testing.T) {
	store := newFakeStore("1")
	brain := &fakeBrain{}
	platform := &fakePlatform{
		batch: domain.MentionBatch{
			Mentions: []domain.Mention{
				{ID: "13", ConversationID: "99", Text: "hi @Bot", AuthorID: "U1"},
			},
			NewestID: "13",
		},
		// No root for "99": lookup fails, mention is dropped without error.
	}
	proc := newTestProcessor(platform, brain, store)

	newest, err := proc.ProcessCycle(context.Background(), domain.Cursor{LastMentionID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "13", newest)
	assert.Empty(t, brain.inputs)
	assert.Equal(t, 0, platform.postCount())
}

func TestProcessCycleContainsPerMentionFailures(t *testing.T) {
	store := newFakeStore("1")
	brain := &fakeBrain{err: domain.ErrGeneration}
	platform := &fakePlatform{
		batch: domain.MentionBatch{
			Mentions: []domain.Mention{
				{ID: "14", ConversationID: "14", Text: "one", AuthorID: "U1"},
				{ID: "15", ConversationID: "15", Text: "two", AuthorID: "U2"},
			},
			NewestID: "15",
		},
	}
	proc := newTestProcessor(platform, brain, store)

	newest, err := proc.ProcessCycle(context.Background(), domain.Cursor{LastMentionID: "1"})
	require.NoError(t, err, "generation failures must not abort the cycle")
	assert.Equal(t, "15", newest)
	assert.Len(t, brain.inputs, 2, "both mentions are attempted")
	assert.Equal(t, 0, platform.postCount())
}

func TestProcessCycleEmptyBatchKeepsCursor(t *testing.T) {
	store := newFakeStore("1")
	brain := &fakeBrain{}
	platform := &fakePlatform{}
	proc := newTestProcessor(platform, brain, store)

	newest, err := proc.ProcessCycle(context.Background(), domain.Cursor{LastMentionID: "42"})
	require.NoError(t, err)
	assert.Equal(t, "42", newest)
}

func TestProcessCycleFetchErrorAborts(t *testing.T) {
	store := newFakeStore("1")
	brain := &fakeBrain{}
	platform := &fakePlatform{fetchErr: domain.ErrUpstream}
	proc := newTestProcessor(platform, brain, store)

	_, err := proc.ProcessCycle(context.Background(), domain.Cursor{LastMentionID: "1"})
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.Empty(t, brain.inputs)
}

func TestProcessCyclePausesBetweenBatches(t *testing.T) {
	store := newFakeStore("1")
	brain := &fakeBrain{}

	var mentions []domain.Mention
	for i := 0; i < 25; i++ {
		id := string(rune('A' + i))
		mentions = append(mentions, domain.Mention{ID: id, ConversationID: id, Text: "hi", AuthorID: "U1"})
	}
	platform := &fakePlatform{batch: domain.MentionBatch{Mentions: mentions, NewestID: "Z"}}

	poster := NewPoster(platform, store, 3)
	proc := NewProcessor(platform, brain, poster, botUserID, 10, 5*time.Second)

	var pauses []time.Duration
	proc.sleep = recordSleep(&pauses)

	_, err := proc.ProcessCycle(context.Background(), domain.Cursor{LastMentionID: "1"})
	require.NoError(t, err)

	// 25 mentions in batches of 10 -> two inter-batch pauses, none after the last.
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, pauses)
	assert.Equal(t, 25, platform.postCount())
}
