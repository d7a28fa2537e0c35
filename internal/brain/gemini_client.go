package brain

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/samarth30/twitter-engagement-bot/internal/core/domain"
	"github.com/samarth30/twitter-engagement-bot/internal/core/ports"
)

const systemPrompt = `You are Muse of Truth, an AI fact-checker replying on a social platform.

### Identity
- You answer people who mention you under a claim or question.
- Your purpose is to check the claim against what is verifiable and reply with a short, grounded assessment.

### Rules
1. Reply in plain text only, no markdown, no hashtags.
2. Stay under 270 characters so the reply fits in a single tweet.
3. If the claim cannot be verified, say so plainly instead of guessing.
4. Never be hostile; correct the claim, not the person.`

type modelConfig struct {
	Name string
	RPM  int
	RPD  int
}

// GeminiBrain generates replies directly through the Gemini API. It is the
// fallback ports.Brain used when no eliza endpoint is configured. Requests
// walk a model fallback list and respect local per-model RPM/RPD budgets.
type GeminiBrain struct {
	Client *genai.Client
	Models []modelConfig

	dailyCount   map[string]int
	minuteCount  map[string]int
	lastResetDay time.Time
	lastResetMin time.Time
	mu           sync.Mutex
}

func NewGeminiBrain(ctx context.Context, apiKey string) (*GeminiBrain, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, err
	}

	return &GeminiBrain{
		Client: client,
		Models: []modelConfig{
			{Name: "gemini-2.5-flash", RPM: 10, RPD: 250},
			{Name: "gemini-2.5-flash-lite", RPM: 15, RPD: 1000},
		},
		dailyCount:   make(map[string]int),
		minuteCount:  make(map[string]int),
		lastResetDay: time.Now(),
		lastResetMin: time.Now(),
	}, nil
}

var _ ports.Brain = (*GeminiBrain)(nil)

func (b *GeminiBrain) Generate(ctx context.Context, input string) (domain.Reply, error) {
	prompt := fmt.Sprintf(`%s

Task: someone mentioned you with the text below. Write your reply.

%s`, systemPrompt, input)

	text, err := b.tryGenerateWithFallback(ctx, prompt)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	return domain.Reply{Text: strings.TrimSpace(text)}, nil
}

func (b *GeminiBrain) tryGenerateWithFallback(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for _, cfg := range b.Models {
		if !b.canUseModel(cfg) {
			continue
		}

		result, err := b.Client.Models.GenerateContent(ctx, cfg.Name, genai.Text(prompt), nil)
		if err != nil {
			errStr := strings.ToLower(err.Error())
			if strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit") ||
				strings.Contains(errStr, "exhausted") || strings.Contains(errStr, "not found") {
				lastErr = err
				continue
			}
			return "", err
		}

		if result != nil && len(result.Candidates) > 0 && len(result.Candidates[0].Content.Parts) > 0 {
			b.recordUsage(cfg)
			return result.Candidates[0].Content.Parts[0].Text, nil
		}
	}

	return "", fmt.Errorf("all models failed or over budget: %v", lastErr)
}

func (b *GeminiBrain) canUseModel(cfg modelConfig) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	if now.YearDay() != b.lastResetDay.YearDay() {
		b.dailyCount = make(map[string]int)
		b.lastResetDay = now
	}
	if now.Sub(b.lastResetMin) >= time.Minute {
		b.minuteCount = make(map[string]int)
		b.lastResetMin = now
	}
	if b.dailyCount[cfg.Name] >= cfg.RPD {
		return false
	}
	if b.minuteCount[cfg.Name] >= cfg.RPM {
		return false
	}
	return true
}

func (b *GeminiBrain) recordUsage(cfg modelConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dailyCount[cfg.Name]++
	b.minuteCount[cfg.Name]++
}
