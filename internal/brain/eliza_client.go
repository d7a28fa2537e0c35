package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samarth30/twitter-engagement-bot/internal/core/domain"
	"github.com/samarth30/twitter-engagement-bot/internal/core/ports"
)

// ElizaBrain calls an eliza-style agent endpoint:
// POST <endpoint>/<agent>/message {text} -> [{text, attachments?}, ...]
// The service may stream several candidate or incremental messages; the last
// element is the authoritative reply. No local retry; the caller decides.
type ElizaBrain struct {
	Endpoint   string
	AgentName  string
	HTTPClient *http.Client
}

func NewElizaBrain(endpoint, agentName string) *ElizaBrain {
	return &ElizaBrain{
		Endpoint:   strings.TrimSuffix(endpoint, "/"),
		AgentName:  agentName,
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

var _ ports.Brain = (*ElizaBrain)(nil)

type elizaMessage struct {
	Text        string `json:"text"`
	Attachments []struct {
		URL string `json:"url"`
	} `json:"attachments"`
}

func (b *ElizaBrain) Generate(ctx context.Context, input string) (domain.Reply, error) {
	payload, err := json.Marshal(map[string]string{"text": input})
	if err != nil {
		return domain.Reply{}, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	endpoint := fmt.Sprintf("%s/%s/message", b.Endpoint, b.AgentName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return domain.Reply{}, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.HTTPClient.Do(req)
	if err != nil {
		return domain.Reply{}, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Reply{}, fmt.Errorf("%w: status %d", domain.ErrGeneration, resp.StatusCode)
	}

	var messages []elizaMessage
	if err := json.NewDecoder(resp.Body).Decode(&messages); err != nil {
		return domain.Reply{}, fmt.Errorf("%w: decode response: %w", domain.ErrGeneration, err)
	}
	if len(messages) == 0 {
		return domain.Reply{}, fmt.Errorf("%w: empty response", domain.ErrGeneration)
	}

	last := messages[len(messages)-1]
	reply := domain.Reply{Text: last.Text}
	if len(last.Attachments) > 0 {
		reply.ImageURL = last.Attachments[0].URL
	}
	return reply, nil
}
