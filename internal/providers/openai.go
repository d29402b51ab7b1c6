package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/iconiconii/FxxkLc-sub005/internal/candidates"
)

// OpenAIConfig mirrors the `llm.openai.*` deployment configuration block.
// APIKeyEnv is the name of an environment variable, never the literal key.
type OpenAIConfig struct {
	BaseURL   string
	Model     string
	APIKeyEnv string
	Timeout   time.Duration
}

// OpenAIProvider calls an OpenAI-compatible chat-completions endpoint and
// parses a JSON-constrained ranking response out of the assistant message.
type OpenAIProvider struct {
	ProviderName string
	Config       OpenAIConfig
	HTTPClient   *http.Client
}

// NewOpenAIProvider constructs an OpenAIProvider; a nil client defaults to
// &http.Client{} (callers rely on the context deadline, not a client-level
// timeout, for cancellation).
func NewOpenAIProvider(name string, cfg OpenAIConfig, client *http.Client) *OpenAIProvider {
	if client == nil {
		client = &http.Client{}
	}
	return &OpenAIProvider{ProviderName: name, Config: cfg, HTTPClient: client}
}

func (p *OpenAIProvider) Name() string { return p.ProviderName }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat responseFormat  `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// flexibleProblemID accepts either a JSON string or a JSON number for
// problemId, since provider output is not guaranteed to match the
// candidate store's string-typed ids exactly.
type flexibleProblemID string

func (f *flexibleProblemID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleProblemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexibleProblemID(n.String())
		return nil
	}
	return fmt.Errorf("problemId must be a string or number")
}

type rankItemDTO struct {
	ProblemID  flexibleProblemID `json:"problemId"`
	Reason     string            `json:"reason"`
	Confidence float64           `json:"confidence"`
	Score      float64           `json:"score"`
	Strategy   string            `json:"strategy,omitempty"`
}

type rankResponseDTO struct {
	Items []rankItemDTO `json:"items"`
}

// Rank performs the OpenAI-compatible HTTP call and parses the response.
// RankOptions.SystemMessage/UserMessage carry the already-built prompt
// (internal/prompt owns templating); Rank itself performs no templating.
func (p *OpenAIProvider) Rank(ctx context.Context, cands []candidates.ProblemCandidate, opts RankOptions) (RankResult, error) {
	start := time.Now()
	latency := func() int64 { return time.Since(start).Milliseconds() }

	apiKey := os.Getenv(p.Config.APIKeyEnv)
	if apiKey == "" {
		return RankResult{Success: false, Error: ErrAPIKeyMissing, Provider: p.ProviderName, LatencyMs: latency()}, nil
	}

	reqBody := chatCompletionRequest{
		Model: p.Config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: opts.SystemMessage},
			{Role: "user", Content: opts.UserMessage},
		},
		Temperature:    0,
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return RankResult{Success: false, Error: ErrOther, Provider: p.ProviderName, LatencyMs: latency()}, nil
	}

	url := strings.TrimRight(p.Config.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return RankResult{Success: false, Error: ErrOther, Provider: p.ProviderName, LatencyMs: latency()}, nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := p.HTTPClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return RankResult{Success: false, Error: ErrTimeout, Provider: p.ProviderName, LatencyMs: latency()}, nil
		}
		return RankResult{Success: false, Error: ErrNetwork, Provider: p.ProviderName, LatencyMs: latency()}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RankResult{Success: false, Error: ErrNetwork, Provider: p.ProviderName, LatencyMs: latency()}, nil
	}

	if resp.StatusCode >= 500 {
		return RankResult{Success: false, Error: ErrHTTP5xx, Provider: p.ProviderName, LatencyMs: latency()}, nil
	}
	if resp.StatusCode >= 400 {
		return RankResult{Success: false, Error: ErrHTTP4xx, Provider: p.ProviderName, LatencyMs: latency()}, nil
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil || len(completion.Choices) == 0 {
		return RankResult{Success: false, Error: ErrParse, Provider: p.ProviderName, LatencyMs: latency()}, nil
	}

	content := extractJSON(completion.Choices[0].Message.Content)
	var parsed rankResponseDTO
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return RankResult{Success: false, Error: ErrParse, Provider: p.ProviderName, LatencyMs: latency()}, nil
	}

	items := make([]RankedItem, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it.ProblemID == "" {
			continue
		}
		items = append(items, RankedItem{
			ProblemID:  string(it.ProblemID),
			Reason:     it.Reason,
			Confidence: clampUnit(it.Confidence),
			Score:      clampUnit(it.Score),
			Strategy:   it.Strategy,
		})
	}
	if len(items) == 0 {
		return RankResult{Success: false, Error: ErrOther, Provider: p.ProviderName, LatencyMs: latency()}, nil
	}

	return RankResult{
		Success:   true,
		Model:     p.Config.Model,
		Items:     items,
		LatencyMs: latency(),
		Provider:  p.ProviderName,
	}, nil
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// extractJSON accepts either raw-JSON content or content fenced in a
// ```json ... ``` block.
func extractJSON(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

