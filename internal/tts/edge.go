package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mapleai/maple/internal/llm"
)

// voiceAliases maps the client-facing voice IDs to neural voice names the
// speech service understands. Unknown IDs pass through untouched.
var voiceAliases = map[string]string{
	"en-US-Standard-C": "en-US-AriaNeural",
	"en-US-Standard-D": "en-US-GuyNeural",
	"maple_default":    "en-US-JennyNeural",
}

// defaultVoices is returned when the speech service's voice list is
// unreachable.
var defaultVoices = []Voice{
	{ID: "maple_default", Name: "Maple Default", Gender: "Female", Locale: "en-US"},
	{ID: "en-US-Standard-C", Name: "US English Female", Gender: "Female", Locale: "en-US"},
	{ID: "en-US-Standard-D", Name: "US English Male", Gender: "Male", Locale: "en-US"},
}

// EdgeConfig holds configuration for the edge speech client.
type EdgeConfig struct {
	// BaseURL of the speech gateway, e.g. http://localhost:5050.
	BaseURL string

	// Timeout defaults to 15s; synthesis is slower than plain HTTP calls.
	Timeout time.Duration
}

// EdgeClient implements Synthesizer against an edge-tts HTTP gateway.
// Calls go through a circuit breaker; when it opens or synthesis fails, the
// caller receives an empty payload rather than an error so chat responses
// still render without audio.
type EdgeClient struct {
	baseURL        string
	client         *http.Client
	circuitBreaker *llm.CircuitBreaker
	logger         *slog.Logger
}

// NewEdgeClient creates an edge speech client.
func NewEdgeClient(cfg EdgeConfig, logger *slog.Logger) *EdgeClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:5050"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &EdgeClient{
		baseURL:        cfg.BaseURL,
		client:         &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: llm.NewCircuitBreaker("edge-tts"),
		logger:         logger,
	}
}

type synthesizeRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
	Rate  string `json:"rate"`
	Pitch string `json:"pitch"`
}

// Synthesize renders text to audio. Speed and pitch multipliers convert to
// the service's relative formats: (speed-1)*100 as a percentage and
// (pitch-1)*50 as Hertz. Failures degrade to an empty mp3 payload.
func (c *EdgeClient) Synthesize(ctx context.Context, text, voice string, speed, pitch float64) ([]byte, string, error) {
	if alias, ok := voiceAliases[voice]; ok {
		voice = alias
	}

	reqBody := synthesizeRequest{
		Text:  text,
		Voice: voice,
		Rate:  fmt.Sprintf("%+d%%", int((speed-1)*100)),
		Pitch: fmt.Sprintf("%+dHz", int((pitch-1)*50)),
	}

	result, err := c.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		return c.synthesize(ctx, reqBody)
	})
	if err != nil {
		if errors.Is(err, llm.ErrCircuitOpen) {
			c.logger.Warn("tts circuit breaker open, returning empty audio")
		} else {
			c.logger.Warn("tts synthesis failed, returning empty audio", "error", err)
		}
		return []byte{}, "audio/mpeg", nil
	}

	return result.([]byte), "audio/mpeg", nil
}

func (c *EdgeClient) synthesize(ctx context.Context, reqBody synthesizeRequest) ([]byte, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/audio/speech", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("speech service returned status %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return audio, nil
}

type voicesResponse struct {
	Voices []struct {
		ShortName    string `json:"ShortName"`
		FriendlyName string `json:"FriendlyName"`
		Gender       string `json:"Gender"`
		Locale       string `json:"Locale"`
	} `json:"voices"`
}

// Voices lists English voices from the speech service, falling back to the
// built-in defaults when the service is unreachable.
func (c *EdgeClient) Voices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/voices", nil)
	if err != nil {
		return defaultVoices, nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("voice listing failed, using defaults", "error", err)
		return defaultVoices, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return defaultVoices, nil
	}

	var respData voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
		return defaultVoices, nil
	}

	var out []Voice
	for _, v := range respData.Voices {
		if len(v.Locale) < 2 || v.Locale[:2] != "en" {
			continue
		}
		out = append(out, Voice{
			ID:     v.ShortName,
			Name:   v.FriendlyName,
			Gender: v.Gender,
			Locale: v.Locale,
		})
	}
	if len(out) == 0 {
		return defaultVoices, nil
	}
	return out, nil
}

var _ Synthesizer = (*EdgeClient)(nil)
