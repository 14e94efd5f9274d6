package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RefreshAction is the callback token carried by the inline refresh
// button and matched by the command loop.
const RefreshAction = "refresh"

// TelegramConfig holds the settings for the Telegram bot client.
type TelegramConfig struct {
	BotToken    string
	ChatID      string
	BaseURL     string
	PollTimeout time.Duration
}

// Telegram is a minimal Telegram Bot API client covering sendMessage,
// getUpdates long-polling and callback acknowledgement.
type Telegram struct {
	cfg        TelegramConfig
	httpClient *http.Client
}

// NewTelegram creates a new Telegram bot client.
func NewTelegram(cfg TelegramConfig) *Telegram {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.telegram.org"
	}
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = 25 * time.Second
	}
	return &Telegram{
		cfg: cfg,
		// The HTTP timeout must outlast the server-side long-poll wait.
		httpClient: &http.Client{Timeout: cfg.PollTimeout + 10*time.Second},
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (t *Telegram) SetHTTPClient(client *http.Client) {
	t.httpClient = client
}

// Update is one inbound event from getUpdates: either a plain text
// message or a callback triggered by a button press.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is an inbound chat message.
type Message struct {
	Text string `json:"text"`
	Chat Chat   `json:"chat"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// CallbackQuery is an inline-button press.
type CallbackQuery struct {
	ID   string `json:"id"`
	Data string `json:"data"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// Send delivers plain text to the configured chat.
func (t *Telegram) Send(ctx context.Context, text string) error {
	payload := map[string]interface{}{
		"chat_id": t.cfg.ChatID,
		"text":    text,
	}
	_, err := t.call(ctx, "sendMessage", payload)
	if err != nil {
		return &DeliveryError{Transport: "telegram", Err: err}
	}
	return nil
}

// SendWithRefreshButton delivers text with a single inline button that
// triggers the RefreshAction callback when pressed.
func (t *Telegram) SendWithRefreshButton(ctx context.Context, text string) error {
	payload := map[string]interface{}{
		"chat_id": t.cfg.ChatID,
		"text":    text,
		"reply_markup": map[string]interface{}{
			"inline_keyboard": [][]map[string]string{{
				{"text": "🔄 Refresh", "callback_data": RefreshAction},
			}},
		},
	}
	_, err := t.call(ctx, "sendMessage", payload)
	if err != nil {
		return &DeliveryError{Transport: "telegram", Err: err}
	}
	return nil
}

// GetUpdates long-polls for inbound updates at the given cursor offset.
// The server holds the request up to the configured poll timeout.
func (t *Telegram) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	payload := map[string]interface{}{
		"offset":  offset,
		"timeout": int(t.cfg.PollTimeout.Seconds()),
	}
	result, err := t.call(ctx, "getUpdates", payload)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("failed to parse updates: %w", err)
	}
	return updates, nil
}

// AnswerCallback acknowledges a button press so the client stops showing
// a progress indicator.
func (t *Telegram) AnswerCallback(ctx context.Context, callbackID string) error {
	payload := map[string]interface{}{
		"callback_query_id": callbackID,
	}
	if _, err := t.call(ctx, "answerCallbackQuery", payload); err != nil {
		return &DeliveryError{Transport: "telegram", Err: err}
	}
	return nil
}

func (t *Telegram) call(ctx context.Context, method string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	reqURL := fmt.Sprintf("%s/bot%s/%s", t.cfg.BaseURL, t.cfg.BotToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !apiResp.OK {
		return nil, fmt.Errorf("API returned error: %s", apiResp.Description)
	}

	return apiResp.Result, nil
}
