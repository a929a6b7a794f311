// Package notify sends operator notifications over the Telegram Bot API.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"log/slog"

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// Telegram implements domain.Notifier. BaseURL is overridable for tests.
type Telegram struct {
	BotToken string
	ChatID   string
	BaseURL  string
	hc       *http.Client
}

// NewTelegram constructs a notifier. baseURL defaults to the public API.
func NewTelegram(botToken, chatID, baseURL string) *Telegram {
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Telegram{
		BotToken: botToken,
		ChatID:   chatID,
		BaseURL:  baseURL,
		hc:       &http.Client{Timeout: 15 * time.Second},
	}
}

// Notify sends one message. parseMode is Markdown, HTML, or empty.
func (t *Telegram) Notify(ctx domain.Context, message, parseMode string) error {
	if t.BotToken == "" || t.ChatID == "" {
		return fmt.Errorf("op=notify.telegram: %w: bot token or chat id missing", domain.ErrConfig)
	}
	payload := map[string]string{
		"chat_id": t.ChatID,
		"text":    message,
	}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}
	b, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("op=notify.telegram: %w: %v", domain.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.hc.Do(req)
	if err != nil {
		return fmt.Errorf("op=notify.telegram: %w: %v", domain.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return fmt.Errorf("op=notify.telegram: %w: status %d: %s", domain.ErrAPI, resp.StatusCode, body)
	}
	slog.Debug("telegram notification sent", slog.Int("length", len(message)))
	return nil
}
