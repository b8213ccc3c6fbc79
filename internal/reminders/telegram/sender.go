// Package telegram provides reminder delivery via the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/subwatch/subwatch/internal/reminders"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// Config holds telegram sender configuration.
type Config struct {
	Enabled   bool
	BotToken  string
	ChatID    string
	RateLimit float64
}

// Sender delivers reminders through a Telegram bot.
type Sender struct {
	config  Config
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewSender creates a new telegram sender.
// Returns error if enabled but required config is missing.
func NewSender(config Config) (*Sender, error) {
	if config.Enabled {
		if config.BotToken == "" {
			return nil, errors.New("telegram sender: bot token is required when enabled")
		}
		if config.ChatID == "" {
			return nil, errors.New("telegram sender: chat id is required when enabled")
		}
	}

	// Bot API allows ~30 messages per second overall
	if config.RateLimit == 0 {
		config.RateLimit = 20
	}

	slog.Info("telegram sender configured",
		"enabled", config.Enabled,
		"rate_limit", config.RateLimit,
	)

	return &Sender{
		config:  config,
		baseURL: defaultAPIBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}, nil
}

// Name returns the channel name.
func (s *Sender) Name() string {
	return reminders.ChannelTelegram
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers a reminder message to the configured chat.
func (s *Sender) Send(ctx context.Context, notification reminders.Notification) error {
	if !s.config.Enabled {
		slog.Debug("telegram sender disabled, skipping")
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return reminders.NewRetryableError(fmt.Errorf("rate limiter: %w", err))
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID: s.config.ChatID,
		Text:   notification.Subject + "\n\n" + notification.Body,
	})
	if err != nil {
		return reminders.NewNonRetryableError(fmt.Errorf("marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.config.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return reminders.NewNonRetryableError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return reminders.NewRetryableError(fmt.Errorf("send message: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	var result sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return reminders.NewRetryableError(fmt.Errorf("decode response: %w", err))
	}

	if !result.OK {
		err := fmt.Errorf("telegram api error (status %d): %s", resp.StatusCode, result.Description)
		// 429 and server errors are temporary, client errors are not
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return reminders.NewRetryableError(err)
		}
		return reminders.NewNonRetryableError(err)
	}

	slog.Debug("telegram notification sent",
		"subject", notification.Subject,
	)

	return nil
}
