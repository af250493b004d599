// Package africastalking is a minimal client for the Africa's Talking SMS API.
package africastalking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client sends SMS messages through the Africa's Talking messaging API
type Client struct {
	apiKey     string
	username   string
	senderID   string
	baseURL    string
	httpClient *http.Client
}

// Config holds configuration for the Africa's Talking client
type Config struct {
	APIKey   string
	Username string
	SenderID string        // Alphanumeric sender ID, e.g. "MHAAS"
	BaseURL  string        // Default: https://api.africastalking.com
	Timeout  time.Duration // Default: 15s
}

// NewClient creates a new Africa's Talking client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.africastalking.com"
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	return &Client{
		apiKey:   config.APIKey,
		username: config.Username,
		senderID: config.SenderID,
		baseURL:  config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// sendResponse mirrors the messaging API response envelope
type sendResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			Number     string `json:"number"`
			Status     string `json:"status"`
			StatusCode int    `json:"statusCode"`
			MessageID  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// Send delivers an SMS to a single phone number. It returns an error for transport
// failures, non-2xx responses, and per-recipient rejections.
func (c *Client) Send(ctx context.Context, to, message string) error {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("to", to)
	form.Set("message", message)
	if c.senderID != "" {
		form.Set("from", c.senderID)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		c.baseURL+"/version1/messaging", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apiKey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sms api returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(parsed.SMSMessageData.Recipients) == 0 {
		return fmt.Errorf("sms rejected: %s", parsed.SMSMessageData.Message)
	}

	for _, r := range parsed.SMSMessageData.Recipients {
		// 100-102 cover Processed/Sent/Queued
		if r.StatusCode < 100 || r.StatusCode > 102 {
			return fmt.Errorf("sms to %s failed: %s", r.Number, r.Status)
		}
	}

	return nil
}
