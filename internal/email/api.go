package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"yuvai/internal/config"
)

// APISender posts messages to a Brevo-style transactional email API.
type APISender struct {
	endpoint string
	apiKey   string
	from     string
	fromName string
	client   *http.Client
}

// NewAPISender creates an HTTP API sender.
func NewAPISender(cfg *config.Config) *APISender {
	return &APISender{
		endpoint: cfg.EmailAPIURL,
		apiKey:   cfg.EmailAPIKey,
		from:     cfg.EmailFrom,
		fromName: cfg.EmailFromName,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type apiContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type apiRequest struct {
	Sender      apiContact   `json:"sender"`
	To          []apiContact `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"htmlContent,omitempty"`
	TextContent string       `json:"textContent,omitempty"`
}

// Send delivers msg with one POST. Any non-2xx response is an error.
func (a *APISender) Send(ctx context.Context, msg *Message) error {
	if len(msg.To) == 0 {
		return nil
	}

	payload := apiRequest{
		Sender:      apiContact{Name: a.fromName, Email: a.from},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		TextContent: msg.Text,
	}
	for _, to := range msg.To {
		payload.To = append(payload.To, apiContact{Email: to})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("email API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email API returned status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}
