// Package notify delivers offer alerts over the Telegram bot API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Notifier is what the engine calls. Both sends are fire-and-confirm: an
// error means not delivered, and the caller must NOT mark the offer sent.
type Notifier interface {
	Enabled() bool
	SendText(ctx context.Context, text string) error
	SendLocation(ctx context.Context, lat, lon float64) error
}

const telegramBaseURL = "https://api.telegram.org"

type Telegram struct {
	token   string
	chatID  string
	baseURL string
	hc      *http.Client
}

func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		token:   token,
		chatID:  chatID,
		baseURL: telegramBaseURL,
		hc:      &http.Client{Timeout: 20 * time.Second},
	}
}

// NewTelegramWithBase points the client at a different API root (tests).
func NewTelegramWithBase(token, chatID, baseURL string, hc *http.Client) *Telegram {
	return &Telegram{token: token, chatID: chatID, baseURL: baseURL, hc: hc}
}

func (t *Telegram) Enabled() bool { return t.token != "" && t.chatID != "" }

func (t *Telegram) SendText(ctx context.Context, text string) error {
	return t.call(ctx, "sendMessage", map[string]any{
		"chat_id":                  t.chatID,
		"text":                     text,
		"disable_web_page_preview": false,
	})
}

func (t *Telegram) SendLocation(ctx context.Context, lat, lon float64) error {
	return t.call(ctx, "sendLocation", map[string]any{
		"chat_id":   t.chatID,
		"latitude":  lat,
		"longitude": lon,
	})
}

// Probe verifies the token against getMe so a bad credential shows up at
// startup instead of on the first matching offer.
func (t *Telegram) Probe(ctx context.Context) error {
	return t.call(ctx, "getMe", map[string]any{})
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) call(ctx context.Context, method string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := t.hc.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer res.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(res.Body).Decode(&api); err != nil {
		return fmt.Errorf("telegram %s: status %d: %w", method, res.StatusCode, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 || !api.OK {
		return fmt.Errorf("telegram %s: status %d: %s", method, res.StatusCode, api.Description)
	}
	return nil
}

// Disabled is the stand-in when credentials are missing: the run proceeds
// (offers still land in the archive) but nothing is delivered and nothing
// gets marked sent.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) SendText(context.Context, string) error {
	log.Printf("[notify] telegram credentials missing, dropping message")
	return fmt.Errorf("notifier disabled")
}

func (Disabled) SendLocation(context.Context, float64, float64) error {
	return fmt.Errorf("notifier disabled")
}
