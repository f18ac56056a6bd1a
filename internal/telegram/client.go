// Package telegram is a minimal Bot API client covering the calls the bot needs.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultAPIURL = "https://api.telegram.org"

var ErrMissingToken = errors.New("telegram bot token is required")

type Client struct {
	token   string
	baseURL string
	client  *http.Client
}

type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type KeyboardButton struct {
	Text string `json:"text"`
}

// ReplyKeyboard is a custom keyboard shown under the input field. With RemoveKeyboard set it
// hides the keyboard currently shown instead.
type ReplyKeyboard struct {
	Keyboard        [][]KeyboardButton `json:"keyboard,omitempty"`
	ResizeKeyboard  bool               `json:"resize_keyboard,omitempty"`
	OneTimeKeyboard bool               `json:"one_time_keyboard,omitempty"`
	RemoveKeyboard  bool               `json:"remove_keyboard,omitempty"`
}

func RemoveKeyboard() *ReplyKeyboard {
	return &ReplyKeyboard{RemoveKeyboard: true}
}

// KeyboardRows builds a resizable keyboard from rows of button labels.
func KeyboardRows(rows ...[]string) *ReplyKeyboard {
	keyboard := &ReplyKeyboard{ResizeKeyboard: true}
	for _, row := range rows {
		buttons := make([]KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, KeyboardButton{Text: label})
		}
		keyboard.Keyboard = append(keyboard.Keyboard, buttons)
	}
	return keyboard
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

func NewClient(token string, baseURL string) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}

	return &Client{
		token:   token,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 70 * time.Second,
		},
	}, nil
}

func (client *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard *ReplyKeyboard) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}
	return client.call(ctx, "sendMessage", payload, nil)
}

// GetUpdates long-polls for updates after offset, waiting up to timeout on the server side.
func (client *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(timeout / time.Second),
		"allowed_updates": []string{"message"},
	}
	updates := make([]Update, 0)
	if err := client.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (client *Client) call(ctx context.Context, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", client.baseURL, client.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	decoded := apiResponse{}
	if err := json.Unmarshal(raw, &decoded); err != nil || resp.StatusCode >= http.StatusBadRequest || !decoded.OK {
		return fmt.Errorf("telegram %s status %d: %s", method, resp.StatusCode, responseSnippet(raw, decoded))
	}

	if result == nil || len(decoded.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(decoded.Result, result); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

func responseSnippet(raw []byte, decoded apiResponse) string {
	if decoded.Description != "" {
		return decoded.Description
	}
	if len(raw) > 1024 {
		raw = raw[:1024]
	}
	return string(raw)
}

// Sender delivers plain messages to private chats, where the chat id equals the user id.
type Sender struct {
	client   *Client
	keyboard func(userID int64) *ReplyKeyboard
}

func NewSender(client *Client, keyboard func(userID int64) *ReplyKeyboard) *Sender {
	return &Sender{client: client, keyboard: keyboard}
}

func (sender *Sender) Send(ctx context.Context, userID int64, text string) error {
	var keyboard *ReplyKeyboard
	if sender.keyboard != nil {
		keyboard = sender.keyboard(userID)
	}
	return sender.client.SendMessage(ctx, userID, text, keyboard)
}
