// Package telegram delivers newsroom notices (scrape digests, drafts awaiting
// review, published posts) to an editor chat.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsDesk/internal/ports"
)

const (
	defaultAPIBase = "https://api.telegram.org"
	maxMessageLen  = 4096
	replyLimit     = 4 << 10
)

// Notifier posts plain-text notices through the Bot API sendMessage method.
type Notifier struct {
	endpoint string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier targets chatID through the bot identified by botToken. An empty
// apiBase means the public Bot API.
func NewNotifier(apiBase, botToken, chatID string) *Notifier {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	n := &Notifier{
		chatID: chatID,
		client: &http.Client{Timeout: 5 * time.Second},
	}
	if botToken != "" {
		n.endpoint = fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(apiBase, "/"), botToken)
	}
	return n
}

type botReply struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify sends one notice. Link previews are off since digests list several
// URLs, and text past Telegram's 4096 character limit is cut.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	if n.endpoint == "" || n.chatID == "" {
		return errors.New("telegram notifier misconfigured")
	}

	form := url.Values{
		"chat_id":                  {n.chatID},
		"text":                     {clip(message, maxMessageLen)},
		"disable_web_page_preview": {"true"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notice: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, replyLimit))
	var reply botReply
	decoded := json.Unmarshal(raw, &reply) == nil

	switch {
	case resp.StatusCode != http.StatusOK && decoded && reply.Description != "":
		return fmt.Errorf("telegram %s: %s", resp.Status, reply.Description)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("telegram error: %s", resp.Status)
	case decoded && !reply.OK:
		return fmt.Errorf("telegram rejected notice: %s", reply.Description)
	}
	return nil
}

func clip(s string, limit int) string {
	if runes := []rune(s); len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}
