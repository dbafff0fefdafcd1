package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kisanbazaar/kisan-bazaar/internal/models"
	"github.com/kisanbazaar/kisan-bazaar/internal/util"
)

const (
	colorLowPriority    = 3092790  // #2F3136
	colorMediumPriority = 16753920 // #FFA500
	colorHighPriority   = 16711680 // #FF0000

	sendAttempts  = 3
	sendBaseDelay = 2 * time.Second
)

// Client posts high-priority advisories to a Discord-compatible webhook so
// farmers get alerted without opening the dashboard.
type Client struct {
	webhookURL string
	client     *http.Client
}

func New(webhookURL string) *Client {
	return &Client{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Internal structures
type webhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds"`
}

type embedFooter struct {
	Text string `json:"text,omitempty"`
}

type embed struct {
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Timestamp   string      `json:"timestamp,omitempty"`
	Color       int         `json:"color,omitempty"`
	Footer      embedFooter `json:"footer,omitempty"`
}

// SendAdvisories posts the high-priority subset of items. With no webhook
// configured or no high-priority items it does nothing.
func (c *Client) SendAdvisories(ctx context.Context, items []models.AdviceItem) error {
	if c.webhookURL == "" {
		return nil
	}

	var embeds []embed
	for _, item := range items {
		if item.Priority != models.PriorityHigh {
			continue
		}
		embeds = append(embeds, formatAdviceToEmbed(item))
	}
	if len(embeds) == 0 {
		return nil
	}

	return util.Retry(ctx, sendAttempts, sendBaseDelay, func() error {
		return c.post(ctx, webhookPayload{Embeds: embeds})
	})
}

func formatAdviceToEmbed(item models.AdviceItem) embed {
	var isoTimestamp string
	if !item.GeneratedAt.IsZero() {
		isoTimestamp = item.GeneratedAt.Format(time.RFC3339)
	}

	var footer embedFooter
	if item.RecommendedAction != "" {
		footer.Text = "Action: " + item.RecommendedAction
	}

	return embed{
		Title:       fmt.Sprintf("[%s] %s", item.Category, item.Title),
		Description: item.Body,
		Timestamp:   isoTimestamp,
		Color:       priorityColor(item.Priority),
		Footer:      footer,
	}
}

func (c *Client) post(ctx context.Context, payload webhookPayload) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	bodyBytes, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("webhook status: %s, body: %s", resp.Status, string(bodyBytes))
}

func priorityColor(p models.AdvicePriority) int {
	switch p {
	case models.PriorityHigh:
		return colorHighPriority
	case models.PriorityMedium:
		return colorMediumPriority
	}
	return colorLowPriority
}
