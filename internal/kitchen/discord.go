package kitchen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	colorRed    = 15158332
	colorOrange = 15105570
)

// HTTPError is a non-2xx webhook response.
type HTTPError struct {
	Code       int
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("webhook returned %d: %s", e.Code, e.Body)
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title     string       `json:"title"`
	Color     int          `json:"color"`
	Fields    []embedField `json:"fields"`
	Footer    embedFooter  `json:"footer"`
	Timestamp string       `json:"timestamp"`
}

type webhookMessage struct {
	Content string  `json:"content,omitempty"`
	Embeds  []embed `json:"embeds"`
}

// DiscordNotifier posts orders to a Discord channel webhook.
type DiscordNotifier struct {
	url     string
	mention string
	client  *http.Client
}

// NewDiscordNotifier creates a webhook notifier. A nil client uses a 10s
// timeout client.
func NewDiscordNotifier(url, mention string, client *http.Client) *DiscordNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &DiscordNotifier{url: url, mention: mention, client: client}
}

func (d *DiscordNotifier) Name() string { return "discord" }

// Notify posts one embed for the order.
func (d *DiscordNotifier) Notify(ctx context.Context, o Order) error {
	body, err := json.Marshal(d.message(o))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	text, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	herr := &HTTPError{Code: resp.StatusCode, Body: string(text)}
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.ParseFloat(s, 64); err == nil {
			herr.RetryAfter = time.Duration(secs * float64(time.Second))
		}
	}
	return herr
}

func (d *DiscordNotifier) message(o Order) webhookMessage {
	title := "🍽️ NEW KITCHEN ORDER #" + o.ID
	color := colorOrange
	footer := "React to update status: 👨‍🍳 Starting | ✅ Ready | 🚗 Delivered"
	if o.Cancelled() {
		title = "❌ ORDER CANCELLED #" + o.ID
		color = colorRed
		footer = "⚠️ This order has been cancelled - please stop preparation"
	}

	return webhookMessage{
		Content: d.mention,
		Embeds: []embed{{
			Title: title,
			Color: color,
			Fields: []embedField{
				{Name: "📋 Item", Value: fmt.Sprintf("**%s** x%d", o.Service, o.Quantity), Inline: true},
				{Name: "👤 Guest", Value: o.Guest, Inline: true},
				{Name: "🏠 Room", Value: o.Room, Inline: true},
				{Name: "🧾 Invoice", Value: o.Invoice, Inline: true},
				{Name: "⏰ Time", Value: o.PlacedAt.Format("03:04 PM"), Inline: true},
				{Name: "📊 Status", Value: o.Status, Inline: true},
			},
			Footer:    embedFooter{Text: footer},
			Timestamp: o.PlacedAt.UTC().Format(time.RFC3339),
		}},
	}
}
