package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gamedealer/gamedealer/internal/metrics"
)

const (
	colorRed   = 0xE74C3C // discount 80%+
	colorGreen = 0x00FF00 // discount 60-79%
	colorBlue  = 0x3498DB // everything else
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      *discordFooter      `json:"footer,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

// SendDeal sends a single deal as a Discord embed.
func (d *DiscordNotifier) SendDeal(ctx context.Context, deal *DealPayload) error {
	embed := buildEmbed(deal)
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{embed},
	}
	return d.post(ctx, payload)
}

// SendDealBatch sends multiple deals as a single Discord message.
func (d *DiscordNotifier) SendDealBatch(
	ctx context.Context,
	deals []DealPayload,
	cycleID string,
) error {
	embeds := make([]discordEmbed, 0, len(deals))

	// Discord allows max 10 embeds per message.
	limit := min(len(deals), 10)

	for i := range limit {
		embeds = append(embeds, buildEmbed(&deals[i]))
	}

	if len(deals) > 10 {
		embeds = append(embeds, discordEmbed{
			Title:       fmt.Sprintf("... and %d more deals this cycle (%s)", len(deals)-10, cycleID),
			Color:       colorBlue,
			Description: "See the API for the full ranked list.",
		})
	}

	payload := discordWebhookPayload{Embeds: embeds}
	return d.post(ctx, payload)
}

func buildEmbed(deal *DealPayload) discordEmbed {
	priceValue := fmt.Sprintf("**Current:** %s\n**Regular:** ~~%s~~\n**Discount:** %d%% off",
		deal.Price, deal.RegularPrice, deal.DiscountPercent)

	embed := discordEmbed{
		Title: fmt.Sprintf("Deal #%d: %s", deal.Rank+1, deal.Title),
		URL:   deal.DealURL,
		Color: discountColor(deal.DiscountPercent),
		Fields: []discordEmbedField{
			{Name: "Price", Value: priceValue, Inline: true},
			{Name: "Store", Value: deal.Store, Inline: true},
			{Name: "Popularity", Value: fmt.Sprintf("%.0f/100", deal.PopularityScore), Inline: true},
		},
		Footer: &discordFooter{Text: footerText(deal.DiscountPercent)},
	}

	if deal.Priority > 0 {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:   "Priority",
			Value:  fmt.Sprintf("%d/10", deal.Priority),
			Inline: true,
		})
	}

	return embed
}

func discountColor(discount int) int {
	switch {
	case discount >= 80:
		return colorRed
	case discount >= 60:
		return colorGreen
	default:
		return colorBlue
	}
}

func footerText(discount int) string {
	const base = "Powered by IsThereAnyDeal"
	switch {
	case discount >= 80:
		return "MEGA DEAL! • " + base
	case discount >= 60:
		return "GREAT DEAL! • " + base
	default:
		return base
	}
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	if err := d.doPost(ctx, payload); err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return err
	}
	metrics.NotificationsSentTotal.Inc()
	return nil
}

func (d *DiscordNotifier) doPost(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("discord rate limited (429)")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
