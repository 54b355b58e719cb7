package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
)

// Client adapts the Discord REST API to the message source and publisher
// ports. Only REST calls are used; the gateway is never opened.
type Client struct {
	session *discordgo.Session
}

var _ ports.MessageSource = (*Client)(nil)
var _ ports.Publisher = (*Client)(nil)

// New builds a REST-only client. Tokens are accepted with or without the
// "Bot " prefix.
func New(botToken string) (*Client, error) {
	if !strings.HasPrefix(botToken, "Bot ") {
		botToken = "Bot " + botToken
	}

	session, err := discordgo.New(botToken)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &Client{session: session}, nil
}

// ChannelMessages fetches the most recent page of messages for one channel.
// No pagination beyond that page is attempted.
func (c *Client) ChannelMessages(ctx context.Context, channelID string, limit int) ([]domain.Message, error) {
	messages, err := c.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch messages for channel %s: %w", channelID, err)
	}

	result := make([]domain.Message, 0, len(messages))
	for _, msg := range messages {
		mapped := domain.Message{
			ID:        msg.ID,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		}
		for _, embed := range msg.Embeds {
			mapped.Embeds = append(mapped.Embeds, domain.Embed{
				URL:         embed.URL,
				Description: embed.Description,
			})
		}
		result = append(result, mapped)
	}

	return result, nil
}

// PublishText posts the content as an inline message body.
func (c *Client) PublishText(ctx context.Context, channelID, content string) error {
	if _, err := c.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("post message to channel %s: %w", channelID, err)
	}
	return nil
}

// PublishFile posts the content as a Markdown file attachment next to a
// short inline notice.
func (c *Client) PublishFile(ctx context.Context, channelID, notice, filename, content string) error {
	_, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: notice,
		Files: []*discordgo.File{{
			Name:        filename,
			ContentType: "text/markdown",
			Reader:      strings.NewReader(content),
		}},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("post file to channel %s: %w", channelID, err)
	}
	return nil
}
