package ports

import (
	"context"

	"DailyDigest/internal/domain"
)

// MessageSource reads the most recent messages of a single channel.
type MessageSource interface {
	ChannelMessages(ctx context.Context, channelID string, limit int) ([]domain.Message, error)
}

// Publisher delivers digest text to the destination channel, either inline
// or as a file attachment with a short notice.
type Publisher interface {
	PublishText(ctx context.Context, channelID, content string) error
	PublishFile(ctx context.Context, channelID, notice, filename, content string) error
}

// Generator turns the rendered prompt into digest Markdown.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TranscriptClient runs an asynchronous transcript-extraction job to
// completion and returns the transcript text.
type TranscriptClient interface {
	Transcript(ctx context.Context, videoURL string) (string, error)
}
