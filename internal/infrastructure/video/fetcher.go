package video

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/fetch"
	"DailyDigest/internal/infrastructure/scrape"
	"DailyDigest/internal/ports"
)

const (
	// TranscriptMarker prefixes transcript text so the prompt can tell it
	// apart from scraped descriptions.
	TranscriptMarker = "[Transcript] "

	noCredentialText = "Video content (transcript extraction not configured)"
	failedText       = "Video content (transcript extraction failed)"
)

// Both supported URL shapes: the watch?v= query form and the youtu.be
// short-path form.
var idExprs = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{6,})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{6,})`),
}

// ExtractID pulls the platform video identifier out of a URL, or returns ""
// when no identifier is recognizable.
func ExtractID(rawURL string) string {
	for _, expr := range idExprs {
		if match := expr.FindStringSubmatch(rawURL); match != nil {
			return match[1]
		}
	}
	return ""
}

// Fetcher implements the video path: identifier extraction, a page-title
// fetch, and transcript extraction when a client is configured.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	transcripts ports.TranscriptClient
	maxChars    int
	logger      *slog.Logger
}

var _ fetch.Strategy = (*Fetcher)(nil)

// NewFetcher wires the video strategy. A nil transcripts client means no
// credential is configured and every record degrades to a placeholder
// without any transcript API call. maxChars bounds the transcript text.
func NewFetcher(client *http.Client, userAgent string, transcripts ports.TranscriptClient, maxChars int, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if userAgent == "" {
		userAgent = "DailyDigest/1.0"
	}
	if maxChars <= 0 {
		maxChars = 2000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:      client,
		userAgent:   userAgent,
		transcripts: transcripts,
		maxChars:    maxChars,
		logger:      logger,
	}
}

// Name identifies the strategy inside the registry.
func (f *Fetcher) Name() string {
	return "video"
}

// Fetch produces a video record, or nil when the URL carries no extractable
// identifier. Transcript failures degrade to a placeholder record; they do
// not surface as errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*domain.ContentRecord, error) {
	id := ExtractID(rawURL)
	if id == "" {
		return nil, nil
	}

	title := f.pageTitle(ctx, rawURL)
	if title == "" {
		title = "Video " + id
	}

	if f.transcripts == nil {
		return &domain.ContentRecord{
			URL:   rawURL,
			Title: title,
			Text:  noCredentialText,
			Kind:  domain.KindVideoNoTranscript,
		}, nil
	}

	transcript, err := f.transcripts.Transcript(ctx, rawURL)
	if err != nil || strings.TrimSpace(transcript) == "" {
		if err != nil {
			f.logger.Warn("transcript extraction failed", "url", rawURL, "error", err)
		}
		return &domain.ContentRecord{
			URL:   rawURL,
			Title: title,
			Text:  failedText,
			Kind:  domain.KindVideoNoTranscript,
		}, nil
	}

	if len(transcript) > f.maxChars {
		transcript = transcript[:f.maxChars]
	}

	return &domain.ContentRecord{
		URL:   rawURL,
		Title: title,
		Text:  TranscriptMarker + transcript,
		Kind:  domain.KindVideoTranscript,
	}, nil
}

func (f *Fetcher) pageTitle(ctx context.Context, rawURL string) string {
	doc, err := scrape.FetchDocument(ctx, f.client, rawURL, f.userAgent)
	if err != nil {
		f.logger.Debug("video page fetch failed", "url", rawURL, "error", err)
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
