package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/fetch"
)

// ArticleFetcher implements the generic-article path: one GET per URL with a
// descriptive User-Agent, then title and meta-description extraction.
type ArticleFetcher struct {
	client    *http.Client
	userAgent string
}

var _ fetch.Strategy = (*ArticleFetcher)(nil)

// NewArticleFetcher wires an HTTP client; the client defaults to a 10s timeout.
func NewArticleFetcher(client *http.Client, userAgent string) *ArticleFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if userAgent == "" {
		userAgent = "DailyDigest/1.0"
	}
	return &ArticleFetcher{client: client, userAgent: userAgent}
}

// Name identifies the strategy inside the registry.
func (f *ArticleFetcher) Name() string {
	return "article"
}

// Fetch downloads the page and extracts its title and short description.
// The title falls back to the URL's host, the description to empty.
func (f *ArticleFetcher) Fetch(ctx context.Context, rawURL string) (*domain.ContentRecord, error) {
	doc, err := FetchDocument(ctx, f.client, rawURL, f.userAgent)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = hostFallback(rawURL)
	}

	return &domain.ContentRecord{
		URL:   rawURL,
		Title: title,
		Text:  metaDescription(doc),
		Kind:  domain.KindArticle,
	}, nil
}

// FetchDocument performs the GET and parses the body as HTML.
func FetchDocument(ctx context.Context, client *http.Client, pageURL, userAgent string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

func metaDescription(doc *goquery.Document) string {
	selectors := []string{
		`meta[name="description"]`,
		`meta[property="description"]`,
		`meta[property="og:description"]`,
	}
	for _, selector := range selectors {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func hostFallback(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}
