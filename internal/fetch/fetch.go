package fetch

import (
	"context"
	"net/url"
	"strings"

	"DailyDigest/internal/domain"
)

// Strategy produces a uniform content record for one class of URL.
// A nil record with a nil error means the URL yields nothing and is skipped.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, rawURL string) (*domain.ContentRecord, error)
}

// Registry routes each candidate URL to the strategy owning its host class:
// video hosts to the video path, skip-listed hosts to a silent drop, and
// everything else to the generic-article path.
type Registry struct {
	video      Strategy
	article    Strategy
	videoHosts []string
	skipHosts  []string
}

// NewRegistry wires the two strategies with their host classifications.
func NewRegistry(video, article Strategy, videoHosts, skipHosts []string) *Registry {
	return &Registry{
		video:      video,
		article:    article,
		videoHosts: videoHosts,
		skipHosts:  skipHosts,
	}
}

// Resolve picks the strategy responsible for rawURL. A nil result means the
// URL is dropped without producing a record. Unparseable URLs fall through
// to the article path, whose request will fail and be isolated there.
func (r *Registry) Resolve(rawURL string) Strategy {
	host := hostOf(rawURL)

	for _, video := range r.videoHosts {
		if video != "" && strings.Contains(host, video) {
			return r.video
		}
	}

	for _, skip := range r.skipHosts {
		if skip != "" && strings.Contains(host, skip) {
			return nil
		}
	}

	return r.article
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}
