package domain

import "time"

// Embed is the platform-supplied link preview attached to a message,
// distinct from the raw text body.
type Embed struct {
	URL         string
	Description string
}

// Message is a single chat message as read from the messaging platform.
// It is discarded once its URLs have been extracted.
type Message struct {
	ID        string
	Content   string
	Timestamp time.Time
	Embeds    []Embed
}

// ContentKind tags how a record's text body was obtained.
type ContentKind string

const (
	KindArticle           ContentKind = "article"
	KindVideoTranscript   ContentKind = "video-transcript"
	KindVideoNoTranscript ContentKind = "video-no-transcript"
)

// ContentRecord is the uniform per-URL result consumed by the digest prompt.
type ContentRecord struct {
	URL   string
	Title string
	Text  string
	Kind  ContentKind
}

// RunResult is what the trigger caller gets back; nothing outlives the run.
type RunResult struct {
	LinkCount    int
	ArticleCount int
	Filename     string
	Preview      string
}
