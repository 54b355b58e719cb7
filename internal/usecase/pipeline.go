package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"DailyDigest/internal/config"
	"DailyDigest/internal/domain"
	"DailyDigest/internal/fetch"
	"DailyDigest/internal/links"
	"DailyDigest/internal/ports"
)

const promptTemplate = `You are an AI news curator. Generate a concise daily brief from these AI-related items.

Items:
%s
Create a Markdown summary with this exact structure:

# Daily AI News — %s

## TL;DR
(5-10 bullet points of the most important updates)

## Notable Launches & Updates
(Product releases, feature announcements)

## Research & Papers
(Academic papers, technical research)

## Funding & Policy
(Investments, regulations, policy changes)

## Video Summaries
(Only items whose content starts with ` + "`[Transcript]`" + `; summarize each video)

## All Links
(For each item: - **[Title](URL)**: One-line summary)

Use concrete facts, no hype. Be specific about numbers, companies, and products.`

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source    ports.MessageSource
	Fetchers  *fetch.Registry
	Generator ports.Generator
	Publisher ports.Publisher
	Config    config.Config
	Logger    *slog.Logger
}

// Pipeline implements one synchronous digest run: collect links, fetch
// content, generate the digest, publish it.
type Pipeline struct {
	source    ports.MessageSource
	fetchers  *fetch.Registry
	generator ports.Generator
	publisher ports.Publisher
	cfg       config.Config
	logger    *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:    deps.Source,
		fetchers:  deps.Fetchers,
		generator: deps.Generator,
		publisher: deps.Publisher,
		cfg:       deps.Config,
		logger:    logger,
	}
}

// Run executes one digest run for the local day containing now. The caller
// provides now so day-boundary behavior is deterministic under test.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (domain.RunResult, error) {
	if err := p.cfg.Validate(); err != nil {
		return domain.RunResult{}, fmt.Errorf("configuration: %w", err)
	}

	log := p.logger.With("run_id", uuid.NewString())
	day := dayWindow(now, p.cfg.Day.UTCOffsetHours)
	log.Info("starting digest run",
		"day", day.Date,
		"channels", len(p.cfg.Discord.SourceChannelIDs))

	candidates := p.collectLinks(ctx, log, day)
	log.Info("collected candidate urls", "count", candidates.Len())

	if candidates.Len() == 0 {
		notice := fmt.Sprintf("# Daily AI News — %s\n\n*No links found for today.*", day.Date)
		if err := p.publisher.PublishText(ctx, p.cfg.Discord.DigestChannelID, notice); err != nil {
			return domain.RunResult{}, fmt.Errorf("publish no-links notice: %w", err)
		}
		return domain.RunResult{}, nil
	}

	records := p.fetchContent(ctx, log, candidates.URLs())
	qualified := filterSubstantial(records, p.cfg.Digest.MinTextLen)
	log.Info("fetched content", "records", len(records), "substantial", len(qualified))

	if len(qualified) == 0 {
		notice := fmt.Sprintf("# Daily AI News — %s\n\n*No substantial content could be extracted from today's links.*", day.Date)
		if err := p.publisher.PublishText(ctx, p.cfg.Discord.DigestChannelID, notice); err != nil {
			return domain.RunResult{}, fmt.Errorf("publish no-content notice: %w", err)
		}
		return domain.RunResult{LinkCount: candidates.Len()}, nil
	}

	prompt := buildPrompt(qualified, day.Date, p.cfg.Digest.PromptTextLimit)
	digest, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("generate digest: %w", err)
	}

	filename := fmt.Sprintf("ai-news-%s.md", day.Date)
	if err := p.deliver(ctx, digest, day.Date, filename); err != nil {
		return domain.RunResult{}, err
	}

	log.Info("digest published", "filename", filename, "length", len(digest))

	return domain.RunResult{
		LinkCount:    candidates.Len(),
		ArticleCount: len(qualified),
		Filename:     filename,
		Preview:      preview(digest, p.cfg.Digest.PreviewLimit),
	}, nil
}

// collectLinks walks the configured channels in order and folds every URL of
// every in-window message into the deduplicated candidate set. A failed
// channel fetch is logged and skipped; it never aborts the run.
func (p *Pipeline) collectLinks(ctx context.Context, log *slog.Logger, day window) *links.Set {
	set := links.NewSet(p.cfg.Links.ExcludedHosts)

	for _, channelID := range p.cfg.Discord.SourceChannelIDs {
		messages, err := p.source.ChannelMessages(ctx, channelID, p.cfg.Discord.MessageLimit)
		if err != nil {
			log.Warn("channel fetch failed", "channel", channelID, "error", err)
			continue
		}

		kept := 0
		for _, msg := range messages {
			if msg.Timestamp.Before(day.Start) || msg.Timestamp.After(day.End) {
				continue
			}
			kept++

			for _, raw := range links.Extract(msg.Content) {
				set.Add(raw)
			}
			for _, embed := range msg.Embeds {
				if embed.URL != "" {
					set.Add(embed.URL)
				}
			}
		}

		log.Debug("channel processed", "channel", channelID, "messages", len(messages), "in_window", kept)
	}

	return set
}

// fetchContent processes candidates one at a time. Any single URL's failure
// is logged and dropped; the remaining URLs still run.
func (p *Pipeline) fetchContent(ctx context.Context, log *slog.Logger, candidates []string) []domain.ContentRecord {
	records := make([]domain.ContentRecord, 0, len(candidates))

	for _, candidate := range candidates {
		strategy := p.fetchers.Resolve(candidate)
		if strategy == nil {
			log.Debug("url skipped", "url", candidate)
			continue
		}

		record, err := strategy.Fetch(ctx, candidate)
		if err != nil {
			log.Warn("content fetch failed", "url", candidate, "strategy", strategy.Name(), "error", err)
			continue
		}
		if record == nil {
			log.Debug("url yielded no content", "url", candidate, "strategy", strategy.Name())
			continue
		}

		records = append(records, *record)
	}

	return records
}

// deliver posts the digest inline when it fits the platform message limit,
// otherwise as a file attachment with a short notice.
func (p *Pipeline) deliver(ctx context.Context, digest, date, filename string) error {
	channelID := p.cfg.Discord.DigestChannelID

	if len(digest) > p.cfg.Digest.InlineLimit {
		notice := fmt.Sprintf("# Daily AI News Summary — %s\n\n*Summary attached as file (too long for inline message)*", date)
		if err := p.publisher.PublishFile(ctx, channelID, notice, filename, digest); err != nil {
			return fmt.Errorf("publish digest file: %w", err)
		}
		return nil
	}

	if err := p.publisher.PublishText(ctx, channelID, digest); err != nil {
		return fmt.Errorf("publish digest: %w", err)
	}
	return nil
}

func buildPrompt(records []domain.ContentRecord, date string, textLimit int) string {
	var items strings.Builder
	for i, record := range records {
		fmt.Fprintf(&items, "%d. %s\nURL: %s\nContent: %s\n\n",
			i+1, record.Title, record.URL, truncate(record.Text, textLimit))
	}
	return fmt.Sprintf(promptTemplate, items.String(), date)
}

func filterSubstantial(records []domain.ContentRecord, minTextLen int) []domain.ContentRecord {
	qualified := make([]domain.ContentRecord, 0, len(records))
	for _, record := range records {
		if len(strings.TrimSpace(record.Text)) > minTextLen {
			qualified = append(qualified, record)
		}
	}
	return qualified
}

func preview(digest string, limit int) string {
	if limit <= 0 || len(digest) <= limit {
		return digest
	}
	return digest[:limit] + "..."
}

func truncate(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return text[:limit]
}

// window bounds one local calendar day as UTC instants.
type window struct {
	Start time.Time
	End   time.Time
	Date  string
}

// dayWindow shifts now by the fixed offset, floors and ceils to the local
// day boundaries, and shifts back. Fixed offsets ignore DST on purpose.
func dayWindow(now time.Time, offsetHours int) window {
	offset := time.Duration(offsetHours) * time.Hour
	local := now.UTC().Add(offset)
	localStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	localEnd := localStart.Add(24*time.Hour - time.Nanosecond)

	return window{
		Start: localStart.Add(-offset),
		End:   localEnd.Add(-offset),
		Date:  localStart.Format("2006-01-02"),
	}
}
