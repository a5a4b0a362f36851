package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
	"github.com/phrazzld/studyrooms-api/internal/domain"
)

const (
	// maxTextLength caps the material passed on to prompts.
	maxTextLength = 15000
	// minPageTextLength rejects login walls, cookie walls and empty pages.
	minPageTextLength = 100
	// maxBodySize is the maximum HTTP response body size (5MB).
	maxBodySize = 5 * 1024 * 1024
	// maxTopicWords is the longest single line still treated as a topic.
	maxTopicWords = 12
)

// Extraction errors.
var (
	ErrFetchFailed     = errors.New("failed to fetch source page")
	ErrContentTooShort = errors.New("extracted content too short")
)

// Material is resolved study material.
type Material struct {
	Kind    domain.SourceKind
	Content string
	// Title is the page title for URL sources and empty otherwise.
	Title  string
	URL    string
	Byline string
}

// Extractor resolves raw submissions. In demo mode it never touches the network.
type Extractor struct {
	client *http.Client
	mode   domain.BackendMode
	logger *slog.Logger
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithHTTPClient replaces the default HTTP client, which refuses to dial
// non-public addresses.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) { e.client = c }
}

// NewExtractor creates an Extractor for mode.
func NewExtractor(mode domain.BackendMode, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Extractor{
		client: newPublicClient(30 * time.Second),
		mode:   mode,
		logger: logger.With(slog.String("component", "source_extractor")),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detect classifies raw input without resolving it.
func Detect(raw string) domain.SourceKind {
	s := strings.TrimSpace(raw)
	if isURL(s) {
		return domain.SourceKindURL
	}
	if !strings.Contains(s, "\n") && len(strings.Fields(s)) <= maxTopicWords && !strings.ContainsAny(s, ".;") {
		return domain.SourceKindTopic
	}
	return domain.SourceKindText
}

func isURL(s string) bool {
	if strings.ContainsAny(s, " \t\n") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Resolve turns raw input into study material.
func (e *Extractor) Resolve(ctx context.Context, raw string) (Material, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Material{}, domain.NewValidationError("content", "cannot be empty", domain.ErrEmptyContent)
	}

	switch Detect(s) {
	case domain.SourceKindURL:
		if e.mode.IsDemo() {
			e.logger.DebugContext(ctx, "demo mode, not fetching source url", slog.String("url", s))
			return Material{Kind: domain.SourceKindURL, Content: "Study notes from " + s, URL: s}, nil
		}
		return e.fetch(ctx, s)
	case domain.SourceKindTopic:
		return Material{Kind: domain.SourceKindTopic, Content: s}, nil
	default:
		return Material{Kind: domain.SourceKindText, Content: truncate(normalizeText(s))}, nil
	}
}

func (e *Extractor) fetch(ctx context.Context, pageURL string) (Material, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Material{}, fmt.Errorf("%w: create request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("User-Agent", "studyrooms-api/1.0 (+https://github.com/phrazzld/studyrooms-api)")

	resp, err := e.client.Do(req)
	if err != nil {
		return Material{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Material{}, fmt.Errorf("%w: HTTP %d for %s", ErrFetchFailed, resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return Material{}, fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}

	parsedURL, _ := url.Parse(pageURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return Material{}, fmt.Errorf("%w: readability: %v", ErrFetchFailed, err)
	}

	text := normalizeText(article.TextContent)
	if n := utf8.RuneCountInString(text); n < minPageTextLength {
		return Material{}, fmt.Errorf("%w (%d chars), possibly blocked or empty page", ErrContentTooShort, n)
	}

	e.logger.InfoContext(ctx, "extracted source page",
		slog.String("url", pageURL),
		slog.String("title", article.Title),
		slog.Int("words", len(strings.Fields(text))))

	return Material{
		Kind:    domain.SourceKindURL,
		Content: truncate(text),
		Title:   strings.TrimSpace(article.Title),
		URL:     pageURL,
		Byline:  article.Byline,
	}, nil
}

var multiSpace = regexp.MustCompile(`[ \t]+`)
var multiNewline = regexp.MustCompile(`\n{3,}`)

func normalizeText(s string) string {
	s = strings.TrimSpace(s)
	s = multiSpace.ReplaceAllString(s, " ")
	s = multiNewline.ReplaceAllString(s, "\n\n")
	return s
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxTextLength {
		return s
	}
	return string([]rune(s)[:maxTextLength])
}
