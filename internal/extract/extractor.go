package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/vendordocs/docscout/internal/domain"
)

const defaultTimeout = 30 * time.Second

// skippedElements never contribute to body text: chrome, scripts and styles.
const skippedElements = "script, style, nav, footer, header, noscript"

// Extractor turns one documentation page into a normalized Document.
// A failed extraction is reported as *domain.ExtractionFailure; retries are
// the pipeline's concern, not the extractor's.
type Extractor interface {
	Extract(ctx context.Context, url string, productType domain.ProductType) (*domain.Document, error)
}

type PageExtractor struct {
	client *http.Client
}

type Option func(*PageExtractor)

func WithTimeout(d time.Duration) Option {
	return func(e *PageExtractor) {
		e.client.Timeout = d
	}
}

func NewPageExtractor(opts ...Option) *PageExtractor {
	e := &PageExtractor{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *PageExtractor) Extract(ctx context.Context, url string, productType domain.ProductType) (*domain.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.ExtractionFailure{Kind: domain.FailureFetch, URL: url, Cause: err.Error()}
	}
	req.Header.Set("User-Agent", "docscout/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &domain.ExtractionFailure{Kind: domain.FailureFetch, URL: url, Cause: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.ExtractionFailure{
			Kind:  domain.FailureFetch,
			URL:   url,
			Cause: fmt.Sprintf("unexpected status: %s", resp.Status),
		}
	}

	page, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &domain.ExtractionFailure{Kind: domain.FailureEmptyContent, URL: url, Cause: err.Error()}
	}

	doc := parse(page, url, productType)
	if doc.BodyText == "" {
		return nil, &domain.ExtractionFailure{Kind: domain.FailureEmptyContent, URL: url}
	}

	return doc, nil
}

// parse is deterministic for a given markup tree.
func parse(page *goquery.Document, url string, productType domain.ProductType) *domain.Document {
	title := normalizeWhitespace(page.Find("title").First().Text())

	page.Find(skippedElements).Remove()

	var headings []string
	page.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if h := normalizeWhitespace(s.Text()); h != "" {
			headings = append(headings, h)
		}
	})

	body := normalizeWhitespace(page.Find("body").Text())

	return &domain.Document{
		ID:          domain.DocumentID(url),
		ProductType: productType,
		SourceURL:   url,
		Title:       title,
		Headings:    headings,
		BodyText:    body,
		FetchedAt:   time.Now().UTC(),
	}
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
