package scrape

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/handiism/rom-browser/internal/httpx"
	"github.com/handiism/rom-browser/internal/model"
)

// Extractor turns listing pages into record lists using a source's CSS
// selectors and ignore rules.
//
// Example usage:
//
//	ex := scrape.NewExtractor(httpx.NewClient())
//	records, err := ex.Extract(ctx, source)
type Extractor struct {
	client *httpx.Client
}

// NewExtractor creates an Extractor using the given client for page
// fetches.
func NewExtractor(client *httpx.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract fetches every listing URL of the source and concatenates the
// extracted records in page order.
//
// A fetch or parse failure stops processing of the failing URL but keeps
// records already collected; the error describes the first failure. A
// source that fails entirely simply yields no records; the caller logs the
// error and moves on to other sources.
func (e *Extractor) Extract(ctx context.Context, src *model.Source) ([]model.Record, error) {
	var records []model.Record
	var firstErr error

	for _, pageURL := range src.ListingURLs() {
		body, err := e.client.GetString(ctx, pageURL)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("fetching %s: %w", pageURL, err)
			}
			continue
		}

		pageRecords, err := Parse(strings.NewReader(body), pageURL, src)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("parsing %s: %w", pageURL, err)
			}
			continue
		}
		records = append(records, pageRecords...)
	}

	return records, firstErr
}

// Parse extracts records from one listing page.
//
// For each node matched by the source's entries selector, the name and url
// field selectors must both match an element; entries lacking either are
// silently dropped. A missing size selector or element yields the
// model.SizeUnknown sentinel. Ignore rules are applied before a record is
// included, so ignored entries never reach categorization. Relative hrefs
// are prefixed with the page URL.
func Parse(r io.Reader, pageURL string, src *model.Source) ([]model.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	entriesSel := src.Entries
	if entriesSel == "" {
		entriesSel = "a"
	}
	nameSel := src.Fields.Name
	if nameSel == "" {
		nameSel = "a"
	}
	urlSel := src.Fields.URL
	if urlSel == "" {
		urlSel = "a"
	}

	var ignoreName, ignoreSize string
	if src.Ignore != nil {
		ignoreName = strings.ToLower(src.Ignore.NameContains)
		ignoreSize = src.Ignore.Size
	}

	var records []model.Record
	doc.Find(entriesSel).Each(func(_ int, entry *goquery.Selection) {
		nameNode := entry.Find(nameSel).First()
		urlNode := entry.Find(urlSel).First()
		if nameNode.Length() == 0 || urlNode.Length() == 0 {
			return
		}

		name := strings.TrimSpace(nameNode.Text())
		href := strings.TrimSpace(urlNode.AttrOr("href", ""))
		if name == "" || href == "" {
			return
		}

		size := model.SizeUnknown
		if src.Fields.Size != "" {
			if sizeNode := entry.Find(src.Fields.Size).First(); sizeNode.Length() > 0 {
				size = strings.TrimSpace(sizeNode.Text())
				if size == "" {
					size = model.SizeUnknown
				}
			}
		}

		if ignoreName != "" && strings.Contains(strings.ToLower(name), ignoreName) {
			return
		}
		if ignoreSize != "" && size == ignoreSize {
			return
		}

		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			href = pageURL + href
		}

		records = append(records, model.Record{Name: name, URL: href, Size: size})
	})

	return records, nil
}
