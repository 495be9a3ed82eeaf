package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extract parses markup and yields one Record per node matching the article
// selector. The title is the first title-selector match's "title" attribute,
// falling back to its trimmed text. The link comes from the first
// link-selector match's "href", resolved against baseURL. Candidates with an
// empty title or an unresolvable link are dropped silently; a malformed
// candidate reduces the result set, it never fails the run. Re-running over
// the same markup yields the same records.
func Extract(markup string, baseURL string, sel Selectors) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var records []Record
	doc.Find(sel.Article).Each(func(_ int, article *goquery.Selection) {
		titleNode := article.Find(sel.Title).First()
		title := strings.TrimSpace(titleNode.AttrOr("title", ""))
		if title == "" {
			title = strings.TrimSpace(titleNode.Text())
		}
		if title == "" {
			return
		}

		href := strings.TrimSpace(article.Find(sel.Link).First().AttrOr("href", ""))
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		if !abs.IsAbs() || abs.Host == "" {
			return
		}

		rec := Record{
			Title: title,
			URL:   abs.String(),
		}
		if sel.Price != "" {
			rec.Price = strings.TrimSpace(article.Find(sel.Price).First().Text())
		}
		records = append(records, rec)
	})
	return records, nil
}
