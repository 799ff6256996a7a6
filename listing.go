package arxivhunter

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// Listing is one entry of an archive's newest submissions.
type Listing struct {
	ID      string
	Title   string
	Authors []string
	Link    string
}

// Latest returns the newest submissions of an arXiv archive (for example
// "hep-th" or "cs.LG") from its RSS feed. Entries without a recognisable
// identifier are skipped.
func (c *Client) Latest(ctx context.Context, archive string) ([]Listing, error) {
	archive = strings.TrimSpace(archive)
	if archive == "" || strings.ContainsAny(archive, "/?# ") {
		return nil, fmt.Errorf("%w: invalid archive %q", ErrParse, archive)
	}
	url := strings.TrimRight(c.rssURL, "/") + "/" + archive
	c.log.Debug("fetching listing", zap.String("url", url))

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed %s: %w", ErrParse, url, err)
	}

	listings := make([]Listing, 0, len(feed.Items))
	for _, item := range feed.Items {
		id, err := ParseID(item.Link)
		if err != nil {
			c.log.Debug("skipping feed item", zap.String("link", item.Link), zap.Error(err))
			continue
		}
		listings = append(listings, Listing{
			ID:      id,
			Title:   cleanText(item.Title),
			Authors: feedAuthors(item),
			Link:    item.Link,
		})
	}
	return listings, nil
}

// feedAuthors flattens the item's authors. arXiv puts every author into a
// single comma separated dc:creator.
func feedAuthors(item *gofeed.Item) []string {
	var out []string
	for _, p := range item.Authors {
		if p == nil {
			continue
		}
		for _, name := range strings.Split(p.Name, ",") {
			if name = cleanText(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}
