package arxivhunter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Client fetches records from arXiv.
type Client struct {
	http      *http.Client
	baseURL   string
	rssURL    string
	userAgent string
	memo      *LRU[*Record]
	log       *zap.Logger
}

// NewClient returns a Client configured from cfg. A nil logger is replaced
// with a no-op logger.
func NewClient(cfg *Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		http:      &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:   cfg.BaseURL,
		rssURL:    cfg.RSSURL,
		userAgent: cfg.UserAgent,
		memo:      NewLRU[*Record](cfg.MemoSize),
		log:       log,
	}
}

// Fetch retrieves and parses the abstract page for id. Results are memoised
// for the life of the Client.
func (c *Client) Fetch(ctx context.Context, id string) (*Record, error) {
	if rec, ok := c.memo.Get(id); ok {
		c.log.Debug("record memo hit", zap.String("id", id))
		return rec, nil
	}

	link := AbstractURL(c.baseURL, id)
	c.log.Debug("fetching abstract page", zap.String("id", id), zap.String("url", link))

	resp, err := c.get(ctx, link)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rec, err := ParseAbstractPage(resp.Body, id, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", link, err)
	}
	c.memo.Put(id, rec)
	return rec, nil
}

// Forget drops id from the memo so the next Fetch goes to the network.
func (c *Client) Forget(id string) {
	c.memo.Delete(id)
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrNetwork, url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: get %s: http %s: %s", ErrNetwork, url, resp.Status, strings.TrimSpace(string(b)))
	}
	return resp, nil
}

// ParseAbstractPage extracts a record from an arXiv abstract page. base is
// used to build the record's links.
func ParseAbstractPage(r io.Reader, id, base string) (*Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read html: %w", ErrParse, err)
	}

	rec := &Record{
		ID:      id,
		Link:    AbstractURL(base, id),
		PDFLink: PDFURL(base, id),
	}

	subject := doc.Find("td.subjects span.primary-subject").First()
	if subject.Length() == 0 {
		subject = doc.Find("td span").First()
	}
	rec.Category = cleanText(subject.Text())
	if rec.Category == "" {
		return nil, fmt.Errorf("%w: no subject category for %s", ErrParse, id)
	}

	rec.Title = cleanText(metaContent(doc, "citation_title"))
	if rec.Title == "" {
		return nil, fmt.Errorf("%w: no citation_title for %s", ErrParse, id)
	}

	var authorErr error
	doc.Find(`meta[name="citation_author"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, err := authorName(s.AttrOr("content", ""))
		if err != nil {
			authorErr = err
			return false
		}
		if name != "" {
			rec.Authors = append(rec.Authors, name)
		}
		return true
	})
	if authorErr != nil {
		return nil, authorErr
	}
	if len(rec.Authors) == 0 {
		return nil, fmt.Errorf("%w: no citation_author for %s", ErrParse, id)
	}

	if d := strings.TrimSpace(metaContent(doc, "citation_date")); d != "" {
		for _, layout := range []string{"2006/01/02", "2006-01-02", "2006/01"} {
			if t, err := time.Parse(layout, d); err == nil {
				rec.Date = t
				break
			}
		}
	}

	rec.Abstract = cleanText(metaContent(doc, "citation_abstract"))
	if rec.Abstract == "" {
		bq := doc.Find("blockquote.abstract").First().Clone()
		bq.Find(".descriptor").Remove()
		rec.Abstract = cleanText(bq.Text())
	}

	return rec, nil
}

func metaContent(doc *goquery.Document, name string) string {
	return doc.Find(`meta[name="` + name + `"]`).First().AttrOr("content", "")
}

// authorName converts "Last, First" to "First Last". Names without a comma
// are kept as they are; more than one separator is rejected.
func authorName(raw string) (string, error) {
	raw = cleanText(raw)
	if raw == "" {
		return "", nil
	}
	parts := strings.Split(raw, ", ")
	switch len(parts) {
	case 1:
		return parts[0], nil
	case 2:
		return parts[1] + " " + parts[0], nil
	default:
		return "", fmt.Errorf("%w: author %q has %d separators", ErrParse, raw, len(parts)-1)
	}
}

// cleanText collapses whitespace and normalises to NFC.
func cleanText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
