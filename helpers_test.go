package arxivhunter

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeArxiv serves abstract pages and RSS listings from memory.
type fakeArxiv struct {
	mu    sync.Mutex
	pages map[string]string
	feeds map[string]string
	hits  map[string]int
	srv   *httptest.Server
}

func newFakeArxiv(t *testing.T) *fakeArxiv {
	t.Helper()
	f := &fakeArxiv{
		pages: make(map[string]string),
		feeds: make(map[string]string),
		hits:  make(map[string]int),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeArxiv) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasPrefix(r.URL.Path, "/abs/"):
		id := strings.TrimPrefix(r.URL.Path, "/abs/")
		f.hits[id]++
		page, ok := f.pages[id]
		if !ok {
			http.Error(w, "Article identifier '"+id+"' not recognized", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	case strings.HasPrefix(r.URL.Path, "/rss/"):
		feed, ok := f.feeds[strings.TrimPrefix(r.URL.Path, "/rss/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feed)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeArxiv) setPage(id, page string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[id] = page
}

func (f *fakeArxiv) setFeed(archive, feed string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feeds[archive] = feed
}

func (f *fakeArxiv) hitCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[id]
}

func (f *fakeArxiv) URL() string {
	return f.srv.URL
}

// absPage renders a minimal abstract page.
func absPage(title, category string, authors ...string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head>\n")
	fmt.Fprintf(&b, "<meta name=\"citation_title\" content=\"%s\" />\n", html.EscapeString(title))
	for _, a := range authors {
		fmt.Fprintf(&b, "<meta name=\"citation_author\" content=\"%s\" />\n", html.EscapeString(a))
	}
	b.WriteString("<meta name=\"citation_date\" content=\"2020/01/02\" />\n")
	fmt.Fprintf(&b, "<meta name=\"citation_abstract\" content=\"Abstract of %s.\" />\n", html.EscapeString(title))
	b.WriteString("</head><body><table><tr><td class=\"tablecell subjects\">")
	fmt.Fprintf(&b, "<span class=\"primary-subject\">%s</span>", html.EscapeString(category))
	b.WriteString("</td></tr></table></body></html>\n")
	return b.String()
}

func readTestdata(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

// testConfig returns a config rooted in a temporary directory that fetches
// from base and uses `true` as both LaTeX and viewer.
func testConfig(t *testing.T, base string) *Config {
	t.Helper()
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	cfg.Root = t.TempDir()
	cfg.BaseURL = base
	cfg.RSSURL = base + "/rss"
	cfg.LaTeX = "true"
	cfg.Viewer = "true"
	cfg.HTTPTimeout = 5 * time.Second
	cfg.Author = "Test Author"
	return cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
