package arxivhunter

import (
	"fmt"
	"regexp"
	"strings"
)

// arXiv ID patterns:
// - New format: YYMM.NNNN or YYMM.NNNNN (e.g., 1234.5678, 2301.12345)
// - Old format: archive/YYMMNNN or archive.SC/YYMMNNN (e.g., hep-th/9901001)
var (
	newIDPattern = regexp.MustCompile(`^\d{4}\.\d{4,5}$`)
	oldIDPattern = regexp.MustCompile(`^[a-z]+(?:-[a-z]+)?(?:\.[A-Z]{2})?/\d{7}$`)

	// arxiv.org/abs/ID or arxiv.org/pdf/ID[.pdf]
	urlIDPattern = regexp.MustCompile(`(?i)arxiv\.org/(?:abs|pdf)/(.+?)(?:\.pdf)?/?$`)
)

// ParseID accepts an identifier as users tend to paste it ("2301.00001",
// "arXiv:2301.00001v2", "https://arxiv.org/abs/hep-th/9901001") and returns
// the bare identifier without a version suffix.
func ParseID(s string) (string, error) {
	id := strings.TrimSpace(s)
	if m := urlIDPattern.FindStringSubmatch(id); m != nil {
		id = m[1]
	}
	if len(id) > 6 && strings.EqualFold(id[:6], "arxiv:") {
		id = strings.TrimSpace(id[6:])
	}
	id = normalizeArxivID(id)

	if !newIDPattern.MatchString(id) && !oldIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: invalid arXiv identifier %q", ErrParse, s)
	}
	return id, nil
}

// normalizeArxivID strips version suffixes (e.g., "2301.00001v2" -> "2301.00001").
func normalizeArxivID(id string) string {
	idx := strings.LastIndex(id, "v")
	if idx <= 0 {
		return id
	}
	suffix := id[idx+1:]
	if suffix == "" {
		return id
	}
	for _, c := range suffix {
		if c < '0' || c > '9' {
			return id
		}
	}
	return id[:idx]
}
