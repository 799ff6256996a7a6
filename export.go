package arxivhunter

import (
	"fmt"
	"io"
	"strings"
)

// Export formats.
const (
	FormatBibTeX = "bibtex"
	FormatRIS    = "ris"
)

// Entry is a stored record as exported: the row as kept in its store plus
// whatever the metadata index knows about it.
type Entry struct {
	Store  string
	Row    Row
	Record *Record // nil when the record was never indexed
}

// BibTeX renders the entry as a @misc BibTeX entry.
func (e *Entry) BibTeX() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "@misc{%s,\n", e.BibTeXKey())

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "  %s = {%s},\n", name, escapeTeX(value))
		}
	}
	field("title", e.Row.Title)
	field("author", formatAuthorsBibTeX(e.authors()))
	if e.Record != nil && !e.Record.Date.IsZero() {
		field("year", fmt.Sprintf("%d", e.Record.Date.Year()))
		field("month", e.Record.Date.Format("January"))
	}
	field("eprint", e.Row.ID)
	field("archivePrefix", "arXiv")
	if e.Record != nil {
		field("primaryClass", ArchiveCode(e.Record.Category))
	}
	// URLs are not escaped; hyperref and biblatex take them verbatim.
	if e.Row.Link != "" {
		fmt.Fprintf(&sb, "  url = {%s},\n", e.Row.Link)
	}
	if e.Row.Comment != "" && e.Row.Comment != "-" {
		field("note", e.Row.Comment)
	}
	sb.WriteString("}\n")
	return sb.String()
}

// BibTeXKey builds a citation key from the first author's last name, the
// year and the first word of the title, falling back to the identifier.
func (e *Entry) BibTeXKey() string {
	key := ""
	if authors := e.authors(); len(authors) > 0 {
		words := strings.Fields(authors[0])
		if len(words) > 0 {
			key = keyWord(words[len(words)-1], 0)
		}
	}
	if e.Record != nil && !e.Record.Date.IsZero() {
		key += fmt.Sprintf("%d", e.Record.Date.Year())
	}
	if words := strings.Fields(e.Row.Title); len(words) > 0 {
		key += keyWord(words[0], 5)
	}
	if key == "" {
		key = strings.NewReplacer(".", "", "/", "").Replace(e.Row.ID)
	}
	return key
}

// RIS renders the entry in RIS format.
func (e *Entry) RIS() string {
	var sb strings.Builder
	sb.WriteString("TY  - JOUR\n")
	if e.Row.Title != "" {
		fmt.Fprintf(&sb, "TI  - %s\n", e.Row.Title)
	}
	for _, a := range e.authors() {
		fmt.Fprintf(&sb, "AU  - %s\n", a)
	}
	if e.Record != nil {
		if !e.Record.Date.IsZero() {
			fmt.Fprintf(&sb, "PY  - %d\n", e.Record.Date.Year())
			fmt.Fprintf(&sb, "DA  - %s\n", e.Record.Date.Format("2006/01/02"))
		}
		if e.Record.Abstract != "" {
			fmt.Fprintf(&sb, "AB  - %s\n", e.Record.Abstract)
		}
		if code := ArchiveCode(e.Record.Category); code != "" {
			fmt.Fprintf(&sb, "KW  - %s\n", code)
		}
	}
	if e.Row.Link != "" {
		fmt.Fprintf(&sb, "UR  - %s\n", e.Row.Link)
	}
	fmt.Fprintf(&sb, "M3  - arXiv:%s\n", e.Row.ID)
	if e.Row.Comment != "" && e.Row.Comment != "-" {
		fmt.Fprintf(&sb, "N1  - %s\n", e.Row.Comment)
	}
	sb.WriteString("ER  - \n")
	return sb.String()
}

// WriteEntries writes entries to w in the given format.
func WriteEntries(w io.Writer, format string, entries []Entry) error {
	for i := range entries {
		var s string
		switch format {
		case FormatBibTeX, "":
			s = entries[i].BibTeX()
		case FormatRIS:
			s = entries[i].RIS()
		default:
			return fmt.Errorf("unknown export format %q", format)
		}
		if i > 0 {
			s = "\n" + s
		}
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}

func (e *Entry) authors() []string {
	if e.Record != nil && len(e.Record.Authors) > 0 {
		return e.Record.Authors
	}
	var out []string
	for _, a := range strings.Split(e.Row.Authors, ", ") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// formatAuthorsBibTeX turns "First Last" names into "Last, First and ...".
func formatAuthorsBibTeX(authors []string) string {
	formatted := make([]string, 0, len(authors))
	for _, a := range authors {
		words := strings.Fields(a)
		if len(words) < 2 {
			formatted = append(formatted, a)
			continue
		}
		last := words[len(words)-1]
		first := strings.Join(words[:len(words)-1], " ")
		formatted = append(formatted, last+", "+first)
	}
	return strings.Join(formatted, " and ")
}

func keyWord(w string, n int) string {
	w = strings.ToLower(strings.Trim(w, ".,!?;:'\"{}$"))
	var b strings.Builder
	for _, r := range w {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	w = b.String()
	if n > 0 && len(w) > n {
		w = w[:n]
	}
	return w
}

// escapeTeX escapes LaTeX special characters in plain text.
var escapeTeX = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"{", `\{`,
	"}", `\}`,
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"^", `\textasciicircum{}`,
	"_", `\_`,
	"~", `\textasciitilde{}`,
).Replace
