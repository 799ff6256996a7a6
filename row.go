package arxivhunter

import (
	"fmt"
	"strings"
)

const (
	// fieldDelim separates row fields. Every '&' inside a field is written
	// as `\&`, so the delimiter never occurs inside a field.
	fieldDelim = " & "

	// rowTerm ends every row.
	rowTerm = ` \\`

	rowFields = 6
)

// Row is one serialized record in a category store. Fields hold plain text;
// escaping happens in Encode and DecodeRow.
type Row struct {
	ID      string
	Title   string
	Authors string
	Comment string
	Link    string
	PDFLink string
}

// Encode returns the row as a line without the trailing newline:
//
//	ID & Title & Authors & Comment & \href{Link}{arxiv} & \href{PDFLink}{pdf} \\
//
// The line is a valid LaTeX table row.
func (r Row) Encode() string {
	fields := []string{
		escapeField(r.ID),
		escapeField(r.Title),
		escapeField(r.Authors),
		escapeField(r.Comment),
		`\href{` + r.Link + `}{arxiv}`,
		`\href{` + r.PDFLink + `}{pdf}`,
	}
	return strings.Join(fields, fieldDelim) + rowTerm
}

// DecodeRow parses a line produced by Encode. Rows written before the
// escaping rule existed may carry an unescaped delimiter inside the title;
// surplus fields are folded back into the title.
func DecodeRow(line string) (Row, error) {
	s := strings.TrimRight(line, "\r\n")
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, `\\`) {
		return Row{}, fmt.Errorf("%w: row has no terminator: %q", ErrParse, line)
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, `\\`))

	parts := strings.Split(s, fieldDelim)
	if len(parts) < rowFields {
		return Row{}, fmt.Errorf("%w: row has %d fields, want %d: %q", ErrParse, len(parts), rowFields, line)
	}
	if len(parts) > rowFields {
		extra := len(parts) - rowFields
		title := strings.Join(parts[1:2+extra], fieldDelim)
		parts = append([]string{parts[0], title}, parts[2+extra:]...)
	}

	link, err := hrefTarget(parts[4])
	if err != nil {
		return Row{}, err
	}
	pdf, err := hrefTarget(parts[5])
	if err != nil {
		return Row{}, err
	}

	r := Row{
		ID:      unescapeField(strings.TrimSpace(parts[0])),
		Title:   unescapeField(parts[1]),
		Authors: unescapeField(parts[2]),
		Comment: unescapeField(parts[3]),
		Link:    link,
		PDFLink: pdf,
	}
	if r.ID == "" {
		return Row{}, fmt.Errorf("%w: row has an empty identifier: %q", ErrParse, line)
	}
	return r, nil
}

// rowID returns the first field of a raw row without decoding the rest.
func rowID(line string) string {
	id, _, _ := strings.Cut(line, fieldDelim)
	return strings.TrimSpace(id)
}

func hrefTarget(field string) (string, error) {
	f := strings.TrimSpace(field)
	if !strings.HasPrefix(f, `\href{`) {
		return "", fmt.Errorf("%w: expected \\href field, got %q", ErrParse, field)
	}
	f = strings.TrimPrefix(f, `\href{`)
	target, _, ok := strings.Cut(f, "}{")
	if !ok {
		return "", fmt.Errorf("%w: unterminated \\href field %q", ErrParse, field)
	}
	return target, nil
}

// escapeField prefixes every '&' with a backslash, including one that is
// already preceded by a backslash, so unescapeField restores the field
// exactly: `R\&D` is written `R\\&D`.
func escapeField(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "&", `\&`)
}

// unescapeField drops the backslash directly before each '&'.
func unescapeField(s string) string {
	return strings.ReplaceAll(s, `\&`, "&")
}
