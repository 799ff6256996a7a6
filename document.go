package arxivhunter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/template"

	"go.uber.org/zap"
)

// The document template uses [[ ]] delimiters so LaTeX braces pass through.
var documentTemplate = template.Must(template.New("document").Delims("[[", "]]").Parse(
	`\documentclass{article}
\usepackage[paperheight=8.5in,paperwidth=13.0in,margin=0.1in,headheight=0.0in,footskip=0.5in,includehead,includefoot]{geometry}
\usepackage{hyperref}
\usepackage{amsmath}
\usepackage{physics}
\usepackage{array}
\usepackage{longtable}
\title{Arxiv table}
\author{[[.Author]]}
\date{\today}
\begin{document}
\maketitle
[[range .Sections -]]
\section{[[.Caption]]}
\begin{longtable}{|m{2cm}|m{9cm}|m{7cm}|m{10cm}|m{1cm}|m{1cm}|}
\hline \hline
Index & Title & Authors & Comment & Arxiv & PDF \\
[[range .Rows -]]
\hline
[[.Encode]]
[[end -]]
\hline \hline
\end{longtable}
[[end -]]
\end{document}
`))

// Section is one category's table in the aggregate document.
type Section struct {
	Store   string
	Caption string
	Rows    []Row
}

// Document regenerates the aggregate LaTeX document from every store.
type Document struct {
	store  *Store
	path   string
	author string
	log    *zap.Logger
}

// NewDocument returns a Document writing to cfg.TeXPath().
func NewDocument(cfg *Config, store *Store, log *zap.Logger) *Document {
	if log == nil {
		log = zap.NewNop()
	}
	return &Document{
		store:  store,
		path:   cfg.TeXPath(),
		author: cfg.Author,
		log:    log,
	}
}

// Path returns the document location.
func (d *Document) Path() string {
	return d.path
}

// Sections collects the non-empty stores in name order. Stores that are
// empty or have no backing file are deleted.
func (d *Document) Sections() ([]Section, error) {
	stores, err := d.store.Categories()
	if err != nil {
		return nil, err
	}

	var sections []Section
	for _, name := range stores {
		var rows []Row
		if d.store.Exists(name) {
			rows, err = d.store.Rows(name)
			if err != nil {
				return nil, err
			}
		}
		if len(rows) == 0 {
			d.log.Info("deleting empty store", zap.String("store", name))
			if err := d.store.Drop(name); err != nil {
				return nil, err
			}
			continue
		}
		sections = append(sections, Section{
			Store:   name,
			Caption: Caption(name),
			Rows:    rows,
		})
	}
	return sections, nil
}

// Render writes the document for sections to w.
func (d *Document) Render(w io.Writer, sections []Section) error {
	return documentTemplate.Execute(w, struct {
		Author   string
		Sections []Section
	}{
		Author:   escapeTeX(d.author),
		Sections: sections,
	})
}

// Rebuild regenerates the whole document from the stores and returns the
// sections it contains.
func (d *Document) Rebuild() ([]Section, error) {
	sections, err := d.Sections()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := d.Render(&buf, sections); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	if err := os.MkdirAll(d.store.Dir(), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := writeFileAtomic(d.path, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	d.log.Debug("document rebuilt", zap.String("path", d.path), zap.Int("sections", len(sections)))
	return sections, nil
}
