/*
arxivhunter keeps a personal table of arXiv preprints, grouped by subject
category, and typesets it into a single PDF.

# Usage

	arxivhunter [command] [flags]

# Commands

	add        Add a preprint to the table
	edit       Replace a preprint's comment
	remove     Remove preprints from the table (alias: rm)
	comment    Print the comment stored for a preprint
	rebuild    Regenerate the LaTeX document
	compile    Compile the LaTeX document
	view       Open the compiled document (default)
	refresh    Fetch every stored preprint again
	show       Show a preprint's metadata
	search     Search titles and abstracts of fetched preprints
	stats      Show table statistics
	export     Export the table as BibTeX or RIS
	latest     List the newest submissions of an arXiv archive
	download   Download preprint PDFs
	version    Print the version

# Configuration

Settings are read from $XDG_CONFIG_HOME/arxivhunter/config.yaml:

	root: /home/me/arxivhunter
	viewer: firefox
	latex: pdflatex
	document: arxivhunter
	author: Me

# Environment

	ARXIVHUNTER_ROOT    Storage root (default: $XDG_DATA_HOME/arxivhunter)

# Adding preprints

	arxivhunter add 2301.00001 -c "read section 3"
	arxivhunter add arXiv:2301.00001v2
	arxivhunter add https://arxiv.org/abs/hep-th/9901001

Adding a preprint that is already in the table asks whether to replace its
comment; -y replaces it without asking. add, edit, remove and refresh
rebuild and compile the document afterwards; pass --no-compile to skip the
LaTeX run.

# Storage

	$ARXIVHUNTER_ROOT/
	├── data/<category>/<category>.txt   # one row per preprint
	├── arxivhunter.tex                  # regenerated document
	├── arxivhunter.pdf                  # compiled document
	├── index.db                         # fetched metadata, full-text index
	└── pdf/<prefix>/<id>.pdf            # downloaded preprints
*/
package main
