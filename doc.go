// Package arxivhunter keeps a personal table of arXiv preprints.
//
// Records are fetched from their abstract pages and stored as rows in one
// flat file per subject category:
//
//	<root>/
//	├── data/
//	│   └── High_Energy_Physics_-_Theory_hep-th/
//	│       └── High_Energy_Physics_-_Theory_hep-th.txt
//	├── arxivhunter.tex   # regenerated from every store
//	├── arxivhunter.pdf   # compiled document
//	├── index.db          # sqlite cache of fetched metadata
//	└── pdf/              # downloaded preprints
//
// A row is a LaTeX table row with six fields, the identifier first:
//
//	1234.5678 & Title & First Last, Other Author & comment & \href{...}{arxiv} & \href{...}{pdf} \\
//
// A literal '&' inside a field is written `\&`.
//
// Basic usage:
//
//	cfg, err := arxivhunter.LoadConfig("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	h, err := arxivhunter.New(cfg, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer h.Close()
//
//	if _, err := h.Add(ctx, "1234.5678", "interesting"); err != nil {
//		log.Fatal(err)
//	}
//	if _, err := h.Rebuild(); err != nil {
//		log.Fatal(err)
//	}
//	if err := h.Compile(ctx); err != nil {
//		log.Fatal(err)
//	}
package arxivhunter
