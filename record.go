package arxivhunter

import (
	"strings"
	"time"
)

// DefaultBaseURL is the arXiv site used to build record links.
const DefaultBaseURL = "https://arxiv.org"

// Record is a preprint's metadata as parsed from its abstract page.
type Record struct {
	// ID is the arXiv identifier (e.g., "2301.00001" or "hep-th/9901001")
	ID string

	// Title of the paper
	Title string

	// Authors in submission order, each as "First Last"
	Authors []string

	// Category is the primary subject label, e.g.
	// "High Energy Physics - Theory (hep-th)"
	Category string

	// Abstract of the paper. Only kept in the metadata index.
	Abstract string

	// Date is the citation date. Only kept in the metadata index.
	Date time.Time

	// Link is the abstract page URL
	Link string

	// PDFLink is the PDF download URL
	PDFLink string
}

// AbstractURL returns the abstract page URL for id under base.
func AbstractURL(base, id string) string {
	return strings.TrimRight(base, "/") + "/abs/" + id
}

// PDFURL returns the PDF download URL for id under base.
func PDFURL(base, id string) string {
	return strings.TrimRight(base, "/") + "/pdf/" + id + ".pdf"
}

// AuthorList joins the authors the way rows store them.
func (r *Record) AuthorList() string {
	return strings.Join(r.Authors, ", ")
}

// StoreName returns the name of the category store the record belongs to.
func (r *Record) StoreName() string {
	return StoreName(r.Category)
}

// Row returns the store row for the record with the given comment.
func (r *Record) Row(comment string) Row {
	return Row{
		ID:      r.ID,
		Title:   r.Title,
		Authors: r.AuthorList(),
		Comment: comment,
		Link:    r.Link,
		PDFLink: r.PDFLink,
	}
}

// StoreName converts a category label into a store name: spaces become
// underscores and parentheses are dropped.
//
//	"High Energy Physics - Theory (hep-th)" -> "High_Energy_Physics_-_Theory_hep-th"
func StoreName(category string) string {
	name := strings.TrimSpace(category)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "(", "")
	name = strings.ReplaceAll(name, ")", "")
	name = strings.ReplaceAll(name, "/", "_")
	return name
}

// Caption returns the section caption for a store name.
func Caption(store string) string {
	return strings.ReplaceAll(store, "_", " ")
}

// ArchiveCode extracts the short code from a category label,
// "High Energy Physics - Theory (hep-th)" -> "hep-th". It returns the label
// unchanged when there is no parenthesised code.
func ArchiveCode(category string) string {
	start := strings.LastIndex(category, "(")
	end := strings.LastIndex(category, ")")
	if start < 0 || end < start {
		return category
	}
	return strings.TrimSpace(category[start+1 : end])
}
