package arxivhunter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreName(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"High Energy Physics - Theory (hep-th)", "High_Energy_Physics_-_Theory_hep-th"},
		{"Machine Learning (cs.LG)", "Machine_Learning_cs.LG"},
		{"  Quantum Physics (quant-ph) ", "Quantum_Physics_quant-ph"},
		{"Data Analysis, Statistics and Probability (physics.data-an)", "Data_Analysis,_Statistics_and_Probability_physics.data-an"},
		{"Input/Output", "Input_Output"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StoreName(tt.category), tt.category)
	}
}

func TestCaption(t *testing.T) {
	assert.Equal(t, "High Energy Physics - Theory hep-th", Caption("High_Energy_Physics_-_Theory_hep-th"))
	assert.Equal(t, "Quantum Physics quant-ph", Caption(StoreName("Quantum Physics (quant-ph)")))
}

func TestArchiveCode(t *testing.T) {
	assert.Equal(t, "hep-th", ArchiveCode("High Energy Physics - Theory (hep-th)"))
	assert.Equal(t, "cs.LG", ArchiveCode("Machine Learning (cs.LG)"))
	assert.Equal(t, "Unlabelled", ArchiveCode("Unlabelled"))
	assert.Equal(t, "odd) label (", ArchiveCode("odd) label ("))
}

func TestRecordLinks(t *testing.T) {
	assert.Equal(t, "https://arxiv.org/abs/1234.5678", AbstractURL(DefaultBaseURL, "1234.5678"))
	assert.Equal(t, "https://arxiv.org/pdf/1234.5678.pdf", PDFURL(DefaultBaseURL+"/", "1234.5678"))
	assert.Equal(t, "http://mirror.test/abs/hep-th/9901001", AbstractURL("http://mirror.test", "hep-th/9901001"))
}

func TestRecordRow(t *testing.T) {
	rec := &Record{
		ID:       "1234.5678",
		Title:    "A Title",
		Authors:  []string{"Jane Doe", "John Smith"},
		Category: "Quantum Physics (quant-ph)",
		Link:     AbstractURL(DefaultBaseURL, "1234.5678"),
		PDFLink:  PDFURL(DefaultBaseURL, "1234.5678"),
	}
	assert.Equal(t, "Quantum_Physics_quant-ph", rec.StoreName())
	assert.Equal(t, Row{
		ID:      "1234.5678",
		Title:   "A Title",
		Authors: "Jane Doe, John Smith",
		Comment: "good",
		Link:    "https://arxiv.org/abs/1234.5678",
		PDFLink: "https://arxiv.org/pdf/1234.5678.pdf",
	}, rec.Row("good"))
}
