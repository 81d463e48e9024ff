package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func TestConvertMarkdownToPDF(t *testing.T) {
	logger := arbor.NewLogger()
	service := NewService(logger)

	tests := []struct {
		name     string
		markdown string
		title    string
		wantErr  bool
	}{
		{
			name:     "Report Heading And List",
			markdown: "# Job Search Report\n\nRun finished with status success.\n\n- 12 companies\n- 84 jobs",
			title:    "Job Search Report run_abc",
			wantErr:  false,
		},
		{
			name:     "Empty Markdown",
			markdown: "",
			title:    "Empty Report",
			wantErr:  false,
		},
		{
			name: "Match Table With Code Span",
			markdown: `# Top Matches

| Rank | Score | Company |
|------|-------|---------|
| 1 | 92 | Acme |
| 2 | 75 | Initech |

Run ` + "`run_abc`" + ` details follow.`,
			title:   "Top Matches",
			wantErr: false,
		},
		{
			name:     "Bold And Italic Summary",
			markdown: "Status **partial**: *cost limit reached* before ***all companies*** were scraped.",
			title:    "Partial Run",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdfBytes, err := service.ConvertMarkdownToPDF(tt.markdown, tt.title)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, pdfBytes)
			assert.Equal(t, "%PDF", string(pdfBytes[:4]))
		})
	}
}

func TestConvertMarkdownToPDFWideTable(t *testing.T) {
	logger := arbor.NewLogger()
	service := NewService(logger)

	markdown := `
# Top Matches

| Rank | Score | Company | Title | Location | Salary | Recommendation |
| --- | --- | --- | --- | --- | --- | --- |
| 1 | 92 | Acme | Staff Engineer | Remote | $190,000 - $230,000 | strong_match |
| 2 | 75 | Initech | Senior Backend Engineer | Sydney | not stated | good_match |

End of matches.
`
	pdfBytes, err := service.ConvertMarkdownToPDF(markdown, "Top Matches")
	assert.NoError(t, err)
	assert.Greater(t, len(pdfBytes), 500)
	assert.Equal(t, "%PDF", string(pdfBytes[:4]))
}

func TestExtractTextFromBytesRejectsGarbage(t *testing.T) {
	extractor := NewExtractor(arbor.NewLogger())

	_, err := extractor.ExtractTextFromBytes(context.Background(), []byte("this is not a pdf"))
	assert.Error(t, err)
}

func TestExtractTextFromFileMissing(t *testing.T) {
	extractor := NewExtractor(arbor.NewLogger())

	_, err := extractor.ExtractTextFromFile(context.Background(), "/nonexistent/resume.pdf")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read PDF file")
}
