package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"meetscribe/internal/domain"
)

const (
	docxFont     = "Calibri"
	docxBodySize = 11
)

// WriteDocx writes the summary as a Word document using the same section
// order as Markdown.
func WriteDocx(result domain.SummaryResult, path string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	addRun(doc.AddParagraph(""), Heading(result.Title), true, 18)

	addRun(doc.AddParagraph(""), "Summary", true, 14)
	addRun(doc.AddParagraph(""), strings.TrimSpace(result.ShortSummary), false, docxBodySize)

	addRun(doc.AddParagraph(""), "Detailed Summary", true, 14)
	for _, point := range result.DetailedSummary {
		addRun(doc.AddParagraph(""), "• "+strings.TrimSpace(point), false, docxBodySize)
	}

	addRun(doc.AddParagraph(""), "Discussion Breakdown", true, 14)
	for _, speaker := range result.DiscussionBreakdown {
		addRun(doc.AddParagraph(""), strings.TrimSpace(speaker.Speaker), true, 12)
		for _, point := range speaker.Points {
			addRun(doc.AddParagraph(""), "• "+strings.TrimSpace(point), false, docxBodySize)
		}
	}

	addRun(doc.AddParagraph(""), "Action Items", true, 14)
	for _, item := range result.ActionItems {
		addRun(doc.AddParagraph(""), "☐ "+ActionItemLine(item), false, docxBodySize)
	}

	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// DocxBytes renders the Word document in memory for HTTP downloads.
func DocxBytes(result domain.SummaryResult) ([]byte, error) {
	dir, err := os.MkdirTemp("", "meetscribe-docx-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "summary.docx")
	if err := WriteDocx(result, path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(docxFont).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
