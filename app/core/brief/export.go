package brief

import (
	"fmt"
	"strings"

	"github.com/gingfrederik/docx"
)

// ExportDocx writes the brief as a Word document next to the Markdown
// report, one heading or bullet per paragraph.
func ExportDocx(b Brief, path string) error {
	f := docx.NewFile()

	for _, line := range strings.Split(b.Markdown, "\n") {
		switch {
		case strings.HasPrefix(line, "# "):
			p := f.AddParagraph()
			run := p.AddText(strings.TrimPrefix(line, "# "))
			run.Size(20)
		case strings.HasPrefix(line, "## "):
			p := f.AddParagraph()
			run := p.AddText(strings.TrimPrefix(line, "## "))
			run.Size(16)
		case line == "":
			f.AddParagraph()
		default:
			f.AddParagraph().AddText(stripMarkdown(line))
		}
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("save docx: %w", err)
	}
	return nil
}

func stripMarkdown(line string) string {
	return strings.ReplaceAll(line, "**", "")
}
