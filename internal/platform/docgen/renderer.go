// Package docgen renders an adapted CV document to disk using
// github.com/gomutex/godocx, the teacher's declared document-generation
// dependency. Per spec §4.4/Non-goals, the exact rendering format is not
// specified by the core: this is a black-box codec, only the resulting
// file path is load-bearing.
package docgen

import (
	"fmt"

	"github.com/gomutex/godocx"
)

// Section is one heading+body pair of the adapted CV document.
type Section struct {
	Heading string
	Body    []string
}

// Document is the minimal shape the renderer needs; modules/documents maps
// its richer AdaptedCV into this before calling Render.
type Document struct {
	Name     string
	Title    string
	Summary  string
	Sections []Section
}

// Renderer implements the PDFRenderer capability (spec §4.4).
type Renderer struct{}

func New() *Renderer { return &Renderer{} }

// Render assembles doc into a .docx file at outPath. Rendering to an actual
// PDF is out of scope for the core per spec Non-goals; the artifact
// filename convention (cv.pdf per application directory, spec §6) is
// preserved by the caller regardless of the container format godocx
// produces.
func (r *Renderer) Render(doc Document, outPath string) error {
	d, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("docgen: create document: %w", err)
	}

	d.AddHeading(doc.Name, 0)
	if doc.Title != "" {
		d.AddParagraph(doc.Title)
	}
	if doc.Summary != "" {
		d.AddHeading("Summary", 1)
		d.AddParagraph(doc.Summary)
	}
	for _, sec := range doc.Sections {
		d.AddHeading(sec.Heading, 1)
		for _, line := range sec.Body {
			d.AddParagraph(line)
		}
	}

	if err := d.SaveTo(outPath); err != nil {
		return fmt.Errorf("docgen: save %s: %w", outPath, err)
	}
	return nil
}
