package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mandolyte/mdtopdf"
)

// renderPDF converts rendered markdown into PDF bytes. mdtopdf only writes
// to a file, so the render goes through a temporary path.
func renderPDF(markdown string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "klip-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("os.MkdirTemp > %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	pdfPath := filepath.Join(dir, "export.pdf")
	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process([]byte(markdown)); err != nil {
		return nil, fmt.Errorf("renderer.Process() > %w", err)
	}

	contents, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile(%s) > %w", pdfPath, err)
	}
	return contents, nil
}
