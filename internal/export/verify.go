package export

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

// VerifyPDF checks that data is a readable PDF with at least one page.
func VerifyPDF(data []byte) (pages int, err error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return 0, fmt.Errorf("missing PDF header")
	}

	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("unreadable PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("unreadable PDF: %w", err)
	}
	pages = reader.NumPage()
	if pages < 1 {
		return 0, fmt.Errorf("PDF has no pages")
	}
	return pages, nil
}
