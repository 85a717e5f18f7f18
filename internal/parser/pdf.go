package parser

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/wikiqa/internal/doctree"
)

// PDFParser extracts page text with ledongthuc/pdf. PDFs carry no reliable
// heading structure, so each non-empty page becomes one top-level section.
type PDFParser struct {
	// FallbackPdftotext retries with the poppler pdftotext binary when the
	// Go reader cannot decode the file.
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*doctree.SectionTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	pages, err := pdfPages(data)
	if err != nil && p.FallbackPdftotext {
		pages, err = pdftotextPages(data)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	tree := &doctree.SectionTree{Title: titleFromFilename(filename)}
	for i, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		tree.Sections = append(tree.Sections, &doctree.Section{
			Heading: fmt.Sprintf("Page %d", i+1),
			Body:    page,
		})
	}
	if len(tree.Sections) > 0 {
		lead, _, _ := strings.Cut(tree.Sections[0].Body, "\n\n")
		tree.Summary = strings.TrimSpace(lead)
	}
	return tree, nil
}

// pdfPages returns the plain text of every page, in order. Pages that fail
// to decode come back empty so page numbers stay aligned.
func pdfPages(data []byte) ([]string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	n := reader.NumPage()
	pages := make([]string, n)
	fonts := make(map[string]*pdflib.Font)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		pages[i-1] = text
	}
	return pages, nil
}

// pdftotextPages pipes the document through pdftotext, which separates
// pages with form feeds.
func pdftotextPages(data []byte) ([]string, error) {
	cmd := exec.Command("pdftotext", "-layout", "-enc", "UTF-8", "-", "-")
	cmd.Stdin = bytes.NewReader(data)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return strings.Split(strings.TrimSuffix(string(out), "\f"), "\f"), nil
}
