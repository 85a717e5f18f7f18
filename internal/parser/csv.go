package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/wikiqa/internal/doctree"
)

// csvRowsPerSection bounds how many records share one section so that a
// section body stays close to a single chunk.
const csvRowsPerSection = 20

// CSVParser turns a table into sections of "column: value" records. The
// first row names the columns.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.SectionTree, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	tree := &doctree.SectionTree{Title: titleFromFilename(filename)}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return tree, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	tree.Summary = "Columns: " + strings.Join(header, ", ")

	var (
		body        strings.Builder
		first, last int // physical lines spanned by the records in body
	)
	flush := func() {
		if body.Len() == 0 {
			return
		}
		tree.Sections = append(tree.Sections, &doctree.Section{
			Heading: fmt.Sprintf("Rows %d-%d", first, last),
			Body:    strings.TrimSpace(body.String()),
		})
		body.Reset()
	}

	rows := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		text := csvRecord(header, rec)
		if text == "" {
			continue
		}
		// Quoted cells may span lines, so positions come from the reader.
		if rows%csvRowsPerSection == 0 {
			first, _ = cr.FieldPos(0)
		}
		last, _ = cr.FieldPos(len(rec) - 1)
		last += strings.Count(rec[len(rec)-1], "\n")
		body.WriteString(text)
		body.WriteByte('\n')
		rows++
		if rows%csvRowsPerSection == 0 {
			flush()
		}
	}
	flush()
	return tree, nil
}

// csvRecord renders one record, skipping blank cells. Cells beyond the
// header are kept without a label.
func csvRecord(header, rec []string) string {
	parts := make([]string, 0, len(rec))
	for i, cell := range rec {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if i < len(header) && header[i] != "" {
			parts = append(parts, header[i]+": "+cell)
		} else {
			parts = append(parts, cell)
		}
	}
	return strings.Join(parts, "; ")
}
