package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// File name prefixes for exported datasets.
const (
	ArticlesPrefix = "wiki_articles_"
	QAPrefix       = "wiki_qa_"
)

// EncodeJSON writes v as 2-space indented JSON. Non-ASCII text and HTML
// characters are written as-is.
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteJSONFile writes v to a new uniquely named file in dir (the system temp
// dir when empty) and returns its path.
func WriteJSONFile(dir, prefix string, v any) (string, error) {
	f, err := os.CreateTemp(dir, prefix+"*.json")
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := EncodeJSON(f, v); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("encode export: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close export file: %w", err)
	}
	return f.Name(), nil
}
