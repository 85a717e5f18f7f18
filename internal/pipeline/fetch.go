package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"

	"github.com/dgallion1/wikiqa/internal/chunker"
	"github.com/dgallion1/wikiqa/internal/dataset"
	"github.com/dgallion1/wikiqa/internal/doctree"
	"github.com/dgallion1/wikiqa/internal/parser"
)

// SourceWikipedia is the only remote document source.
const SourceWikipedia = "wikipedia"

var (
	ErrUnsupportedSource = errors.New("unsupported source")
	ErrInvalidLanguage   = errors.New("invalid language code")
	ErrInvalidRequest    = errors.New("invalid fetch request")
)

// TreeFetcher retrieves section trees for a title in several languages.
type TreeFetcher interface {
	Fetch(ctx context.Context, title string, langs []string) ([]*doctree.SectionTree, error)
}

// FetchRequest names a document to fetch and how to chunk it.
type FetchRequest struct {
	Source       string   `json:"source"`
	Title        string   `json:"title"`
	Languages    []string `json:"languages"`
	MaxChunkSize int      `json:"max_chunk_size"`
}

// Fetcher turns fetched or uploaded documents into articles.
type Fetcher struct {
	wiki         TreeFetcher
	maxChunkSize int
	pdfFallback  bool
}

func NewFetcher(wiki TreeFetcher, defaultMaxChunkSize int, pdfFallback bool) *Fetcher {
	return &Fetcher{wiki: wiki, maxChunkSize: defaultMaxChunkSize, pdfFallback: pdfFallback}
}

// FetchArticles fetches req.Title in every requested language and decomposes
// each result. Either every resolved language yields an article or the call
// fails; a not-found title propagates the fetcher's error.
func (f *Fetcher) FetchArticles(ctx context.Context, req FetchRequest) ([]dataset.Article, error) {
	source := strings.ToLower(strings.TrimSpace(req.Source))
	if source == "" {
		source = SourceWikipedia
	}
	if source != SourceWikipedia {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, req.Source)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	maxSize, err := f.chunkSize(req.MaxChunkSize)
	if err != nil {
		return nil, err
	}
	langs, err := NormalizeLanguages(req.Languages)
	if err != nil {
		return nil, err
	}

	trees, err := f.wiki.Fetch(ctx, title, langs)
	if err != nil {
		return nil, err
	}

	articles := make([]dataset.Article, 0, len(trees))
	for _, tree := range trees {
		a, err := ArticleFromTree(tree, maxSize)
		if err != nil {
			return nil, fmt.Errorf("decompose %s (%s): %w", tree.Title, tree.Language, err)
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// ParseUpload parses an uploaded file into an article. An empty title keeps
// the one the parser found; an empty language falls back to the one the
// document declares, then to "en".
func (f *Fetcher) ParseUpload(r io.Reader, filename, title, lang string, maxChunkSize int) (dataset.Article, error) {
	maxSize, err := f.chunkSize(maxChunkSize)
	if err != nil {
		return dataset.Article{}, err
	}
	p, err := parser.ForFile(filename)
	if err != nil {
		return dataset.Article{}, fmt.Errorf("%w: %w", ErrUnsupportedSource, err)
	}
	if pp, ok := p.(*parser.PDFParser); ok {
		pp.FallbackPdftotext = f.pdfFallback
	}
	if strings.TrimSpace(lang) != "" {
		if _, err := NormalizeLanguages([]string{lang}); err != nil {
			return dataset.Article{}, err
		}
	}

	tree, err := p.Parse(r, filename)
	if err != nil {
		return dataset.Article{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	if t := strings.TrimSpace(title); t != "" {
		tree.Title = t
	}
	if strings.TrimSpace(lang) == "" {
		lang = tree.Language
	}
	langs, err := NormalizeLanguages([]string{lang})
	if err != nil {
		// A document that declares a malformed language is treated as English.
		langs = []string{"en"}
	}
	tree.Language = langs[0]
	tree.Source = "upload:" + filename
	return ArticleFromTree(tree, maxSize)
}

// chunkSize resolves a requested chunk size: 0 selects the default and a
// negative size is rejected.
func (f *Fetcher) chunkSize(requested int) (int, error) {
	switch {
	case requested < 0:
		return 0, fmt.Errorf("%w: got %d", chunker.ErrInvalidMaxSize, requested)
	case requested == 0:
		return f.maxChunkSize, nil
	}
	return requested, nil
}

// ArticleFromTree decomposes a complete section tree into an article.
func ArticleFromTree(tree *doctree.SectionTree, maxChunkSize int) (dataset.Article, error) {
	chunks, err := chunker.Decompose(tree, maxChunkSize)
	if err != nil {
		return dataset.Article{}, err
	}
	if chunks == nil {
		chunks = []doctree.Chunk{}
	}
	return dataset.Article{
		Title:    tree.Title,
		Source:   tree.Source,
		Language: tree.Language,
		Summary:  chunker.Normalize(tree.Summary),
		Chunks:   chunks,
	}, nil
}

// NormalizeLanguages canonicalizes language codes to their base subtag and
// drops duplicates, keeping order. No codes means English.
func NormalizeLanguages(langs []string) ([]string, error) {
	out := make([]string, 0, len(langs))
	seen := make(map[string]bool, len(langs))
	for _, l := range langs {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		tag, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLanguage, l)
		}
		base, _ := tag.Base()
		code := base.String()
		if code == "und" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLanguage, l)
		}
		if !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	if len(out) == 0 {
		out = append(out, "en")
	}
	return out, nil
}
