package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/wikiqa/internal/chunker"
	"github.com/dgallion1/wikiqa/internal/doctree"
	"github.com/dgallion1/wikiqa/internal/wiki"
)

type fakeTrees struct {
	trees     []*doctree.SectionTree
	err       error
	gotTitle  string
	gotLangs  []string
	callCount int
}

func (f *fakeTrees) Fetch(ctx context.Context, title string, langs []string) ([]*doctree.SectionTree, error) {
	f.callCount++
	f.gotTitle = title
	f.gotLangs = langs
	return f.trees, f.err
}

func primeTree(lang string) *doctree.SectionTree {
	return &doctree.SectionTree{
		Title:    "Prime number",
		Source:   "https://" + lang + ".wikipedia.org/wiki/Prime_number",
		Language: lang,
		Summary:  "A prime   number .",
		Sections: []*doctree.Section{
			{Heading: "Definition", Body: "Two divisors.", Children: []*doctree.Section{
				{Heading: "Examples", Body: "2, 3, 5."},
			}},
		},
	}
}

func TestFetchArticles(t *testing.T) {
	ft := &fakeTrees{trees: []*doctree.SectionTree{primeTree("en"), primeTree("fr")}}
	f := NewFetcher(ft, 2000, false)

	articles, err := f.FetchArticles(context.Background(), FetchRequest{
		Source:    "Wikipedia",
		Title:     "  Prime number ",
		Languages: []string{"en-US", "fr", "en"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ft.gotTitle != "Prime number" {
		t.Errorf("expected trimmed title, got %q", ft.gotTitle)
	}
	if !reflect.DeepEqual(ft.gotLangs, []string{"en", "fr"}) {
		t.Errorf("expected canonical languages [en fr], got %v", ft.gotLangs)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	a := articles[0]
	if a.Summary != "A prime number." {
		t.Errorf("expected normalized summary, got %q", a.Summary)
	}
	if len(a.Chunks) != 2 || a.Chunks[0].Level != 1 || a.Chunks[1].Level != 2 {
		t.Errorf("unexpected chunks %+v", a.Chunks)
	}
	if articles[1].Language != "fr" {
		t.Errorf("expected french article second, got %q", articles[1].Language)
	}
}

func TestFetchArticles_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     FetchRequest
		fetcher *fakeTrees
		want    error
	}{
		{"unsupported source", FetchRequest{Source: "britannica", Title: "x"}, &fakeTrees{}, ErrUnsupportedSource},
		{"missing title", FetchRequest{Source: "wikipedia", Title: "  "}, &fakeTrees{}, ErrInvalidRequest},
		{"bad language", FetchRequest{Title: "x", Languages: []string{"not a language"}}, &fakeTrees{}, ErrInvalidLanguage},
		{"not found", FetchRequest{Title: "x"}, &fakeTrees{err: wiki.ErrNotFound}, wiki.ErrNotFound},
		{"too deep", FetchRequest{Title: "x"}, &fakeTrees{trees: []*doctree.SectionTree{deepTree(chunker.MaxDepth + 1)}}, chunker.ErrTreeTooDeep},
		{"negative chunk size", FetchRequest{Title: "x", MaxChunkSize: -5}, &fakeTrees{trees: []*doctree.SectionTree{primeTree("en")}}, chunker.ErrInvalidMaxSize},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFetcher(tc.fetcher, 2000, false)
			articles, err := f.FetchArticles(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if articles != nil {
				t.Errorf("expected no articles on failure, got %d", len(articles))
			}
		})
	}
}

func deepTree(depth int) *doctree.SectionTree {
	root := &doctree.Section{Heading: "L1", Body: "x"}
	cur := root
	for i := 2; i <= depth; i++ {
		child := &doctree.Section{Heading: "L", Body: "x"}
		cur.Children = []*doctree.Section{child}
		cur = child
	}
	return &doctree.SectionTree{Title: "Deep", Sections: []*doctree.Section{root}}
}

func TestFetchArticles_ChunkSizeOverride(t *testing.T) {
	long := strings.Repeat("Sentence here. ", 20)
	ft := &fakeTrees{trees: []*doctree.SectionTree{{
		Title:    "T",
		Sections: []*doctree.Section{{Heading: "H", Body: long}},
	}}}
	f := NewFetcher(ft, 2000, false)

	articles, err := f.FetchArticles(context.Background(), FetchRequest{Title: "T", MaxChunkSize: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(articles[0].Chunks) < 2 {
		t.Errorf("expected the body to be split, got %d chunks", len(articles[0].Chunks))
	}
}

func TestParseUpload(t *testing.T) {
	f := NewFetcher(&fakeTrees{}, 2000, false)
	md := "Primes are neat.\n\n# Definition\n\nTwo divisors.\n"
	a, err := f.ParseUpload(strings.NewReader(md), "primes.md", "Primes", "de", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Title != "Primes" || a.Language != "de" || a.Source != "upload:primes.md" {
		t.Errorf("unexpected metadata %+v", a)
	}
	if a.Summary != "Primes are neat." {
		t.Errorf("unexpected summary %q", a.Summary)
	}
	if len(a.Chunks) != 1 || a.Chunks[0].Heading != "Definition" {
		t.Errorf("unexpected chunks %+v", a.Chunks)
	}

	if _, err := f.ParseUpload(strings.NewReader("x"), "a.exe", "", "", 0); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("expected ErrUnsupportedSource, got %v", err)
	}
	if _, err := f.ParseUpload(strings.NewReader(md), "primes.md", "", "", -1); !errors.Is(err, chunker.ErrInvalidMaxSize) {
		t.Errorf("expected ErrInvalidMaxSize, got %v", err)
	}
}

func TestFetchArticles_NegativeChunkSizeSkipsFetch(t *testing.T) {
	ft := &fakeTrees{trees: []*doctree.SectionTree{primeTree("en")}}
	f := NewFetcher(ft, 2000, false)
	if _, err := f.FetchArticles(context.Background(), FetchRequest{Title: "x", MaxChunkSize: -5}); !errors.Is(err, chunker.ErrInvalidMaxSize) {
		t.Fatalf("expected ErrInvalidMaxSize, got %v", err)
	}
	if ft.callCount != 0 {
		t.Errorf("expected no wiki call for an invalid size, got %d", ft.callCount)
	}
}

func TestNormalizeLanguages(t *testing.T) {
	got, err := NormalizeLanguages(nil)
	if err != nil || !reflect.DeepEqual(got, []string{"en"}) {
		t.Errorf("expected default [en], got %v (%v)", got, err)
	}
	got, err = NormalizeLanguages([]string{"DE", "pt-BR", "de", " "})
	if err != nil || !reflect.DeepEqual(got, []string{"de", "pt"}) {
		t.Errorf("expected [de pt], got %v (%v)", got, err)
	}
	if _, err := NormalizeLanguages([]string{"en_US!"}); !errors.Is(err, ErrInvalidLanguage) {
		t.Errorf("expected ErrInvalidLanguage, got %v", err)
	}
}
