package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const primeWikitext = `A '''prime number''' is a [[natural number]] greater than 1.<ref>Hardy</ref>

== Definition ==
A prime has exactly two divisors.

=== Examples ===
2, 3 and 5 are prime.

== References ==
{{reflist}}
`

const primeFrWikitext = `Un '''nombre premier''' est un entier naturel.

== Définition ==
Un nombre premier a exactement deux diviseurs.
`

// fakeWiki serves a tiny MediaWiki API: English "Prime number" linked to
// French "Nombre premier".
func fakeWiki(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		q := r.URL.Query()
		if q.Get("action") != "query" || q.Get("formatversion") != "2" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		lang := strings.TrimPrefix(r.URL.Path, "/")
		title := q.Get("titles")

		page := map[string]any{"title": title}
		switch {
		case lang == "en" && title == "Prime number":
			page["pageid"] = 1
			page["fullurl"] = "https://en.wikipedia.org/wiki/Prime_number"
			page["langlinks"] = []map[string]string{{"lang": "fr", "title": "Nombre premier"}}
			if strings.Contains(q.Get("prop"), "revisions") {
				page["revisions"] = revisions(primeWikitext)
			}
		case lang == "fr" && title == "Nombre premier":
			page["pageid"] = 2
			page["fullurl"] = "https://fr.wikipedia.org/wiki/Nombre_premier"
			page["revisions"] = revisions(primeFrWikitext)
		default:
			page["missing"] = true
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"query": map[string]any{"pages": []any{page}},
		})
	}))
}

func revisions(content string) []any {
	return []any{map[string]any{
		"slots": map[string]any{"main": map[string]any{"content": content}},
	}}
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(
		WithEndpoint(func(lang string) string { return srv.URL + "/" + lang }),
		WithTimeout(5*time.Second),
		WithCache(16, time.Minute),
	)
}

func TestFetch_EnglishAndTranslation(t *testing.T) {
	var calls int32
	srv := fakeWiki(t, &calls)
	defer srv.Close()
	c := newTestClient(srv)

	trees, err := c.Fetch(context.Background(), "Prime number", []string{"en", "fr"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trees) != 2 {
		t.Fatalf("expected 2 trees, got %d", len(trees))
	}

	en := trees[0]
	if en.Title != "Prime number" || en.Language != "en" || en.Source != "https://en.wikipedia.org/wiki/Prime_number" {
		t.Errorf("unexpected english tree metadata: %+v", en)
	}
	if en.Summary != "A prime number is a natural number greater than 1." {
		t.Errorf("unexpected summary %q", en.Summary)
	}
	if len(en.Sections) != 1 || en.Sections[0].Heading != "Definition" {
		t.Fatalf("expected only the Definition section, got %+v", en.Sections)
	}
	if len(en.Sections[0].Children) != 1 || en.Sections[0].Children[0].Heading != "Examples" {
		t.Errorf("expected Examples subsection, got %+v", en.Sections[0].Children)
	}

	fr := trees[1]
	if fr.Title != "Nombre premier" || fr.Language != "fr" {
		t.Errorf("unexpected french tree: %+v", fr)
	}
}

func TestFetch_Cached(t *testing.T) {
	var calls int32
	srv := fakeWiki(t, &calls)
	defer srv.Close()
	c := newTestClient(srv)

	if _, err := c.Fetch(context.Background(), "Prime number", []string{"en"}); err != nil {
		t.Fatal(err)
	}
	before := atomic.LoadInt32(&calls)
	if _, err := c.Fetch(context.Background(), "Prime number", []string{"en"}); err != nil {
		t.Fatal(err)
	}
	if after := atomic.LoadInt32(&calls); after != before {
		t.Errorf("expected cached fetch to make no requests, made %d", after-before)
	}
}

func TestFetch_SkipsUnlinkedLanguage(t *testing.T) {
	var calls int32
	srv := fakeWiki(t, &calls)
	defer srv.Close()
	c := newTestClient(srv)

	trees, err := c.Fetch(context.Background(), "Prime number", []string{"de", "en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trees) != 1 || trees[0].Language != "en" {
		t.Errorf("expected only english tree, got %d", len(trees))
	}
}

func TestFetch_NotFound(t *testing.T) {
	var calls int32
	srv := fakeWiki(t, &calls)
	defer srv.Close()
	c := newTestClient(srv)

	if _, err := c.Fetch(context.Background(), "No such article", []string{"en"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := c.Fetch(context.Background(), "Prime number", []string{"de"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unlinked language, got %v", err)
	}
}

func TestFetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()
	c := newTestClient(srv)

	_, err := c.Fetch(context.Background(), "Prime number", []string{"en"})
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected transport error, got %v", err)
	}
}
