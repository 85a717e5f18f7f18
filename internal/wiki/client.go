// Package wiki fetches Wikipedia articles through the MediaWiki action API
// and turns their wikitext into section trees.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/wikiqa/internal/doctree"
)

// ErrNotFound is returned when the title resolves in none of the requested
// languages.
var ErrNotFound = errors.New("article not found")

const (
	DefaultUserAgent = "WikiQA/1.0 (https://github.com/dgallion1/wikiqa)"
	defaultTimeout   = 30 * time.Second
	defaultCacheSize = 256
	defaultCacheTTL  = time.Hour
	sourceLanguage   = "en"
)

type cacheKey struct {
	title string
	lang  string
}

// Client is a MediaWiki API client with a memoizing cache keyed by
// (title, language).
type Client struct {
	http     *resty.Client
	endpoint func(lang string) string
	cache    *expirable.LRU[cacheKey, *doctree.SectionTree]
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	endpoint   func(string) string
	userAgent  string
	timeout    time.Duration
	cacheSize  int
	cacheTTL   time.Duration
	logger     *slog.Logger
	httpClient *http.Client
}

// WithEndpoint overrides how the API URL for a language is built.
func WithEndpoint(fn func(lang string) string) Option {
	return func(o *clientOptions) { o.endpoint = fn }
}

func WithUserAgent(ua string) Option {
	return func(o *clientOptions) { o.userAgent = ua }
}

func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithCache sets the size and entry lifetime of the fetch cache.
func WithCache(size int, ttl time.Duration) Option {
	return func(o *clientOptions) {
		o.cacheSize = size
		o.cacheTTL = ttl
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

func NewClient(opts ...Option) *Client {
	o := clientOptions{
		endpoint: func(lang string) string {
			return fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang)
		},
		userAgent: DefaultUserAgent,
		timeout:   defaultTimeout,
		cacheSize: defaultCacheSize,
		cacheTTL:  defaultCacheTTL,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize <= 0 {
		o.cacheSize = defaultCacheSize
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetTimeout(o.timeout).
		SetHeader("User-Agent", o.userAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	return &Client{
		http:     rc,
		endpoint: o.endpoint,
		cache:    expirable.NewLRU[cacheKey, *doctree.SectionTree](o.cacheSize, nil, o.cacheTTL),
		logger:   o.logger,
	}
}

type queryResponse struct {
	Query struct {
		Pages []apiPage `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

type apiPage struct {
	PageID    int    `json:"pageid"`
	Title     string `json:"title"`
	Missing   bool   `json:"missing"`
	Invalid   bool   `json:"invalid"`
	FullURL   string `json:"fullurl"`
	LangLinks []struct {
		Lang  string `json:"lang"`
		Title string `json:"title"`
	} `json:"langlinks"`
	Revisions []struct {
		Slots struct {
			Main struct {
				Content string `json:"content"`
			} `json:"main"`
		} `json:"slots"`
	} `json:"revisions"`
}

// Fetch returns one section tree per language in which title resolves, in
// the order of langs. The title is resolved on English Wikipedia and other
// languages are reached through its interlanguage links; languages without
// a link are skipped.
func (c *Client) Fetch(ctx context.Context, title string, langs []string) ([]*doctree.SectionTree, error) {
	if len(langs) == 0 {
		langs = []string{sourceLanguage}
	}
	trees := make([]*doctree.SectionTree, len(langs))
	missing := false
	for i, lang := range langs {
		if t, ok := c.cache.Get(cacheKey{title, lang}); ok {
			trees[i] = t
		} else {
			missing = true
		}
	}
	if !missing {
		return compact(trees), nil
	}

	page, err := c.query(ctx, sourceLanguage, map[string]string{
		"titles":  title,
		"prop":    "info|langlinks",
		"inprop":  "url",
		"lllimit": "max",
	})
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	titles := map[string]string{sourceLanguage: page.Title}
	for _, ll := range page.LangLinks {
		titles[ll.Lang] = ll.Title
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, lang := range langs {
		if trees[i] != nil {
			continue
		}
		localTitle, ok := titles[lang]
		if !ok {
			c.logger.Info("no language link", "title", title, "lang", lang)
			continue
		}
		g.Go(func() error {
			tree, err := c.fetchTree(gctx, lang, localTitle)
			if err != nil {
				return fmt.Errorf("fetch %s:%s: %w", lang, localTitle, err)
			}
			if tree == nil {
				return nil
			}
			c.cache.Add(cacheKey{title, lang}, tree)
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := compact(trees)
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q in %v", ErrNotFound, title, langs)
	}
	return out, nil
}

func (c *Client) fetchTree(ctx context.Context, lang, title string) (*doctree.SectionTree, error) {
	page, err := c.query(ctx, lang, map[string]string{
		"titles":  title,
		"prop":    "revisions|info",
		"rvprop":  "content",
		"rvslots": "main",
		"inprop":  "url",
	})
	if err != nil || page == nil {
		return nil, err
	}
	if len(page.Revisions) == 0 {
		return nil, nil
	}
	tree := ParseWikitext(page.Title, page.Revisions[0].Slots.Main.Content)
	tree.Language = lang
	tree.Source = page.FullURL
	if tree.Source == "" {
		tree.Source = "unknown"
	}
	return tree, nil
}

// query runs an action=query request and returns its single page, or nil
// when the page does not exist.
func (c *Client) query(ctx context.Context, lang string, params map[string]string) (*apiPage, error) {
	var out queryResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"action":        "query",
			"format":        "json",
			"formatversion": "2",
			"redirects":     "1",
		}).
		SetQueryParams(params).
		SetResult(&out).
		ForceContentType("application/json").
		Get(c.endpoint(lang))
	if err != nil {
		return nil, fmt.Errorf("mediawiki %s: %w", lang, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("mediawiki %s: status %d", lang, resp.StatusCode())
	}
	if out.Error != nil {
		return nil, fmt.Errorf("mediawiki %s: %s: %s", lang, out.Error.Code, out.Error.Info)
	}
	if len(out.Query.Pages) == 0 {
		return nil, nil
	}
	p := out.Query.Pages[0]
	if p.Missing || p.Invalid {
		return nil, nil
	}
	return &p, nil
}

func compact(trees []*doctree.SectionTree) []*doctree.SectionTree {
	out := make([]*doctree.SectionTree, 0, len(trees))
	for _, t := range trees {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}
