// Package links discovers the anchors of a web page and sorts them into
// internal and external links.
package links

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/opticini/opticini-cli/internal/domain/entity"
	"github.com/opticini/opticini-cli/internal/domain/repository"
)

const maxPageBytes = 1 << 20 // 1MB limit

// Repository fetches pages over plain HTTP.
type Repository struct {
	client    *http.Client
	userAgent string
}

// NewRepository creates a link discovery repository. c may be nil.
func NewRepository(c *http.Client, userAgent string) repository.LinkRepository {
	if c == nil {
		c = http.DefaultClient
	}
	return &Repository{client: c, userAgent: userAgent}
}

// Discover downloads pageURL and returns its links.
func (r *Repository) Discover(ctx context.Context, pageURL string) (entity.LinkReport, error) {
	target, err := entity.NormalizeTargetURL(pageURL)
	if err != nil {
		return entity.LinkReport{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return entity.LinkReport{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return entity.LinkReport{}, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return entity.LinkReport{}, fmt.Errorf("fetch %s: status %d", target, resp.StatusCode)
	}

	// Redirects change what relative links resolve against.
	return ExtractLinks(io.LimitReader(resp.Body, maxPageBytes), resp.Request.URL)
}

// ExtractLinks parses an HTML document fetched from page and classifies every
// <a href> against the page host. Links keep document order and appear once.
func ExtractLinks(r io.Reader, page *url.URL) (entity.LinkReport, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return entity.LinkReport{}, fmt.Errorf("parse html: %w", err)
	}

	// <base href> only changes how relative links resolve
	base := page
	if href := findBaseHref(doc); href != "" {
		if u, err := base.Parse(href); err == nil {
			base = u
		}
	}

	report := entity.LinkReport{
		PageURL:  page.String(),
		Internal: []string{},
		External: []string{},
	}
	seen := map[string]bool{}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if link, ok := resolve(base, attr(n, "href")); ok && !seen[link.String()] {
				seen[link.String()] = true
				if sameHost(page, link) {
					report.Internal = append(report.Internal, link.String())
				} else {
					report.External = append(report.External, link.String())
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return report, nil
}

func resolve(base *url.URL, href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil, false
	}
	u, err := base.Parse(href)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		// mailto:, tel:, javascript: and friends
		return nil, false
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u, true
}

func sameHost(a, b *url.URL) bool {
	return strings.EqualFold(strings.TrimPrefix(a.Hostname(), "www."), strings.TrimPrefix(b.Hostname(), "www."))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findBaseHref(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "base" {
		return attr(n, "href")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if href := findBaseHref(c); href != "" {
			return href
		}
	}
	return ""
}
