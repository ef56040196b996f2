package views

import (
	"net/url"
	"strconv"
	"strings"
)

// pageSize is the page size used for pager links.
const pageSize = 10

// DetailURL returns the site-relative link to an article.
func DetailURL(id int64) string {
	return "/detail?id=" + strconv.FormatInt(id, 10)
}

// PageURL returns the link to the listing page starting at start, keeping
// the category or keyword parameter when the listing has one.
func PageURL(route, category string, start int64) string {
	q := url.Values{}
	q.Set("start", strconv.FormatInt(start, 10))
	q.Set("len", strconv.Itoa(pageSize))
	if category != "" && category != "all" {
		q.Set("category", category)
	}
	return route + "?" + q.Encode()
}

// HasNext reports whether a page follows r.CurrentPage.
func HasNext(r ListingResult) bool {
	return r.CurrentPage*pageSize < r.Total
}

// HasPrev reports whether a page precedes r.CurrentPage.
func HasPrev(r ListingResult) bool {
	return r.CurrentPage > 1
}

// Excerpt shortens s to at most n runes on a word boundary.
func Excerpt(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	cut := string(r[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
