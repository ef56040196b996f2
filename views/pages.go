package views

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

type page struct {
	w   io.Writer
	err error
}

func (p *page) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *page) head(cfg SiteConfig, title string) {
	p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
	if title != "" {
		p.text(title)
		p.raw(" | ")
	}
	p.text(cfg.Name)
	p.raw(`</title>`)
	if cfg.Description != "" {
		p.raw(`<meta name="description" content="`)
		p.text(cfg.Description)
		p.raw(`">`)
	}
	p.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"></head><body><header><a href="/">`)
	p.text(cfg.Name)
	p.raw(`</a><form action="/search" method="get"><input type="search" name="category" placeholder="Search"></form></header><main>`)
}

func (p *page) foot() {
	p.raw(`</main></body></html>`)
}

func component(fn func(p *page)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		fn(p)
		return p.err
	})
}

func listing(cfg SiteConfig, title, route string, r ListingResult) templ.Component {
	return component(func(p *page) {
		p.head(cfg, title)
		if r.HasLogin() {
			p.raw(`<p class="viewer">Signed in as `)
			p.text(r.Viewer)
			p.raw(`</p>`)
		}
		p.raw(`<ul class="articles">`)
		for _, a := range r.Articles {
			p.raw(`<li><a href="`)
			p.text(DetailURL(a.ID))
			p.raw(`">`)
			p.text(a.Title)
			p.raw(`</a><span class="meta">`)
			p.text(a.AuthorLogin)
			p.raw(` · `)
			p.text(a.Date)
			p.raw(` · `)
			p.text(strconv.FormatInt(a.Views, 10))
			p.raw(` views · `)
			p.text(strconv.FormatInt(a.CommentCount, 10))
			p.raw(` comments</span><p>`)
			p.text(Excerpt(a.Abstract, 200))
			p.raw(`</p></li>`)
		}
		p.raw(`</ul><nav class="pager">`)
		if HasPrev(r) {
			p.raw(`<a rel="prev" href="`)
			p.text(PageURL(route, r.Category, (r.CurrentPage-2)*pageSize))
			p.raw(`">Newer</a>`)
		}
		p.raw(`<span>Page `)
		p.text(strconv.FormatInt(r.CurrentPage, 10))
		p.raw(` · `)
		p.text(strconv.FormatInt(r.Total, 10))
		p.raw(` posts</span>`)
		if HasNext(r) {
			p.raw(`<a rel="next" href="`)
			p.text(PageURL(route, r.Category, r.CurrentPage*pageSize))
			p.raw(`">Older</a>`)
		}
		p.raw(`</nav>`)
		p.foot()
	})
}

// Home renders the listing of all published posts.
func Home(cfg SiteConfig, r ListingResult) templ.Component {
	return listing(cfg, "", "/", r)
}

// Category renders the listing of one category.
func Category(cfg SiteConfig, r ListingResult) templ.Component {
	return listing(cfg, "Category "+r.Category, "/category", r)
}

// Search renders keyword search results.
func Search(cfg SiteConfig, r ListingResult) templ.Component {
	return listing(cfg, "Search: "+r.Category, "/search", r)
}

// Detail renders a single article. The body is author-supplied HTML.
func Detail(cfg SiteConfig, d ArticleDetail) templ.Component {
	return component(func(p *page) {
		p.head(cfg, d.Title)
		p.raw(`<article><h1>`)
		p.text(d.Title)
		p.raw(`</h1><p class="meta">`)
		p.text(d.AuthorLogin)
		p.raw(` · updated `)
		p.text(d.Modified)
		p.raw(` · `)
		p.text(strconv.FormatInt(d.Views, 10))
		p.raw(` views</p><div class="content">`)
		p.raw(d.Content)
		p.raw(`</div></article>`)
		if !d.HasLogin {
			p.raw(`<p class="comment-hint"><a href="/login">Log in</a> to comment.</p>`)
		}
		p.foot()
	})
}

func csrfInput(p *page, token string) {
	p.raw(`<input type="hidden" name="_csrf" value="`)
	p.text(token)
	p.raw(`">`)
}

// Login renders the login form.
func Login(cfg SiteConfig, csrfToken string) templ.Component {
	return component(func(p *page) {
		p.head(cfg, "Log in")
		p.raw(`<form action="/login" method="post">`)
		csrfInput(p, csrfToken)
		p.raw(`<label>User name <input name="user_name" required></label>`)
		p.raw(`<label>Password <input type="password" name="password" required></label>`)
		p.raw(`<button type="submit">Log in</button></form><p><a href="/register">Create an account</a></p>`)
		p.foot()
	})
}

// Register renders the registration form.
func Register(cfg SiteConfig, csrfToken string) templ.Component {
	return component(func(p *page) {
		p.head(cfg, "Register")
		p.raw(`<form action="/register" method="post">`)
		csrfInput(p, csrfToken)
		p.raw(`<label>User name <input name="user_name" required></label>`)
		p.raw(`<label>Email <input type="email" name="email" required></label>`)
		p.raw(`<label>Verification answer <input name="answer" required></label>`)
		p.raw(`<label>Password <input type="password" name="user_pwd" required></label>`)
		p.raw(`<button type="submit">Register</button></form>`)
		p.foot()
	})
}

// NotFound renders the 404 page.
func NotFound(cfg SiteConfig) templ.Component {
	return component(func(p *page) {
		p.head(cfg, "Not found")
		p.raw(`<h1>Page not found</h1><p><a href="/">Back to the front page</a></p>`)
		p.foot()
	})
}

// ServerError renders the 500 page.
func ServerError(cfg SiteConfig) templ.Component {
	return component(func(p *page) {
		p.head(cfg, "Error")
		p.raw(`<h1>Something went wrong</h1><p>Please try again later.</p>`)
		p.foot()
	})
}
