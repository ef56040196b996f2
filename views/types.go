package views

// Post is a stored article as read from the posts table.
type Post struct {
	ID           int64
	AuthorID     int64
	Title        string
	Content      string
	Abstract     string
	Date         string
	Modified     string
	CategoryID   int64
	CommentCount int64
	Status       string
}

// PostRow is a post joined with its author's login and total view count.
type PostRow struct {
	Post        Post
	AuthorLogin string
	Views       int64
}

// ArticleSummary is one entry of a listing page.
type ArticleSummary struct {
	ID           int64
	AuthorID     int64
	Abstract     string
	Date         string
	Title        string
	CategoryID   int64
	CommentCount int64
	AuthorLogin  string
	Views        int64
}

// ListingResult feeds the home, category and search pages.
type ListingResult struct {
	Articles    []ArticleSummary
	Total       int64
	CurrentPage int64
	Category    string // category id, search keyword or "all"
	Viewer      string // empty when anonymous
}

// HasLogin reports whether the listing is rendered for a logged-in viewer.
func (r ListingResult) HasLogin() bool { return r.Viewer != "" }

// ArticleDetail feeds the single article page.
type ArticleDetail struct {
	Title       string
	Modified    string
	AuthorLogin string
	Views       int64
	Content     string
	HasLogin    bool
}

// SiteConfig holds site-wide settings the pages print in headers and links.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
}
