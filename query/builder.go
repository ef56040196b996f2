// Package query builds the parameterized SQL used to count, list and fetch
// published posts. Every value is bound as an argument; callers still run
// input validation first.
package query

import (
	"strconv"
	"strings"
)

const (
	// StatusPublished is the only post status visible to readers.
	StatusPublished = "published"
	// PeriodTotal is the view-count period joined into every result row.
	PeriodTotal = "total"
)

// Columns selected for listing and detail rows, in scan order.
const rowColumns = `t1.id, t1.post_author, t1.post_title, t1.post_content, t1.content_abstract, ` +
	`t1.post_date, t1.post_modified, t1.category, t1.comment_count, t1.post_status, ` +
	`t2.user_login, t3.count`

const joins = `FROM posts t1 ` +
	`JOIN users t2 ON t1.post_author = t2.id ` +
	`JOIN post_views t3 ON t3.post_id = t1.id`

// Kind distinguishes the statement shape a Criteria renders to.
type Kind int

const (
	KindCount Kind = iota
	KindListing
	KindDetail
)

// Filter selects which published posts a listing covers.
// A zero Filter matches every published post.
type Filter struct {
	CategoryID  int64
	HasCategory bool
	Keyword     string
}

// ByCategory returns a filter restricted to one category.
func ByCategory(id int64) Filter {
	return Filter{CategoryID: id, HasCategory: true}
}

// ByKeyword returns a filter matching posts whose body contains kw.
func ByKeyword(kw string) Filter {
	return Filter{Keyword: kw}
}

// Criteria is a ready-to-run statement.
type Criteria struct {
	Kind   Kind
	Where  string
	Args   []any
	Offset int64
	Limit  int64
}

// predicate renders the WHERE clause shared by count and listing so the
// reported total always matches the listed set.
func (f Filter) predicate() (string, []any) {
	var b strings.Builder
	args := []any{StatusPublished, PeriodTotal}
	b.WriteString("t1.post_status = ? AND t3.period = ?")
	if f.HasCategory {
		b.WriteString(" AND t1.category = ?")
		args = append(args, f.CategoryID)
	}
	if f.Keyword != "" {
		b.WriteString(" AND instr(lower(t1.post_content), lower(?)) > 0")
		args = append(args, f.Keyword)
	}
	return b.String(), args
}

// BuildCount returns the count statement for f.
func BuildCount(f Filter) Criteria {
	where, args := f.predicate()
	return Criteria{Kind: KindCount, Where: where, Args: args}
}

// BuildListing returns one page of f ordered by publish date, newest first.
func BuildListing(f Filter, offset, limit int64) Criteria {
	where, args := f.predicate()
	return Criteria{Kind: KindListing, Where: where, Args: args, Offset: offset, Limit: limit}
}

// BuildDetail returns the statement fetching a single published post.
func BuildDetail(id int64) Criteria {
	return Criteria{
		Kind:  KindDetail,
		Where: "t1.post_status = ? AND t3.period = ? AND t1.id = ?",
		Args:  []any{StatusPublished, PeriodTotal, id},
	}
}

// SQL renders the statement and its bound arguments.
func (c Criteria) SQL() (string, []any) {
	switch c.Kind {
	case KindCount:
		return "SELECT count(1) " + joins + " WHERE " + c.Where, c.Args
	case KindListing:
		args := append(append([]any(nil), c.Args...), c.Limit, c.Offset)
		return "SELECT " + rowColumns + " " + joins + " WHERE " + c.Where +
			" ORDER BY t1.post_date DESC, t1.id DESC LIMIT ? OFFSET ?", args
	default:
		return "SELECT " + rowColumns + " " + joins + " WHERE " + c.Where, c.Args
	}
}

func (k Kind) String() string {
	switch k {
	case KindCount:
		return "count"
	case KindListing:
		return "listing"
	case KindDetail:
		return "detail"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}
