package query

import (
	"reflect"
	"strings"
	"testing"
)

func TestCountAndListingSharePredicate(t *testing.T) {
	filters := []Filter{
		{},
		ByCategory(3),
		ByKeyword("golang"),
		{CategoryID: 7, HasCategory: true, Keyword: "db"},
	}
	for _, f := range filters {
		count := BuildCount(f)
		list := BuildListing(f, 20, 10)
		if count.Where != list.Where {
			t.Errorf("filter %+v: count where %q != listing where %q", f, count.Where, list.Where)
		}
		if !reflect.DeepEqual(count.Args, list.Args) {
			t.Errorf("filter %+v: count args %v != listing args %v", f, count.Args, list.Args)
		}
	}
}

func TestBuildListingSQL(t *testing.T) {
	sql, args := BuildListing(ByCategory(5), 20, 10).SQL()
	for _, want := range []string{
		"t1.post_status = ?",
		"t3.period = ?",
		"t1.category = ?",
		"ORDER BY t1.post_date DESC",
		"LIMIT ? OFFSET ?",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("listing SQL missing %q: %s", want, sql)
		}
	}
	want := []any{StatusPublished, PeriodTotal, int64(5), int64(10), int64(20)}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuildCountSQL(t *testing.T) {
	sql, args := BuildCount(ByKeyword("go")).SQL()
	if !strings.HasPrefix(sql, "SELECT count(1) FROM posts t1") {
		t.Errorf("unexpected count SQL: %s", sql)
	}
	if strings.Contains(sql, "ORDER BY") || strings.Contains(sql, "LIMIT") {
		t.Errorf("count SQL should not order or limit: %s", sql)
	}
	if len(args) != 3 || args[2] != "go" {
		t.Errorf("args = %v", args)
	}
}

func TestKeywordIsBoundNotInterpolated(t *testing.T) {
	kw := "x') OR 1=1 --"
	sql, args := BuildListing(ByKeyword(kw), 0, 10).SQL()
	if strings.Contains(sql, kw) {
		t.Fatalf("keyword leaked into SQL text: %s", sql)
	}
	found := false
	for _, a := range args {
		if a == kw {
			found = true
		}
	}
	if !found {
		t.Errorf("keyword not present in args: %v", args)
	}
}

func TestBuildDetail(t *testing.T) {
	sql, args := BuildDetail(42).SQL()
	if !strings.Contains(sql, "t1.id = ?") || strings.Contains(sql, "LIMIT") {
		t.Errorf("unexpected detail SQL: %s", sql)
	}
	want := []any{StatusPublished, PeriodTotal, int64(42)}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestListingDoesNotAliasFilterArgs(t *testing.T) {
	c := BuildListing(Filter{}, 0, 10)
	_, first := c.SQL()
	_, second := c.SQL()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("SQL() not repeatable: %v vs %v", first, second)
	}
	if len(c.Args) != 2 {
		t.Errorf("SQL() mutated Criteria.Args: %v", c.Args)
	}
}
