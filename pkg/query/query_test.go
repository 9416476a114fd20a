package query_test

import (
	"reflect"
	"testing"

	"github.com/JaimeStill/agora/pkg/query"
)

func projection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "posts", "p").
		Project("id", "id").
		Project("status", "status").
		Project("author_id", "author_id").
		Project("created_at", "created_at")
}

func TestParseSortFields(t *testing.T) {
	got := query.ParseSortFields("status, -created_at,,")
	want := []query.SortField{
		{Field: "status"},
		{Field: "created_at", Descending: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if query.ParseSortFields("") != nil {
		t.Error("empty input should parse to nil")
	}
}

func TestBuilderPlaceholders(t *testing.T) {
	status := 1
	var author *string

	b := query.NewBuilder(projection(), query.SortField{Field: "created_at", Descending: true}).
		WhereEquals("status", &status).
		WhereEquals("author_id", author).
		WhereContains("id", ptr("abc"))

	sql, args := b.Build()
	want := "SELECT p.id, p.status, p.author_id, p.created_at FROM public.posts p" +
		" WHERE p.status = $1 AND p.id ILIKE $2 ORDER BY p.created_at DESC"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
	if len(args) != 2 || args[1] != "%abc%" {
		t.Errorf("args = %v", args)
	}

	count, countArgs := b.BuildCount()
	if count != "SELECT COUNT(*) FROM public.posts p WHERE p.status = $1 AND p.id ILIKE $2" {
		t.Errorf("count sql = %s", count)
	}
	if len(countArgs) != 2 {
		t.Errorf("count args = %v", countArgs)
	}
}

func TestBuilderOrderByDropsUnknown(t *testing.T) {
	b := query.NewBuilder(projection(), query.SortField{Field: "created_at"}).
		OrderBy([]query.SortField{{Field: "status"}, {Field: "1; DROP TABLE posts"}})

	sql, _ := b.BuildPage(3, 10)
	want := "SELECT p.id, p.status, p.author_id, p.created_at FROM public.posts p ORDER BY p.status ASC LIMIT 10 OFFSET 20"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(projection()).BuildSingle("id", "x")
	if sql != "SELECT p.id, p.status, p.author_id, p.created_at FROM public.posts p WHERE p.id = $1" {
		t.Errorf("sql = %s", sql)
	}
	if len(args) != 1 || args[0] != "x" {
		t.Errorf("args = %v", args)
	}
}

func ptr(s string) *string { return &s }

func TestWhereSearch(t *testing.T) {
	b := query.NewBuilder(projection()).
		WhereEquals("status", 2).
		WhereSearch(ptr("cat"), "id", "author_id")

	sql, args := b.BuildCount()
	want := "SELECT COUNT(*) FROM public.posts p WHERE p.status = $1 AND (p.id ILIKE $2 OR p.author_id ILIKE $3)"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
	if len(args) != 3 || args[2] != "%cat%" {
		t.Errorf("args = %v", args)
	}
}
