package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestSearchRepositories_SinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("q") != "topic:gaming" || q.Get("sort") != "stars" || q.Get("order") != "desc" {
			t.Errorf("unexpected query params: %v", q)
		}
		writeJSON(t, w, searchResponse{
			TotalCount: 2,
			Items: []Repository{
				{FullName: "a/one"},
				{FullName: "b/two"},
			},
		})
	}))
	defer server.Close()

	repos, err := testClient(server.URL).SearchRepositories(context.Background(), "topic:gaming", "stars", 10, 1, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(repos) != 2 || repos[0].FullName != "a/one" {
		t.Errorf("got %+v", repos)
	}
}

func TestSearchRepositories_FanOut(t *testing.T) {
	const totalPages = 3
	requests := map[string]int{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		requests[page]++
		if page == "1" {
			w.Header().Set("Link", fmt.Sprintf(
				`<https://api.example.com/search/repositories?q=x&page=2>; rel="next", `+
					`<https://api.example.com/search/repositories?q=x&page=%d>; rel="last"`, totalPages))
		}
		writeJSON(t, w, searchResponse{Items: []Repository{{FullName: "owner/repo-p" + page}}})
	}))
	defer server.Close()

	repos, err := testClient(server.URL).SearchRepositories(context.Background(), "x", "", 10, PageAll, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(repos) != totalPages {
		t.Fatalf("got %d repos, want %d", len(repos), totalPages)
	}
	for i, repo := range repos {
		want := "owner/repo-p" + strconv.Itoa(i+1)
		if repo.FullName != want {
			t.Errorf("repos[%d] = %s, want %s (page order)", i, repo.FullName, want)
		}
	}
	for page, n := range requests {
		if n != 1 {
			t.Errorf("page %s fetched %d times", page, n)
		}
	}
}

func TestSearchRepositories_FanOutCappedAtTenPages(t *testing.T) {
	var requestCount int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if r.URL.Query().Get("page") == "1" {
			w.Header().Set("Link", `<https://api.example.com/s?page=50>; rel="last"`)
		}
		writeJSON(t, w, searchResponse{Items: []Repository{{FullName: "o/r"}}})
	}))
	defer server.Close()

	repos, err := testClient(server.URL).SearchRepositories(context.Background(), "x", "stars", 10, PageAll, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if requestCount != 10 {
		t.Errorf("issued %d requests, want 10 (1000-result cap)", requestCount)
	}
	if len(repos) != 10 {
		t.Errorf("got %d repos, want 10", len(repos))
	}
}

func TestSearchRepositories_FanOutSingleResultPage(t *testing.T) {
	var requestCount int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		// No Link header: everything fits on one page.
		writeJSON(t, w, searchResponse{Items: []Repository{{FullName: "o/r"}}})
	}))
	defer server.Close()

	repos, err := testClient(server.URL).SearchRepositories(context.Background(), "x", "stars", 10, PageAll, false)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if requestCount != 1 || len(repos) != 1 {
		t.Errorf("requests = %d, repos = %d; want 1 and 1", requestCount, len(repos))
	}
}

func TestGetReleases_PaginatesUntilEmptyPage(t *testing.T) {
	requests := map[string]int{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		requests[page]++
		if page != "1" {
			writeJSON(t, w, []Release{})
			return
		}
		releases := make([]Release, 100)
		base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := range releases {
			d := base.AddDate(0, 0, i)
			releases[i] = Release{TagName: "v" + strconv.Itoa(i), PublishedAt: &d, CreatedAt: d}
		}
		writeJSON(t, w, releases)
	}))
	defer server.Close()

	releases, err := testClient(server.URL).GetReleases(context.Background(), "o", "r", ReleaseOptions{})
	if err != nil {
		t.Fatalf("GetReleases failed: %v", err)
	}
	if len(releases) != 100 {
		t.Errorf("got %d releases, want 100", len(releases))
	}
	for page, n := range requests {
		if n != 1 {
			t.Errorf("page %s fetched %d times", page, n)
		}
	}
	if len(requests) != 2 {
		t.Errorf("fetched %d pages, want 2 (100 items + empty page)", len(requests))
	}
}

func TestGetReleases_StableFilterAndSort(t *testing.T) {
	date := func(s string) *time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return &d
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeJSON(t, w, []Release{})
			return
		}
		writeJSON(t, w, []Release{
			{TagName: "v3", PublishedAt: date("2022-05-01")},
			{TagName: "v2-rc", Prerelease: true, PublishedAt: date("2021-06-01")},
			{TagName: "v1", PublishedAt: date("2020-02-01")},
			{TagName: "draft", Draft: true, PublishedAt: date("2020-03-01")},
			{TagName: "v2", CreatedAt: *date("2021-07-01")}, // never published
		})
	}))
	defer server.Close()

	releases, err := testClient(server.URL).GetReleases(context.Background(), "o", "r", ReleaseOptions{StableOnly: true})
	if err != nil {
		t.Fatalf("GetReleases failed: %v", err)
	}

	want := []string{"v1", "v2", "v3"}
	if len(releases) != len(want) {
		t.Fatalf("got %d releases, want %d", len(releases), len(want))
	}
	for i, tag := range want {
		if releases[i].TagName != tag {
			t.Errorf("releases[%d] = %s, want %s", i, releases[i].TagName, tag)
		}
	}
}

func TestGetReleases_TimeSpacedSampling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			writeJSON(t, w, []Release{})
			return
		}
		releases := make([]Release, 20)
		base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := range releases {
			d := base.AddDate(0, 0, i*55)
			releases[i] = Release{TagName: "v" + strconv.Itoa(i), PublishedAt: &d}
		}
		writeJSON(t, w, releases)
	}))
	defer server.Close()

	releases, err := testClient(server.URL).GetReleases(context.Background(), "o", "r",
		ReleaseOptions{StableOnly: true, TimeSpaced: true, Count: 5})
	if err != nil {
		t.Fatalf("GetReleases failed: %v", err)
	}
	if len(releases) != 5 {
		t.Fatalf("got %d releases, want 5", len(releases))
	}
	if releases[0].TagName != "v0" || releases[4].TagName != "v19" {
		t.Errorf("endpoints = %s..%s, want v0..v19", releases[0].TagName, releases[4].TagName)
	}
}

func TestCounts_LastPageTrick(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("per_page") != "1" {
			t.Errorf("per_page = %q, want 1", r.URL.Query().Get("per_page"))
		}
		switch r.URL.Path {
		case "/repos/o/r/releases":
			w.Header().Set("Link", `<https://api.example.com/repos/o/r/releases?per_page=1&page=42>; rel="last"`)
			writeJSON(t, w, []any{map[string]any{}})
		case "/repos/o/r/contributors":
			if r.URL.Query().Get("anon") != "true" {
				t.Errorf("contributors missing anon=true")
			}
			// Single contributor, no pagination metadata.
			writeJSON(t, w, []any{map[string]any{}})
		case "/repos/o/r/commits":
			w.Header().Set("Link", `<https://api.example.com/repos/o/r/commits?per_page=1&page=89731>; rel="last"`)
			writeJSON(t, w, []any{map[string]any{}})
		case "/repos/o/r/issues":
			if r.URL.Query().Get("state") != "all" {
				t.Errorf("issues missing state=all")
			}
			// No issues at all.
			writeJSON(t, w, []any{})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := testClient(server.URL)
	ctx := context.Background()

	tests := []struct {
		name  string
		count func() (int, error)
		want  int
	}{
		{"releases via last page", func() (int, error) { return c.ReleaseCount(ctx, "o", "r") }, 42},
		{"contributors via body length", func() (int, error) { return c.ContributorCount(ctx, "o", "r") }, 1},
		{"commits via last page", func() (int, error) { return c.CommitCount(ctx, "o", "r") }, 89731},
		{"issues empty body", func() (int, error) { return c.IssueCount(ctx, "o", "r") }, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.count()
			if err != nil {
				t.Fatalf("count failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFileCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/o/r/git/trees/main" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("recursive") != "1" {
			t.Errorf("missing recursive=1")
		}
		writeJSON(t, w, Tree{Entries: []TreeEntry{
			{Path: "src", Type: "tree"},
			{Path: "src/main.go", Type: "blob", Size: 100},
			{Path: "README.md", Type: "blob", Size: 50},
		}})
	}))
	defer server.Close()

	n, err := testClient(server.URL).FileCount(context.Background(), "o", "r", "main")
	if err != nil {
		t.Fatalf("FileCount failed: %v", err)
	}
	if n != 2 {
		t.Errorf("FileCount = %d, want 2", n)
	}
}

func TestGetTree_EncodesRef(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		writeJSON(t, w, Tree{})
	}))
	defer server.Close()

	if _, err := testClient(server.URL).GetTree(context.Background(), "o", "r", "v1.0#beta/x"); err != nil {
		t.Fatalf("GetTree failed: %v", err)
	}
	want := "/repos/o/r/git/trees/v1.0%23beta%2Fx"
	if gotPath != want {
		t.Errorf("request path = %s, want %s", gotPath, want)
	}
}
