package tool

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	contractx "github.com/tanpawarit/spark/agent/contract"
	"github.com/tanpawarit/spark/agent/memory"
	"github.com/tanpawarit/spark/pkg/datefacts"
	"github.com/tanpawarit/spark/pkg/movie"
	"github.com/tanpawarit/spark/pkg/nameday"
	"github.com/tanpawarit/spark/pkg/webpage"
)

type fakeMovieFetcher struct {
	gotURL string
}

func (f *fakeMovieFetcher) Fetch(_ context.Context, movieURL string) (string, *movie.Record) {
	f.gotURL = movieURL
	rec := movie.Record{Name: "Alien", Genre: "Sci-Fi", Rating: "87%", URL: movieURL}
	return rec.Text(), &rec
}

type fakePageReader struct {
	err error
}

func (f fakePageReader) Read(_ context.Context, url string) (webpage.Page, error) {
	if f.err != nil {
		return webpage.Page{}, f.err
	}
	return webpage.Page{URL: url, Title: "Soup", Markdown: "# Soup"}, nil
}

func fixedClock() Clock {
	return func() time.Time { return time.Date(2024, 7, 3, 10, 15, 0, 0, time.UTC) }
}

func newTestRegistry(t *testing.T, store memory.Store) *Registry {
	t.Helper()
	r, err := NewDefaultRegistry(Deps{
		Clock:    fixedClock(),
		NameDays: nameday.NewCatalog(map[string][]string{"07-04": {"Prokop"}, "12-24": {"Adam", "Eva"}}),
		Movies:   &fakeMovieFetcher{},
		Pages:    fakePageReader{},
		Memory:   store,
	})
	if err != nil {
		t.Fatalf("NewDefaultRegistry() error = %v", err)
	}
	return r
}

func TestDefaultRegistryGrants(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, nil)
	cases := map[contractx.AgentType][]string{
		contractx.AgentTypeCelebrations: {ToolCurrentDateTime, ToolDayOfWeek, ToolReadNameDays, ToolUpcomingCelebrations, ToolFindNameDay},
		contractx.AgentTypeMovies:       {ToolMovieInformation},
		contractx.AgentTypeRecipes:      {ToolFetchWebpage, ToolMathEvaluate},
	}
	for agent, want := range cases {
		infos := r.InfosFor(agent)
		if len(infos) != len(want) {
			t.Fatalf("%s: got %d tools, want %d", agent, len(infos), len(want))
		}
		for i, name := range want {
			if infos[i].Name != name {
				t.Fatalf("%s: tool[%d] = %s, want %s", agent, i, infos[i].Name, name)
			}
		}
	}
	if r.Allowed(contractx.AgentTypeMovies, ToolMemoryAdd) {
		t.Fatal("memory tools must not be registered without a store")
	}
}

func TestDateTimeTools(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, nil)
	ctx := context.Background()

	now := r.Call(ctx, ToolCurrentDateTime, nil)
	got, ok := now.Result.(datefacts.Now)
	if !ok || got.Date != "2024-07-03" || got.DayOfWeek != "Wednesday" || got.MonthDay != "07-03" {
		t.Fatalf("get_current_datetime = %+v", now)
	}

	bad := r.Call(ctx, ToolDayOfWeek, map[string]any{"date": "2024-02-30"})
	if bad.Error != "" {
		t.Fatalf("invalid date must be reported in the result, got tool error %q", bad.Error)
	}
	res, ok := bad.Result.(datefacts.DayOfWeekResult)
	if !ok || res.Error != datefacts.InvalidDateMessage || res.Date != "2024-02-30" {
		t.Fatalf("get_day_of_week(invalid) = %+v", bad.Result)
	}
}

func TestDayOfWeekEchoesInputUntouched(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		args map[string]any
		date string
	}{
		{name: "padded", args: map[string]any{"date": " 2024-07-03"}, date: " 2024-07-03"},
		{name: "empty", args: map[string]any{"date": ""}, date: ""},
		{name: "absent", args: map[string]any{}, date: ""},
		{name: "number", args: map[string]any{"date": float64(20240703)}, date: "20240703"},
		{name: "bool", args: map[string]any{"date": true}, date: "true"},
	}
	for _, tc := range cases {
		got := r.Call(ctx, ToolDayOfWeek, tc.args)
		if got.Error != "" {
			t.Fatalf("%s: expected result, got tool error %q", tc.name, got.Error)
		}
		res, ok := got.Result.(datefacts.DayOfWeekResult)
		if !ok {
			t.Fatalf("%s: unexpected result type %T", tc.name, got.Result)
		}
		if res.Date != tc.date || res.Error != datefacts.InvalidDateMessage || res.DayOfWeek != "" {
			t.Fatalf("%s: get_day_of_week = %+v", tc.name, res)
		}
	}
}

func TestNameDayTools(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, nil)
	ctx := context.Background()

	up := r.Call(ctx, ToolUpcomingCelebrations, map[string]any{"days": float64(2)})
	list, ok := up.Result.([]nameday.Celebration)
	if !ok || len(list) != 2 {
		t.Fatalf("upcoming_celebrations = %+v", up)
	}
	if list[0].RelativeLabel != nameday.LabelToday || len(list[0].Names) != 0 {
		t.Fatalf("today = %+v", list[0])
	}
	if list[1].RelativeLabel != nameday.LabelTomorrow || list[1].Names[0] != "Prokop" {
		t.Fatalf("tomorrow = %+v", list[1])
	}

	week := r.Call(ctx, ToolUpcomingCelebrations, nil)
	if list, _ := week.Result.([]nameday.Celebration); len(list) != DefaultCelebrationWindow {
		t.Fatalf("default window = %d entries", len(list))
	}
	if tooLong := r.Call(ctx, ToolUpcomingCelebrations, map[string]any{"days": 1000}); tooLong.Error == "" {
		t.Fatal("oversized window should be rejected")
	}
	for _, days := range []any{float64(0), float64(-3), "0"} {
		empty := r.Call(ctx, ToolUpcomingCelebrations, map[string]any{"days": days})
		if empty.Error == "" || empty.Result != nil {
			t.Fatalf("days=%v should be rejected, got %+v", days, empty)
		}
	}

	found := r.Call(ctx, ToolFindNameDay, map[string]any{"name": "eva"})
	match, ok := found.Result.(NameDayMatch)
	if !ok || len(match.Dates) != 1 || match.Dates[0] != "12-24" {
		t.Fatalf("find_name_day = %+v", found)
	}

	all := r.Call(ctx, ToolReadNameDays, nil)
	entries, ok := all.Result.(map[string][]string)
	if !ok || len(entries) != 2 {
		t.Fatalf("read_name_days = %+v", all)
	}
}

func TestWebTools(t *testing.T) {
	t.Parallel()

	fetcher := &fakeMovieFetcher{}
	r := MustNewRegistry(
		MovieTool(fetcher, contractx.AgentTypeMovies),
		WebpageTool(fakePageReader{err: errors.New("page status 404")}, contractx.AgentTypeRecipes),
	)
	ctx := context.Background()

	out := r.Call(ctx, ToolMovieInformation, map[string]any{"url": " https://www.csfd.cz/film/8365-vetrelec/ "})
	res, ok := out.Result.(MovieResult)
	if !ok || res.Record == nil || res.Record.Name != "Alien" {
		t.Fatalf("get_movie_information = %+v", out)
	}
	if fetcher.gotURL != "https://www.csfd.cz/film/8365-vetrelec/" {
		t.Fatalf("fetcher got %q", fetcher.gotURL)
	}
	if !strings.HasPrefix(res.Text, "Name: Alien") {
		t.Fatalf("text = %q", res.Text)
	}

	page := r.Call(ctx, ToolFetchWebpage, map[string]any{"url": "https://example.com"})
	if page.Error != "page status 404" {
		t.Fatalf("fetch_webpage error = %+v", page)
	}
}

func TestMemoryToolsUseCallerScope(t *testing.T) {
	t.Parallel()

	store, err := memory.NewSQLiteStore(filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	r := newTestRegistry(t, store)
	movies := contractx.WithCaller(context.Background(), contractx.Caller{UserID: "42", Agent: contractx.AgentTypeMovies})
	recipes := contractx.WithCaller(context.Background(), contractx.Caller{UserID: "42", Agent: contractx.AgentTypeRecipes})

	added := r.Call(movies, ToolMemoryAdd, map[string]any{"content": "wants to watch Alien", "topics": []any{"watchlist"}})
	m, ok := added.Result.(memory.Memory)
	if !ok || m.Domain != "movies" || m.UserID != "42" {
		t.Fatalf("memory_add = %+v", added)
	}

	listed := r.Call(recipes, ToolMemoryList, nil)
	if items, ok := listed.Result.([]memory.Memory); !ok || len(items) != 0 {
		t.Fatalf("recipes must not see movie memories: %+v", listed)
	}

	updated := r.Call(movies, ToolMemoryUpdate, map[string]any{"id": m.ID, "content": "watched Alien"})
	if um, ok := updated.Result.(memory.Memory); !ok || um.Content != "watched Alien" {
		t.Fatalf("memory_update = %+v", updated)
	}

	if del := r.Call(recipes, ToolMemoryDelete, map[string]any{"id": m.ID}); del.Error != memory.ErrNotFound.Error() {
		t.Fatalf("cross-domain delete = %+v", del)
	}
	if del := r.Call(movies, ToolMemoryDelete, map[string]any{"id": m.ID}); del.Error != "" {
		t.Fatalf("memory_delete = %+v", del)
	}

	if noCaller := r.Call(context.Background(), ToolMemoryList, nil); noCaller.Error == "" {
		t.Fatal("memory tools need a caller")
	}
}

func TestRegisterMCPSkipsCallerTools(t *testing.T) {
	t.Parallel()

	store, err := memory.NewSQLiteStore(filepath.Join(t.TempDir(), "m.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })

	r := newTestRegistry(t, store)
	s := server.NewMCPServer("spark-test", "0.0.0", server.WithToolCapabilities(true))
	names := r.RegisterMCP(s)

	if len(names) != 8 {
		t.Fatalf("registered %d tools, want 8: %v", len(names), names)
	}
	for _, name := range names {
		if strings.HasPrefix(name, "memory_") {
			t.Fatalf("caller-scoped tool %s exposed over MCP", name)
		}
	}
}

func TestMCPHandler(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, nil)
	handler := r.mcpHandler(ToolDayOfWeek)

	req := mcp.CallToolRequest{}
	req.Params.Name = ToolDayOfWeek
	req.Params.Arguments = map[string]any{"date": "2024-07-04"}

	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %+v", res)
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok || !strings.Contains(text.Text, `"day_of_week": "Thursday"`) {
		t.Fatalf("unexpected content: %+v", res.Content)
	}

	req.Params.Arguments = map[string]any{}
	res, err = r.mcpHandler(ToolFindNameDay)(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !res.IsError {
		t.Fatal("missing argument should produce an error result")
	}
}
