package web_fetch

import (
	"context"
	"strings"
	"testing"

	"github.com/mohammad-safakhou/marketscope/config"
	"github.com/mohammad-safakhou/marketscope/tools/web_fetch/models"
)

type stubFetcher struct {
	pages map[string]models.Result
}

func (s stubFetcher) Exec(_ context.Context, url string) (models.Result, error) {
	res, ok := s.pages[url]
	if !ok {
		return models.Result{URL: url, Status: 599}, nil
	}
	return res, nil
}

type stubOracle struct {
	body string
}

func (s stubOracle) Search(context.Context, string) (string, error) {
	return s.body, nil
}

const linkedBody = `{"organic":[{"title":"Best Smart Plugs","link":"https://example.com/plugs"},{"title":"Garden","link":"https://example.com/garden"}]}`

func TestCollectRanksRelevantChunks(t *testing.T) {
	fetcher := stubFetcher{pages: map[string]models.Result{
		"https://example.com/plugs": {
			URL:    "https://example.com/plugs",
			Title:  "Best Smart Plugs",
			Text:   "The smart plug segment keeps growing, with energy monitoring smart plug models selling fastest on every storefront we checked.",
			Status: 200,
		},
		"https://example.com/garden": {
			URL:    "https://example.com/garden",
			Title:  "Garden",
			Text:   "Watering your lawn with a garden hose works best early, before the sun dries everything out.",
			Status: 200,
		},
	}}
	ev := &Evidence{Fetcher: fetcher, TopChunks: 1}

	out := ev.Collect(context.Background(), "smart plug energy monitoring", linkedBody)
	if !strings.Contains(out, "smart plug segment") {
		t.Fatalf("expected the matching chunk, got %q", out)
	}
	if strings.Contains(out, "garden hose") {
		t.Fatalf("unrelated chunk leaked into evidence: %q", out)
	}
}

func TestCollectEmptyWithoutOrganicLinks(t *testing.T) {
	ev := &Evidence{Fetcher: stubFetcher{}}
	if out := ev.Collect(context.Background(), "anything", `{"results": []}`); out != "" {
		t.Fatalf("expected empty evidence, got %q", out)
	}
	if out := ev.Collect(context.Background(), "anything", "not json at all"); out != "" {
		t.Fatalf("expected empty evidence for garbage body, got %q", out)
	}
}

func TestCollectSkipsDeadPages(t *testing.T) {
	ev := &Evidence{Fetcher: stubFetcher{}}
	if out := ev.Collect(context.Background(), "smart plugs", linkedBody); out != "" {
		t.Fatalf("expected empty evidence when every fetch fails, got %q", out)
	}
}

func TestEnrichedSearchAppendsEvidence(t *testing.T) {
	fetcher := stubFetcher{pages: map[string]models.Result{
		"https://example.com/plugs": {
			URL:    "https://example.com/plugs",
			Title:  "Best Smart Plugs",
			Text:   "Energy monitoring smart plug sales doubled last quarter.",
			Status: 200,
		},
	}}
	oracle := EnrichedSearch{
		Inner:    stubOracle{body: linkedBody},
		Evidence: &Evidence{Fetcher: fetcher},
	}

	out, err := oracle.Search(context.Background(), "smart plug sales")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.HasPrefix(out, linkedBody) {
		t.Fatalf("raw body missing from enriched output: %q", out)
	}
	if !strings.Contains(out, "Page evidence:") {
		t.Fatalf("evidence header missing: %q", out)
	}
	if !strings.Contains(out, "doubled last quarter") {
		t.Fatalf("page chunk missing: %q", out)
	}
}

func TestEnrichedSearchPassesBodyThroughWithoutEvidence(t *testing.T) {
	oracle := EnrichedSearch{
		Inner:    stubOracle{body: `{"results": []}`},
		Evidence: &Evidence{Fetcher: stubFetcher{}},
	}
	out, err := oracle.Search(context.Background(), "smart plugs")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out != `{"results": []}` {
		t.Fatalf("body should pass through untouched, got %q", out)
	}
}

func TestNewEnrichedSearchDisabledReturnsInner(t *testing.T) {
	inner := stubOracle{body: "whatever"}
	oracle, err := NewEnrichedSearch(config.FetchConfig{Enabled: false}, inner, nil)
	if err != nil {
		t.Fatalf("NewEnrichedSearch: %v", err)
	}
	if oracle != inner {
		t.Fatalf("expected the inner oracle back, got %T", oracle)
	}
}

func TestOrganicLinksCapped(t *testing.T) {
	body := `{"organic":[
		{"link":"https://a.test/1"},
		{"link":"https://b.test/2"},
		{"link":""},
		{"link":"https://c.test/3"},
		{"link":"https://d.test/4"}
	]}`
	links := organicLinks(body, 3)
	if len(links) != 3 {
		t.Fatalf("expected 3 links, got %v", links)
	}
	if links[0] != "https://a.test/1" || links[1] != "https://b.test/2" || links[2] != "https://c.test/3" {
		t.Fatalf("blank links should be skipped, got %v", links)
	}
}

func TestOrganicLinksDeduplicated(t *testing.T) {
	body := `{"organic":[
		{"link":"https://a.test/review?utm_source=feed"},
		{"link":"https://A.test/review"},
		{"link":"https://a.test/review#comments"},
		{"link":"https://b.test/other"}
	]}`
	links := organicLinks(body, 5)
	if len(links) != 2 {
		t.Fatalf("expected tracking variants to collapse, got %v", links)
	}
	if links[0] != "https://a.test/review" || links[1] != "https://b.test/other" {
		t.Fatalf("unexpected links %v", links)
	}
}

func TestMakeChunks(t *testing.T) {
	chunks := makeChunks("abcdefghij", 4, 2)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != "abcd" {
		t.Fatalf("unexpected first chunk: %s", chunks[0])
	}
}
