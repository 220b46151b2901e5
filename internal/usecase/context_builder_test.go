package usecase

import (
	"errors"
	"strings"
	"testing"

	"research/internal/domain"
)

type stubSearcher struct {
	hits []domain.SearchHit
	err  error
}

func (s stubSearcher) Search(query, owner string, k int) ([]domain.SearchHit, error) {
	if s.err != nil {
		return nil, s.err
	}
	if k < len(s.hits) {
		return s.hits[:k], nil
	}
	return s.hits, nil
}

type stubLibrary map[string][]domain.SourceRef

func (l stubLibrary) Sources(owner string) []domain.SourceRef {
	return l[owner]
}

func hit(id, title, text string, score float64) domain.SearchHit {
	md := map[string]string{}
	if title != "" {
		md["title"] = title
	}
	return domain.SearchHit{ID: id, Text: text, Metadata: md, Score: score}
}

func TestContextBuilder_Build(t *testing.T) {
	b := NewContextBuilder(stubSearcher{hits: []domain.SearchHit{
		hit("d1", "Paper A", "about graphs", 0.9),
		hit("d2", "", "no title here", 0.4),
	}}, nil, 0, 0)

	ctx, err := b.Build("graphs", "u1", 5)
	if err != nil {
		t.Fatal(err)
	}

	want := "Relevant Document Excerpts (RAG):\n" +
		"Source: Paper A\nContent: about graphs\n---\n" +
		"Source: Untitled\nContent: no title here\n---\n"
	if ctx.Context != want {
		t.Errorf("unexpected context:\n%s", ctx.Context)
	}
	if len(ctx.Titles) != 2 || ctx.Titles[0] != "Paper A" || ctx.Titles[1] != "Untitled" {
		t.Errorf("unexpected titles %v", ctx.Titles)
	}
	if ctx.Query != "graphs" {
		t.Errorf("unexpected query %q", ctx.Query)
	}
}

func TestContextBuilder_MinScoreAndTruncation(t *testing.T) {
	long := strings.Repeat("é", 30)
	b := NewContextBuilder(stubSearcher{hits: []domain.SearchHit{
		hit("d1", "Long", long, 0.8),
		hit("d2", "Weak", "barely related", 0.1),
	}}, nil, 0.3, 10)

	ctx, err := b.Build("q", "u1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(ctx.Titles) != 1 || ctx.Titles[0] != "Long" {
		t.Fatalf("expected only the strong hit, got %v", ctx.Titles)
	}
	if !strings.Contains(ctx.Context, "Content: "+strings.Repeat("é", 10)+"...\n") {
		t.Errorf("expected rune-safe truncation, got:\n%s", ctx.Context)
	}
}

func TestContextBuilder_NoHits(t *testing.T) {
	ctx, err := NewContextBuilder(stubSearcher{}, nil, 0, 0).Build("q", "u1", 5)
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Context != ragContextHeader || len(ctx.Titles) != 0 {
		t.Errorf("expected header only, got %q %v", ctx.Context, ctx.Titles)
	}
}

func TestContextBuilder_SearchError(t *testing.T) {
	b := NewContextBuilder(stubSearcher{err: domain.ErrProviderUnavailable}, nil, 0, 0)
	if _, err := b.Build("q", "u1", 5); !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

func TestContextBuilder_LibraryOverview(t *testing.T) {
	lib := stubLibrary{
		"u1": {{ID: "d1", Title: "Paper A"}, {ID: "d2", Title: "Paper B"}, {ID: "d3"}},
		"u2": {{ID: "d9", Title: "Other"}},
	}
	b := NewContextBuilder(stubSearcher{hits: []domain.SearchHit{
		hit("d1", "Paper A", "about graphs", 0.9),
	}}, lib, 0, 0)

	ctx, err := b.Build("graphs", "u1", 1)
	if err != nil {
		t.Fatal(err)
	}
	want := "Library Overview (3 total sources):\n" +
		"- Paper A (ID: d1)\n" +
		"- Paper B (ID: d2)\n" +
		"- Untitled (ID: d3)\n"
	if ctx.Library != want {
		t.Errorf("unexpected library overview:\n%s", ctx.Library)
	}
	if strings.Contains(ctx.Library, "Other") {
		t.Error("overview must not list other owners' sources")
	}

	empty, err := b.Build("graphs", "nobody", 1)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Library != "Library Overview (0 total sources):\n" {
		t.Errorf("unexpected overview for empty owner %q", empty.Library)
	}
}
