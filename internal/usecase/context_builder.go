package usecase

import (
	"fmt"
	"strings"

	"research/internal/domain"
	"research/internal/port"
)

const ragContextHeader = "Relevant Document Excerpts (RAG):\n"

// ContextBuilder turns search hits into a prompt-ready context block.
type ContextBuilder struct {
	searcher port.Searcher
	library  port.SourceLister
	minScore float64
	maxChars int
}

// NewContextBuilder creates a context builder. library may be nil, in which
// case no library overview is rendered. Hits scoring below minScore are
// dropped (0 disables the filter); hit text is cut at maxChars.
func NewContextBuilder(searcher port.Searcher, library port.SourceLister, minScore float64, maxChars int) *ContextBuilder {
	if maxChars <= 0 {
		maxChars = 2000
	}
	return &ContextBuilder{
		searcher: searcher,
		library:  library,
		minScore: minScore,
		maxChars: maxChars,
	}
}

// Build searches owner's sources for query and renders the top n hits.
func (b *ContextBuilder) Build(query, owner string, n int) (domain.RAGContext, error) {
	hits, err := b.searcher.Search(query, owner, n)
	if err != nil {
		return domain.RAGContext{}, fmt.Errorf("search failed: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(ragContextHeader)
	titles := make([]string, 0, len(hits))

	for _, hit := range hits {
		if b.minScore > 0 && hit.Score < b.minScore {
			continue
		}
		title := hit.Title()
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&sb, "Source: %s\nContent: %s\n---\n", title, truncate(hit.Text, b.maxChars))
		titles = append(titles, title)
	}

	return domain.RAGContext{
		Query:   query,
		Library: b.overview(owner),
		Context: sb.String(),
		Titles:  titles,
	}, nil
}

// overview lists every source of owner, not only the matching ones.
func (b *ContextBuilder) overview(owner string) string {
	if b.library == nil {
		return ""
	}
	sources := b.library.Sources(owner)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Library Overview (%d total sources):\n", len(sources))
	for _, src := range sources {
		title := src.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&sb, "- %s (ID: %s)\n", title, src.ID)
	}
	return sb.String()
}

// truncate cuts s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
