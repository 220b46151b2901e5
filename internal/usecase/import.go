package usecase

import (
	"fmt"
	"path/filepath"
	"strings"

	"research/internal/adapter/fs"
)

// Indexer is the part of VectorService the importer needs.
type Indexer interface {
	Upsert(docID, owner, title, text string) error
}

// ImportUseCase bulk-loads local text files as sources of one owner.
type ImportUseCase struct {
	indexer      Indexer
	walker       *fs.Walker
	maxTextChars int
}

// NewImportUseCase creates a new import use case.
func NewImportUseCase(indexer Indexer, walker *fs.Walker, maxTextChars int) *ImportUseCase {
	return &ImportUseCase{
		indexer:      indexer,
		walker:       walker,
		maxTextChars: maxTextChars,
	}
}

// ImportResult contains the results of an import run.
type ImportResult struct {
	FilesImported int
	FilesSkipped  int
	Errors        []string
}

// ProgressFunc is called after each file with processed and total counts.
type ProgressFunc func(processed, total int, currentFile string)

// Import walks root and upserts every matching file for owner. Document ids
// are slash-separated paths relative to root, so re-importing replaces.
func (u *ImportUseCase) Import(root, owner string, progress ProgressFunc) (*ImportResult, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner is required")
	}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, file := range files {
		if progress != nil {
			progress(i, len(files), file.Path)
		}

		rel, err := filepath.Rel(absRoot, file.Path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to resolve %s: %v", file.Path, err))
			continue
		}
		docID := filepath.ToSlash(rel)

		content, err := fs.ReadFile(file.Path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to read %s: %v", docID, err))
			continue
		}
		if strings.TrimSpace(content) == "" {
			result.FilesSkipped++
			continue
		}

		title := titleOf(file.Path, content)
		if err := u.indexer.Upsert(docID, owner, title, u.clip(content)); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to import %s: %v", docID, err))
			continue
		}
		result.FilesImported++
	}

	if progress != nil {
		progress(len(files), len(files), "")
	}
	return result, nil
}

func (u *ImportUseCase) clip(text string) string {
	if u.maxTextChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= u.maxTextChars {
		return text
	}
	return string(runes[:u.maxTextChars])
}

// titleOf prefers a leading markdown "# " heading, then the file name.
func titleOf(path, content string) string {
	for _, line := range strings.SplitN(content, "\n", 20) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
		break
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
