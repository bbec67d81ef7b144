package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"courserag/internal/anthropic"
	"courserag/internal/model"
	"courserag/internal/protocol"
)

// SearchTool searches course content by meaning, with optional course and
// lesson filters.
type SearchTool struct {
	searcher model.Searcher

	mu      sync.Mutex
	sources []model.Source
}

func NewSearchTool(searcher model.Searcher) *SearchTool {
	return &SearchTool{searcher: searcher}
}

func (t *SearchTool) Definition() anthropic.Tool {
	return anthropic.Tool{
		Name:        protocol.ToolNameSearchContent,
		Description: "Search for specific content within course lessons. Use only when the user asks about detailed content inside lessons, not for course structure or lesson lists.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What to search for in the course content",
				},
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": map[string]any{
					"type":        "integer",
					"description": "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			"required": []string{"query"},
		},
	}
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	query := stringArg(args, "query")
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("search_course_content: query is required")
	}
	courseName := stringArg(args, "course_name")
	lessonNumber := intArg(args, "lesson_number")

	results := t.searcher.Search(ctx, query, courseName, lessonNumber, 0)
	if results.Err != "" {
		// Retrieval problems are surfaced to the model as text so it can
		// rephrase or drop the filter; they are not failed rounds.
		return results.Err, nil
	}
	if results.IsEmpty() {
		var filter strings.Builder
		if courseName != "" {
			fmt.Fprintf(&filter, " in course '%s'", courseName)
		}
		if lessonNumber != 0 {
			fmt.Fprintf(&filter, " in lesson %d", lessonNumber)
		}
		return fmt.Sprintf("No relevant content found%s.", filter.String()), nil
	}
	return t.formatResults(ctx, results), nil
}

// formatResults renders hits with their course/lesson header and records
// structured sources for the UI.
func (t *SearchTool) formatResults(ctx context.Context, results model.SearchResults) string {
	formatted := make([]string, 0, len(results.Hits))
	sources := make([]model.Source, 0, len(results.Hits))

	for _, hit := range results.Hits {
		header := "[" + hit.CourseTitle
		if hit.LessonNumber > 0 {
			header += fmt.Sprintf(" - Lesson %d", hit.LessonNumber)
		}
		header += "]"
		formatted = append(formatted, header+"\n"+hit.Content)

		source := model.Source{Title: hit.CourseTitle, LessonNumber: hit.LessonNumber}
		if hit.LessonNumber > 0 {
			source.Link = t.searcher.LessonLink(ctx, hit.CourseTitle, hit.LessonNumber)
		}
		sources = append(sources, source)
	}

	t.mu.Lock()
	t.sources = sources
	t.mu.Unlock()

	return strings.Join(formatted, "\n\n")
}

func (t *SearchTool) LastSources() []model.Source {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sources
}

func (t *SearchTool) ResetSources() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sources = nil
}
