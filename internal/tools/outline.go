package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"courserag/internal/anthropic"
	"courserag/internal/model"
	"courserag/internal/protocol"
)

// OutlineTool returns a course's full structure: title, link, instructor, and
// every lesson number with its title.
type OutlineTool struct {
	searcher model.Searcher
}

func NewOutlineTool(searcher model.Searcher) *OutlineTool {
	return &OutlineTool{searcher: searcher}
}

func (t *OutlineTool) Definition() anthropic.Tool {
	return anthropic.Tool{
		Name:        protocol.ToolNameCourseOutline,
		Description: "Get the complete course outline showing course title, link, and all lesson numbers with titles. Use for any question about course structure, syllabus, lesson lists, or 'what lessons are in' queries.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
			},
			"required": []string{"course_name"},
		},
	}
}

func (t *OutlineTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	courseName := stringArg(args, "course_name")
	if strings.TrimSpace(courseName) == "" {
		return "", fmt.Errorf("get_course_outline: course_name is required")
	}

	outline, err := t.searcher.Outline(ctx, courseName)
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Sprintf("No course found matching '%s'. Please check the course name and try again.", courseName), nil
	}
	if err != nil {
		return "", fmt.Errorf("get_course_outline: %w", err)
	}
	return formatOutline(outline), nil
}

func formatOutline(outline model.CourseOutline) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", outline.CourseTitle)
	if outline.CourseLink != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", outline.CourseLink)
	}
	if outline.Instructor != "" {
		fmt.Fprintf(&b, "Instructor: %s\n", outline.Instructor)
	}
	fmt.Fprintf(&b, "Total Lessons: %d\n", len(outline.Lessons))

	if len(outline.Lessons) == 0 {
		b.WriteString("\nNo lessons found.")
		return b.String()
	}
	b.WriteString("\n**Lessons:**")
	for _, lesson := range outline.Lessons {
		fmt.Fprintf(&b, "\n%d. %s", lesson.Number, lesson.Title)
	}
	return b.String()
}
