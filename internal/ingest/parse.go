// Package ingest parses course scripts into catalog metadata and searchable
// chunks.
package ingest

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"courserag/internal/model"
)

// Course scripts start with a metadata header and then one section per
// lesson:
//
//	Course Title: MCP: Build Rich-Context AI Apps
//	Course Link: https://example.com/mcp
//	Course Instructor: Jane Doe
//
//	Lesson 0: Introduction
//	Lesson Link: https://example.com/mcp/lesson/0
//	<transcript text...>
var lessonHeading = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.+)$`)

// ParsedCourse is the result of parsing one course script.
type ParsedCourse struct {
	Course   model.Course
	Sections []LessonSection
}

// LessonSection carries the raw text of one lesson (or the preamble before
// the first lesson, with Number 0 and empty Title).
type LessonSection struct {
	Number int
	Text   string
}

// ParseCourseScript parses a full course document. The title is required;
// link and instructor are optional header lines.
func ParseCourseScript(content string) (ParsedCourse, error) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var parsed ParsedCourse
	var currentLesson *model.Lesson
	var section strings.Builder
	inHeader := true

	flush := func(number int) {
		text := strings.TrimSpace(section.String())
		section.Reset()
		if text == "" {
			return
		}
		parsed.Sections = append(parsed.Sections, LessonSection{Number: number, Text: text})
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if inHeader {
			switch {
			case strings.HasPrefix(trimmed, "Course Title:"):
				parsed.Course.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Title:"))
				continue
			case strings.HasPrefix(trimmed, "Course Link:"):
				parsed.Course.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Link:"))
				continue
			case strings.HasPrefix(trimmed, "Course Instructor:"):
				parsed.Course.Instructor = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Instructor:"))
				continue
			case trimmed == "":
				continue
			}
			inHeader = false
		}

		if m := lessonHeading.FindStringSubmatch(trimmed); m != nil {
			if currentLesson != nil {
				flush(currentLesson.Number)
			} else {
				flush(0)
			}
			number, _ := strconv.Atoi(m[1])
			parsed.Course.Lessons = append(parsed.Course.Lessons, model.Lesson{
				Number: number,
				Title:  strings.TrimSpace(m[2]),
			})
			currentLesson = &parsed.Course.Lessons[len(parsed.Course.Lessons)-1]
			continue
		}

		if currentLesson != nil && strings.HasPrefix(trimmed, "Lesson Link:") && currentLesson.Link == "" {
			currentLesson.Link = strings.TrimSpace(strings.TrimPrefix(trimmed, "Lesson Link:"))
			continue
		}

		section.WriteString(line)
		section.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return ParsedCourse{}, err
	}

	if currentLesson != nil {
		flush(currentLesson.Number)
	} else {
		flush(0)
	}

	if parsed.Course.Title == "" {
		return ParsedCourse{}, fmt.Errorf("course script has no 'Course Title:' header")
	}
	return parsed, nil
}
