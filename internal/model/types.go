package model

// Course is the catalog entry for a single ingested course document.
type Course struct {
	Title      string
	Link       string
	Instructor string
	Lessons    []Lesson
}

// Lesson is one numbered section of a course.
type Lesson struct {
	Number int
	Title  string
	Link   string
}

// CourseChunk is a span of course content prepared for embedding and search.
type CourseChunk struct {
	Content      string
	CourseTitle  string
	LessonNumber int // 0 means the chunk precedes the first lesson
	ChunkIndex   int
}

// ChunkHit pairs a stored chunk with its retrieval metadata.
type ChunkHit struct {
	Content      string
	CourseTitle  string
	LessonNumber int
	ChunkIndex   int
	Distance     float64
}

// SearchResults carries ranked chunks back to the search tool. Err is a
// human-readable failure description rather than a Go error because tool
// output is always surfaced to the model as text.
type SearchResults struct {
	Hits []ChunkHit
	Err  string
}

// IsEmpty reports whether the search produced no usable hits.
func (r SearchResults) IsEmpty() bool {
	return len(r.Hits) == 0
}

// Source identifies where an answer fragment came from, for the UI.
type Source struct {
	Title        string `json:"title"`
	LessonNumber int    `json:"lesson_number,omitempty"`
	Link         string `json:"link,omitempty"`
}

// CourseOutline is the full structure returned by the outline tool.
type CourseOutline struct {
	CourseTitle string
	CourseLink  string
	Instructor  string
	Lessons     []Lesson
}

// Analytics summarizes the catalog for the stats endpoint.
type Analytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}
