package model

import "context"

// Store is the interface for catalog and chunk persistence.
type Store interface {
	// Course metadata
	UpsertCourse(ctx context.Context, course Course) (int64, error)
	GetCourseByTitle(ctx context.Context, title string) (Course, error)
	ListCourseTitles(ctx context.Context) ([]string, error)
	CourseCount(ctx context.Context) (int64, error)

	// Chunk operations
	InsertChunk(ctx context.Context, chunk CourseChunk, embedding []float32) (int64, error)
	ListChunks(ctx context.Context) ([]StoredChunk, error)

	// Clear drops all catalog and chunk data.
	Clear(ctx context.Context) error

	Close() error
}

// StoredChunk is a chunk row together with its persisted embedding and the
// rowid used as the index label.
type StoredChunk struct {
	ChunkID   int64
	Chunk     CourseChunk
	Embedding []float32
}

// Index is the interface for nearest-neighbor vector lookup.
type Index interface {
	// Add registers a vector under the given label.
	Add(label int64, vector []float32) error

	// Search returns up to k labels ranked by similarity, best first,
	// together with their cosine similarity scores.
	Search(vector []float32, k int) ([]int64, []float64, error)

	// Delete removes a vector from the index.
	Delete(label int64) error

	// Len reports the number of live vectors.
	Len() int
}

// Embedder turns text into fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Searcher is the retrieval surface consumed by the course tools.
type Searcher interface {
	Search(ctx context.Context, query, courseName string, lessonNumber, limit int) SearchResults
	Outline(ctx context.Context, courseName string) (CourseOutline, error)
	LessonLink(ctx context.Context, courseTitle string, lessonNumber int) string
}
