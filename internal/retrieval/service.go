// Package retrieval ranks course chunks against natural-language queries and
// resolves course names and outlines for the tools layer.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"courserag/internal/model"
)

const (
	defaultMaxResults = 5
	// oversampleFactor widens the index lookup so post-filtering by course
	// or lesson still leaves enough hits.
	oversampleFactor = 5
)

type Service struct {
	store      model.Store
	index      model.Index
	embedder   model.Embedder
	maxResults int
	logger     *slog.Logger

	metaMu       sync.RWMutex
	chunkByLabel map[int64]model.CourseChunk
}

var _ model.Searcher = (*Service)(nil)

func NewService(store model.Store, index model.Index, embedder model.Embedder, maxResults int) *Service {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	return &Service{
		store:        store,
		index:        index,
		embedder:     embedder,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "retrieval"),
		chunkByLabel: make(map[int64]model.CourseChunk),
	}
}

// Preload warms the in-memory index from persisted chunks. Call once at
// startup before serving queries.
func (s *Service) Preload(ctx context.Context) error {
	chunks, err := s.store.ListChunks(ctx)
	if err != nil {
		return fmt.Errorf("preload chunks: %w", err)
	}
	for _, stored := range chunks {
		if err := s.index.Add(stored.ChunkID, stored.Embedding); err != nil {
			return fmt.Errorf("index chunk %d: %w", stored.ChunkID, err)
		}
		s.metaMu.Lock()
		s.chunkByLabel[stored.ChunkID] = stored.Chunk
		s.metaMu.Unlock()
	}
	s.logger.Info("index preloaded", "chunks", len(chunks))
	return nil
}

// AddCourse persists course metadata.
func (s *Service) AddCourse(ctx context.Context, course model.Course) error {
	_, err := s.store.UpsertCourse(ctx, course)
	return err
}

// AddChunks embeds and persists content chunks and registers them with the
// index so they are searchable immediately.
func (s *Service) AddChunks(ctx context.Context, chunks []model.CourseChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	for i, chunk := range chunks {
		label, err := s.store.InsertChunk(ctx, chunk, vectors[i])
		if err != nil {
			return fmt.Errorf("persist chunk %d: %w", i, err)
		}
		if err := s.index.Add(label, vectors[i]); err != nil {
			return fmt.Errorf("index chunk %d: %w", label, err)
		}
		s.metaMu.Lock()
		s.chunkByLabel[label] = chunk
		s.metaMu.Unlock()
	}
	return nil
}

// Search embeds the query, ranks the corpus, and applies course/lesson
// filters. Failures come back as human-readable text in SearchResults.Err
// because the result is always relayed to the model as tool output.
func (s *Service) Search(ctx context.Context, query, courseName string, lessonNumber, limit int) model.SearchResults {
	if s.index.Len() == 0 {
		return model.SearchResults{Err: "No content available"}
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	var resolvedCourse string
	if courseName != "" {
		title, err := s.resolveCourseTitle(ctx, courseName)
		if err != nil {
			return model.SearchResults{Err: fmt.Sprintf("No course found matching '%s'", courseName)}
		}
		resolvedCourse = title
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		s.logger.Error("query embedding failed", "error", err)
		return model.SearchResults{Err: fmt.Sprintf("Search failed: %v", err)}
	}

	labels, scores, err := s.index.Search(vectors[0], limit*oversampleFactor)
	if err != nil {
		s.logger.Error("index search failed", "error", err)
		return model.SearchResults{Err: fmt.Sprintf("Search failed: %v", err)}
	}

	hits := make([]model.ChunkHit, 0, limit)
	for i, label := range labels {
		s.metaMu.RLock()
		chunk, ok := s.chunkByLabel[label]
		s.metaMu.RUnlock()
		if !ok {
			continue
		}
		if resolvedCourse != "" && chunk.CourseTitle != resolvedCourse {
			continue
		}
		if lessonNumber != 0 && chunk.LessonNumber != lessonNumber {
			continue
		}
		hits = append(hits, model.ChunkHit{
			Content:      chunk.Content,
			CourseTitle:  chunk.CourseTitle,
			LessonNumber: chunk.LessonNumber,
			ChunkIndex:   chunk.ChunkIndex,
			Distance:     1 - scores[i],
		})
		if len(hits) >= limit {
			break
		}
	}
	return model.SearchResults{Hits: hits}
}

// Outline resolves a possibly-partial course name to its full structure.
func (s *Service) Outline(ctx context.Context, courseName string) (model.CourseOutline, error) {
	title, err := s.resolveCourseTitle(ctx, courseName)
	if err != nil {
		return model.CourseOutline{}, err
	}
	course, err := s.store.GetCourseByTitle(ctx, title)
	if err != nil {
		return model.CourseOutline{}, err
	}
	return model.CourseOutline{
		CourseTitle: course.Title,
		CourseLink:  course.Link,
		Instructor:  course.Instructor,
		Lessons:     course.Lessons,
	}, nil
}

// LessonLink returns the link for a lesson, or "" when unknown.
func (s *Service) LessonLink(ctx context.Context, courseTitle string, lessonNumber int) string {
	course, err := s.store.GetCourseByTitle(ctx, courseTitle)
	if err != nil {
		return ""
	}
	for _, lesson := range course.Lessons {
		if lesson.Number == lessonNumber {
			return lesson.Link
		}
	}
	return ""
}

// Analytics reports catalog size for the stats endpoint.
func (s *Service) Analytics(ctx context.Context) (model.Analytics, error) {
	count, err := s.store.CourseCount(ctx)
	if err != nil {
		return model.Analytics{}, err
	}
	titles, err := s.store.ListCourseTitles(ctx)
	if err != nil {
		return model.Analytics{}, err
	}
	return model.Analytics{TotalCourses: int(count), CourseTitles: titles}, nil
}

// Clear wipes the catalog, the index, and the in-memory chunk metadata.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.metaMu.Lock()
	defer s.metaMu.Unlock()
	for label := range s.chunkByLabel {
		if err := s.index.Delete(label); err != nil {
			return err
		}
		delete(s.chunkByLabel, label)
	}
	return nil
}

// CourseTitles lists canonical titles, used for incremental ingestion.
func (s *Service) CourseTitles(ctx context.Context) ([]string, error) {
	return s.store.ListCourseTitles(ctx)
}

// resolveCourseTitle maps a partial, case-insensitive course name to the
// canonical catalog title. The first match in sorted title order wins.
func (s *Service) resolveCourseTitle(ctx context.Context, name string) (string, error) {
	titles, err := s.store.ListCourseTitles(ctx)
	if err != nil {
		return "", err
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, title := range titles {
		if strings.Contains(strings.ToLower(title), needle) {
			return title, nil
		}
	}
	return "", model.ErrNotFound
}
